package attendance

import (
	"context"
)

// AttendanceService reconciles scan events into attendance reports.
type AttendanceService interface {
	// GetDailyReport reconciles one date for the caller's company
	GetDailyReport(ctx context.Context, req DailyReportRequest) (DailyReportResponse, error)

	// GetBiometricReport returns the biometric-only view of a date
	GetBiometricReport(ctx context.Context, req DailyReportRequest) (DailyReportResponse, error)

	// GetSummary reconciles a date range and totals it per employee
	GetSummary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)

	// ExportDailyReport renders the daily report as an XLSX workbook
	ExportDailyReport(ctx context.Context, req DailyReportRequest) (ExportFile, error)

	// SnapshotDailyReport reconciles a date and persists the result
	SnapshotDailyReport(ctx context.Context, req SnapshotRequest) (DailyReportResponse, error)

	// GetSnapshot returns a previously persisted report
	GetSnapshot(ctx context.Context, req SnapshotRequest) (DailyReportResponse, error)
}

// ScanService validates and stores raw scan events.
type ScanService interface {
	IngestScans(ctx context.Context, req IngestScansRequest) (IngestScansResponse, error)
}
