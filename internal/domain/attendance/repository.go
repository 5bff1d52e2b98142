package attendance

import (
	"context"
	"time"
)

// ScanEventRepository stores raw scan events.
// All methods include companyID to prevent cross-company data access.
type ScanEventRepository interface {
	// CreateBatch stores events atomically: either every event is stored or none.
	CreateBatch(ctx context.Context, events []ScanEvent) error

	// ListByDate returns the events of one date, oldest scan first,
	// optionally restricted to one department.
	ListByDate(ctx context.Context, companyID string, date time.Time, department *string) ([]ScanEvent, error)
}

// ReportRepository stores computed daily reports.
type ReportRepository interface {
	// Upsert stores a snapshot, replacing any snapshot of the same company and date.
	Upsert(ctx context.Context, snapshot Snapshot) error

	// GetByDate returns ErrSnapshotNotFound when no snapshot exists.
	GetByDate(ctx context.Context, companyID string, date time.Time) (Snapshot, error)
}
