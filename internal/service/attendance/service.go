package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/export"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/sync/errgroup"
)

// summaryConcurrency bounds the number of days reconciled at once by GetSummary.
const summaryConcurrency = 4

type AttendanceServiceImpl struct {
	attendance.ScanEventRepository
	attendance.ReportRepository
	employee.EmployeeRepository
	schedule.AssignmentRepository
	options Options
	now     func() time.Time
}

func NewAttendanceService(
	scanEventRepo attendance.ScanEventRepository,
	reportRepo attendance.ReportRepository,
	employeeRepo employee.EmployeeRepository,
	assignmentRepo schedule.AssignmentRepository,
	options Options,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		ScanEventRepository:  scanEventRepo,
		ReportRepository:     reportRepo,
		EmployeeRepository:   employeeRepo,
		AssignmentRepository: assignmentRepo,
		options:              options,
		now:                  time.Now,
	}
}

// getCompanyID extracts company_id from JWT claims
func (s *AttendanceServiceImpl) getCompanyID(ctx context.Context) (string, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", user.ErrInvalidToken, err)
	}
	if token == nil {
		return "", user.ErrInvalidToken
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", user.ErrCompanyIDRequired
	}
	return companyID, nil
}

// reconcileDay loads one company's events, roster and schedules for date and
// runs the reconciler over them. A department filter selects employees by
// their directory department; the department a device stamps on a scan only
// decides for employees missing from the directory.
func (s *AttendanceServiceImpl) reconcileDay(ctx context.Context, companyID string, date time.Time, department *string) (attendance.DailyReport, error) {
	events, err := s.ScanEventRepository.ListByDate(ctx, companyID, date, nil)
	if err != nil {
		return attendance.DailyReport{}, fmt.Errorf("failed to list scan events: %w", err)
	}

	employees, err := s.EmployeeRepository.ListActive(ctx, companyID, nil)
	if err != nil {
		return attendance.DailyReport{}, fmt.Errorf("failed to list employees: %w", err)
	}

	assignments, err := s.AssignmentRepository.ListAssignments(ctx, companyID, date)
	if err != nil {
		return attendance.DailyReport{}, fmt.Errorf("failed to list schedule assignments: %w", err)
	}

	directory := make(map[string]string, len(employees))
	roster := make([]attendance.RosterEntry, 0, len(employees))
	for _, e := range employees {
		directory[e.ID] = e.Department
		if department != nil && e.Department != *department {
			continue
		}
		if !e.ExpectedOn(date) {
			continue
		}
		roster = append(roster, attendance.RosterEntry{
			EmployeeID: e.ID,
			Name:       e.FullName,
			Department: e.Department,
		})
	}

	if department != nil {
		events = filterEventsByDepartment(events, directory, *department)
	}

	report, err := Reconcile(ReconcileInput{
		Date:        date,
		Events:      events,
		Roster:      roster,
		Assignments: assignments,
	}, s.options)
	if err != nil {
		return attendance.DailyReport{}, err
	}

	if len(report.Diagnostics) > 0 {
		slog.Warn("Attendance reconciled with diagnostics",
			"company_id", companyID,
			"date", date.Format("2006-01-02"),
			"diagnostics", len(report.Diagnostics),
		)
	}

	return report, nil
}

func filterEventsByDepartment(events []attendance.ScanEvent, directory map[string]string, department string) []attendance.ScanEvent {
	out := make([]attendance.ScanEvent, 0, len(events))
	for _, evt := range events {
		dept, known := directory[evt.EmployeeID]
		if !known {
			dept = evt.Department
		}
		if dept == department {
			out = append(out, evt)
		}
	}
	return out
}

// dailyReport reconciles a date and applies the request's post-hoc filters.
func (s *AttendanceServiceImpl) dailyReport(ctx context.Context, req attendance.DailyReportRequest) (attendance.DailyReport, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyReport{}, err
	}

	companyID, err := s.getCompanyID(ctx)
	if err != nil {
		return attendance.DailyReport{}, err
	}

	report, err := s.reconcileDay(ctx, companyID, req.ReportDate(), req.Department)
	if err != nil {
		return attendance.DailyReport{}, err
	}

	if req.Source != nil {
		report = FilterBySource(report, attendance.Source(*req.Source))
	}
	if req.Status != nil {
		report = FilterByStatus(report, attendance.Status(*req.Status))
	}
	return report, nil
}

// GetDailyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyReport(ctx context.Context, req attendance.DailyReportRequest) (attendance.DailyReportResponse, error) {
	report, err := s.dailyReport(ctx, req)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}
	return attendance.NewDailyReportResponse(report), nil
}

// GetBiometricReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetBiometricReport(ctx context.Context, req attendance.DailyReportRequest) (attendance.DailyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyReportResponse{}, err
	}

	companyID, err := s.getCompanyID(ctx)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	report, err := s.reconcileDay(ctx, companyID, req.ReportDate(), req.Department)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	return attendance.NewDailyReportResponse(BiometricReport(report)), nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, req attendance.SummaryRequest) (attendance.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	companyID, err := s.getCompanyID(ctx)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	dates := req.Dates()
	reports := make([]attendance.DailyReport, len(dates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i, date := range dates {
		g.Go(func() error {
			report, err := s.reconcileDay(gCtx, companyID, date, req.Department)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", date.Format("2006-01-02"), err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	diagnostics := 0
	for _, r := range reports {
		diagnostics += len(r.Diagnostics)
	}

	summaries := Summarize(reports)
	employees := make([]attendance.EmployeeSummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		employees = append(employees, attendance.NewEmployeeSummaryResponse(sum))
	}

	return attendance.SummaryResponse{
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Days:            len(dates),
		Employees:       employees,
		DiagnosticCount: diagnostics,
	}, nil
}

// ExportDailyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportDailyReport(ctx context.Context, req attendance.DailyReportRequest) (attendance.ExportFile, error) {
	report, err := s.dailyReport(ctx, req)
	if err != nil {
		return attendance.ExportFile{}, err
	}

	content, err := export.DailyReportXLSX(attendance.NewDailyReportResponse(report))
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to render daily report: %w", err)
	}

	return attendance.ExportFile{
		Filename:    fmt.Sprintf("attendance-%s.xlsx", req.Date),
		ContentType: export.XLSXContentType,
		Content:     content,
	}, nil
}

// SnapshotDailyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SnapshotDailyReport(ctx context.Context, req attendance.SnapshotRequest) (attendance.DailyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyReportResponse{}, err
	}

	companyID, err := s.getCompanyID(ctx)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	return s.SnapshotCompany(ctx, companyID, req.ReportDate())
}

// SnapshotCompany reconciles a date for one company and persists the result.
// It does not read claims, so background jobs can call it directly.
func (s *AttendanceServiceImpl) SnapshotCompany(ctx context.Context, companyID string, date time.Time) (attendance.DailyReportResponse, error) {
	report, err := s.reconcileDay(ctx, companyID, date, nil)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	resp := attendance.NewDailyReportResponse(report)
	now := s.now().UTC()
	if err := s.ReportRepository.Upsert(ctx, attendance.Snapshot{
		CompanyID: companyID,
		Date:      date,
		Report:    resp,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return attendance.DailyReportResponse{}, fmt.Errorf("failed to store attendance snapshot: %w", err)
	}

	slog.Info("Attendance snapshot stored",
		"company_id", companyID,
		"date", resp.Date,
		"records", len(resp.Records),
	)
	return resp, nil
}

// GetSnapshot implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSnapshot(ctx context.Context, req attendance.SnapshotRequest) (attendance.DailyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyReportResponse{}, err
	}

	companyID, err := s.getCompanyID(ctx)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	snapshot, err := s.ReportRepository.GetByDate(ctx, companyID, req.ReportDate())
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}
	return snapshot.Report, nil
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)
