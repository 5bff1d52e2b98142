package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
)

// Snapshotter reconciles and persists one company's daily report.
type Snapshotter interface {
	SnapshotCompany(ctx context.Context, companyID string, date time.Time) (attendance.DailyReportResponse, error)
}

type AttendanceJobs struct {
	employeeRepo employee.EmployeeRepository
	snapshotter  Snapshotter
	location     *time.Location
	interval     time.Duration
	now          func() time.Time
}

func NewAttendanceJobs(
	employeeRepo employee.EmployeeRepository,
	snapshotter Snapshotter,
	location *time.Location,
	interval time.Duration,
) *AttendanceJobs {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceJobs{
		employeeRepo: employeeRepo,
		snapshotter:  snapshotter,
		location:     location,
		interval:     interval,
		now:          time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("snapshot_daily_reports", j.interval, j.SnapshotDailyReports)
}

// SnapshotDailyReports stores yesterday's report for every company with
// active employees. Re-running overwrites the previous snapshot of the same
// day, so late scans are picked up by the next run. One company failing does
// not stop the others.
func (j *AttendanceJobs) SnapshotDailyReports(ctx context.Context) error {
	local := j.now().In(j.location)
	yesterday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	companyIDs, err := j.employeeRepo.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	slog.Info("Cron: Starting daily report snapshots",
		"date", yesterday.Format("2006-01-02"),
		"companies", len(companyIDs),
	)

	var errs []error
	stored := 0
	for _, companyID := range companyIDs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := j.snapshotter.SnapshotCompany(ctx, companyID, yesterday); err != nil {
			slog.Error("Cron: Failed to snapshot daily report",
				"company_id", companyID,
				"date", yesterday.Format("2006-01-02"),
				"error", err)
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		stored++
	}

	slog.Info("Cron: Daily report snapshots stored", "count", stored, "failed", len(errs))
	return errors.Join(errs...)
}
