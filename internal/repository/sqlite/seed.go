package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmlabs-hris/attendance-reconciler/internal/fixtures"
	"github.com/google/uuid"
)

// SeedReferenceDay loads the reference roster, schedules and badge day under
// fixtures.ReferenceCompanyID. It is a no-op when that company already has employees.
func SeedReferenceDay(ctx context.Context, db *sql.DB) error {
	companyID := fixtures.ReferenceCompanyID

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE company_id = ?;`, companyID).Scan(&n); err != nil {
		return fmt.Errorf("seed check: %w", err)
	}
	if n > 0 {
		return nil
	}

	if err := NewEmployeeStore(db).Upsert(ctx, fixtures.GetReferenceEmployees(companyID)...); err != nil {
		return fmt.Errorf("seed employees: %w", err)
	}

	schedules := NewScheduleStore(db)
	for _, sc := range fixtures.GetDefaultSchedules(companyID) {
		if err := schedules.SaveSchedule(ctx, sc); err != nil {
			return fmt.Errorf("seed schedules: %w", err)
		}
	}
	if err := schedules.AddAssignments(ctx, fixtures.GetDefaultAssignments(companyID)...); err != nil {
		return fmt.Errorf("seed assignments: %w", err)
	}

	events := fixtures.GetReferenceEvents(companyID)
	for i := range events {
		events[i].ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := NewScanEventStore(db).CreateBatch(ctx, events); err != nil {
		return fmt.Errorf("seed scan events: %w", err)
	}
	return nil
}
