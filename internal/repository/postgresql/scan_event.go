package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scanEventRepositoryImpl struct {
	db *database.DB
}

func NewScanEventRepository(db *database.DB) attendance.ScanEventRepository {
	return &scanEventRepositoryImpl{db: db}
}

// CreateBatch implements attendance.ScanEventRepository.
func (r *scanEventRepositoryImpl) CreateBatch(ctx context.Context, events []attendance.ScanEvent) error {
	if len(events) == 0 {
		return attendance.ErrEmptyBatch
	}

	query := `
		INSERT INTO scan_events (
			id, company_id, employee_id, employee_name, department, scan_date, scan_minute,
			direction, source, schedule_start_minute, schedule_end_minute, late_tolerance_minutes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	return WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)
		for _, e := range events {
			var start, end, tolerance *int
			if e.Schedule != nil {
				start, end, tolerance = &e.Schedule.StartMinute, &e.Schedule.EndMinute, &e.Schedule.LateToleranceMinutes
			}
			if _, err := q.Exec(txCtx, query,
				e.ID, e.CompanyID, e.EmployeeID, e.EmployeeName, e.Department, e.Date, e.Minute,
				string(e.Direction), string(e.Source), start, end, tolerance, e.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert scan event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// ListByDate implements attendance.ScanEventRepository.
func (r *scanEventRepositoryImpl) ListByDate(ctx context.Context, companyID string, date time.Time, department *string) ([]attendance.ScanEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, employee_name, department, scan_date, scan_minute,
		       direction, source, schedule_start_minute, schedule_end_minute, late_tolerance_minutes, created_at
		FROM scan_events
		WHERE company_id = $1
		  AND scan_date = $2::date
		  AND ($3::text IS NULL OR department = $3)
		ORDER BY scan_minute ASC, created_at ASC, id ASC
	`

	rows, err := q.Query(ctx, query, companyID, date.Format("2006-01-02"), department)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan events: %w", err)
	}
	defer rows.Close()

	var events []attendance.ScanEvent
	for rows.Next() {
		e, err := scanEventFromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scan event: %w", err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan events: %w", err)
	}

	return events, nil
}

func scanEventFromRow(row pgx.Row) (attendance.ScanEvent, error) {
	var (
		e                     attendance.ScanEvent
		direction, source     string
		start, end, tolerance *int
	)
	if err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeID, &e.EmployeeName, &e.Department, &e.Date, &e.Minute,
		&direction, &source, &start, &end, &tolerance, &e.CreatedAt,
	); err != nil {
		return attendance.ScanEvent{}, err
	}
	e.Direction = attendance.Direction(direction)
	e.Source = attendance.Source(source)
	if start != nil && end != nil {
		s := schedule.Schedule{StartMinute: *start, EndMinute: *end}
		if tolerance != nil {
			s.LateToleranceMinutes = *tolerance
		}
		e.Schedule = &s
	}
	return e, nil
}
