package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
)

type ScanEventStore struct {
	db *sql.DB
}

func NewScanEventStore(db *sql.DB) *ScanEventStore {
	return &ScanEventStore{db: db}
}

func (s *ScanEventStore) CreateBatch(ctx context.Context, events []attendance.ScanEvent) error {
	if len(events) == 0 {
		return attendance.ErrEmptyBatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateBatch begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO scan_events(
  id, company_id, employee_id, employee_name, department, scan_date, scan_minute,
  direction, source, schedule_start_minute, schedule_end_minute, late_tolerance_minutes, created_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("CreateBatch prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		var start, end, tolerance any
		if e.Schedule != nil {
			start, end, tolerance = e.Schedule.StartMinute, e.Schedule.EndMinute, e.Schedule.LateToleranceMinutes
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.CompanyID, e.EmployeeID, e.EmployeeName, e.Department, e.Date.Format(dateLayout), e.Minute,
			string(e.Direction), string(e.Source), start, end, tolerance, toMillis(e.CreatedAt),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("CreateBatch insert %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("CreateBatch commit: %w", err)
	}
	return nil
}

func (s *ScanEventStore) ListByDate(ctx context.Context, companyID string, date time.Time, department *string) ([]attendance.ScanEvent, error) {
	var dept any
	if department != nil {
		dept = *department
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, company_id, employee_id, employee_name, department, scan_date, scan_minute,
       direction, source, schedule_start_minute, schedule_end_minute, late_tolerance_minutes, created_at_ms
FROM scan_events
WHERE company_id = ? AND scan_date = ? AND (? IS NULL OR department = ?)
ORDER BY scan_minute ASC, rowid ASC;
`, companyID, date.Format(dateLayout), dept, dept)
	if err != nil {
		return nil, fmt.Errorf("ListByDate query: %w", err)
	}
	defer rows.Close()

	var out []attendance.ScanEvent
	for rows.Next() {
		var (
			e                     attendance.ScanEvent
			scanDate              string
			direction, source     string
			start, end, tolerance sql.NullInt64
			createdMs             int64
		)
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.EmployeeID, &e.EmployeeName, &e.Department, &scanDate, &e.Minute,
			&direction, &source, &start, &end, &tolerance, &createdMs,
		); err != nil {
			return nil, fmt.Errorf("ListByDate scan: %w", err)
		}

		e.Date, err = time.Parse(dateLayout, scanDate)
		if err != nil {
			return nil, fmt.Errorf("ListByDate parse date %q: %w", scanDate, err)
		}
		e.Direction = attendance.Direction(direction)
		e.Source = attendance.Source(source)
		e.CreatedAt = fromMillis(createdMs)
		if start.Valid && end.Valid {
			e.Schedule = &schedule.Schedule{
				StartMinute:          int(start.Int64),
				EndMinute:            int(end.Int64),
				LateToleranceMinutes: int(tolerance.Int64),
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByDate rows: %w", err)
	}
	return out, nil
}
