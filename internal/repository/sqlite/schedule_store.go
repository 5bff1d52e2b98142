package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/google/uuid"
)

type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// SaveSchedule inserts or replaces a work schedule.
func (s *ScheduleStore) SaveSchedule(ctx context.Context, sc schedule.Schedule) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO work_schedules(
  id, company_id, name, start_minute, end_minute, late_tolerance_minutes, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  start_minute = excluded.start_minute,
  end_minute = excluded.end_minute,
  late_tolerance_minutes = excluded.late_tolerance_minutes,
  updated_at_ms = excluded.updated_at_ms;
`,
		sc.ID, sc.CompanyID, sc.Name, sc.StartMinute, sc.EndMinute, sc.LateToleranceMinutes,
		toMillis(sc.CreatedAt), toMillis(sc.UpdatedAt),
	); err != nil {
		return fmt.Errorf("SaveSchedule %s: %w", sc.ID, err)
	}
	return nil
}

// AddAssignments stores assignments, generating IDs where missing.
// The schedule each one references must already exist.
func (s *ScheduleStore) AddAssignments(ctx context.Context, assignments ...schedule.Assignment) error {
	for _, a := range assignments {
		if (a.EmployeeID == nil) == (a.Department == nil) {
			return schedule.ErrAssignmentTargetNeeded
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("AddAssignments begin: %w", err)
	}

	for _, a := range assignments {
		if a.ID == "" {
			a.ID = uuid.Must(uuid.NewV7()).String()
		}
		start := &a.StartDate
		if _, err := tx.ExecContext(ctx, `
INSERT INTO schedule_assignments(
  id, company_id, work_schedule_id, employee_id, department, start_date, end_date, created_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`,
			a.ID, a.CompanyID, a.ScheduleID, a.EmployeeID, a.Department,
			nullDate(start), nullDate(a.EndDate), toMillis(a.CreatedAt),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("AddAssignments insert %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("AddAssignments commit: %w", err)
	}
	return nil
}

func (s *ScheduleStore) ListAssignments(ctx context.Context, companyID string, date time.Time) ([]schedule.Assignment, error) {
	day := date.Format(dateLayout)

	rows, err := s.db.QueryContext(ctx, `
SELECT sa.id, sa.company_id, sa.work_schedule_id, sa.employee_id, sa.department,
       sa.start_date, sa.end_date, sa.created_at_ms,
       ws.id, ws.company_id, ws.name, ws.start_minute, ws.end_minute, ws.late_tolerance_minutes,
       ws.created_at_ms, ws.updated_at_ms
FROM schedule_assignments sa
JOIN work_schedules ws ON ws.id = sa.work_schedule_id
WHERE sa.company_id = ?
  AND (sa.start_date IS NULL OR sa.start_date <= ?)
  AND (sa.end_date IS NULL OR sa.end_date >= ?)
ORDER BY sa.created_at_ms ASC, sa.rowid ASC;
`, companyID, day, day)
	if err != nil {
		return nil, fmt.Errorf("ListAssignments query: %w", err)
	}
	defer rows.Close()

	var out []schedule.Assignment
	for rows.Next() {
		var (
			a                      schedule.Assignment
			employeeID, department sql.NullString
			startDate, endDate     sql.NullString
			createdMs              int64
			schedCreated, schedUpd int64
		)
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.ScheduleID, &employeeID, &department,
			&startDate, &endDate, &createdMs,
			&a.Schedule.ID, &a.Schedule.CompanyID, &a.Schedule.Name,
			&a.Schedule.StartMinute, &a.Schedule.EndMinute, &a.Schedule.LateToleranceMinutes,
			&schedCreated, &schedUpd,
		); err != nil {
			return nil, fmt.Errorf("ListAssignments scan: %w", err)
		}

		if employeeID.Valid {
			a.EmployeeID = &employeeID.String
		}
		if department.Valid {
			a.Department = &department.String
		}
		start, err := parseDate(startDate)
		if err != nil {
			return nil, fmt.Errorf("ListAssignments start_date: %w", err)
		}
		if start != nil {
			a.StartDate = *start
		}
		if a.EndDate, err = parseDate(endDate); err != nil {
			return nil, fmt.Errorf("ListAssignments end_date: %w", err)
		}
		a.CreatedAt = fromMillis(createdMs)
		a.Schedule.CreatedAt = fromMillis(schedCreated)
		a.Schedule.UpdatedAt = fromMillis(schedUpd)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAssignments rows: %w", err)
	}
	return out, nil
}
