package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
)

type assignmentRepositoryImpl struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) schedule.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

// ListAssignments implements schedule.AssignmentRepository.
func (a *assignmentRepositoryImpl) ListAssignments(ctx context.Context, companyID string, date time.Time) ([]schedule.Assignment, error) {
	q := GetQuerier(ctx, a.db)

	// Schedule times are stored as TIME and converted to minutes since midnight here.
	query := `
		SELECT
			sa.id, sa.company_id, sa.work_schedule_id, sa.employee_id, sa.department,
			sa.start_date, sa.end_date, sa.created_at,
			ws.id, ws.company_id, ws.name,
			(EXTRACT(EPOCH FROM ws.start_time) / 60)::int,
			(EXTRACT(EPOCH FROM ws.end_time) / 60)::int,
			ws.late_tolerance_minutes, ws.created_at, ws.updated_at
		FROM schedule_assignments sa
		JOIN work_schedules ws ON ws.id = sa.work_schedule_id
		WHERE sa.company_id = $1
		  AND ws.deleted_at IS NULL
		  AND (sa.start_date IS NULL OR $2::date >= sa.start_date)
		  AND (sa.end_date IS NULL OR $2::date <= sa.end_date)
		ORDER BY sa.created_at ASC, sa.id ASC
	`

	rows, err := q.Query(ctx, query, companyID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule assignments: %w", err)
	}
	defer rows.Close()

	var assignments []schedule.Assignment
	for rows.Next() {
		var (
			as        schedule.Assignment
			startDate *time.Time
		)
		err := rows.Scan(
			&as.ID, &as.CompanyID, &as.ScheduleID, &as.EmployeeID, &as.Department,
			&startDate, &as.EndDate, &as.CreatedAt,
			&as.Schedule.ID, &as.Schedule.CompanyID, &as.Schedule.Name,
			&as.Schedule.StartMinute,
			&as.Schedule.EndMinute,
			&as.Schedule.LateToleranceMinutes, &as.Schedule.CreatedAt, &as.Schedule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule assignment: %w", err)
		}
		if startDate != nil {
			as.StartDate = *startDate
		}
		assignments = append(assignments, as)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule assignments: %w", err)
	}

	return assignments, nil
}
