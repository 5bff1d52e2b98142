package schedule

import (
	"context"
	"time"
)

// AssignmentRepository resolves which schedules apply to a company on a given date.
type AssignmentRepository interface {
	// ListAssignments returns every employee- or department-level assignment
	// active on date, joined with its schedule.
	ListAssignments(ctx context.Context, companyID string, date time.Time) ([]Assignment, error)
}
