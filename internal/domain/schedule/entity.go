package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/utils"
)

// Schedule is the working day an employee is expected to follow.
// Start and end are minutes since midnight.
type Schedule struct {
	ID                   string
	CompanyID            string
	Name                 string
	StartMinute          int
	EndMinute            int
	LateToleranceMinutes int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate rejects schedules the classifier cannot reason about.
func (s Schedule) Validate() error {
	if s.StartMinute < 0 || s.StartMinute >= utils.MinutesPerDay {
		return fmt.Errorf("%w: start %d out of range", ErrInvalidSchedule, s.StartMinute)
	}
	if s.EndMinute < 0 || s.EndMinute >= utils.MinutesPerDay {
		return fmt.Errorf("%w: end %d out of range", ErrInvalidSchedule, s.EndMinute)
	}
	if s.EndMinute <= s.StartMinute {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidSchedule,
			utils.FormatClock(s.EndMinute), utils.FormatClock(s.StartMinute))
	}
	if s.LateToleranceMinutes < 0 {
		return fmt.Errorf("%w: negative late tolerance %d", ErrInvalidSchedule, s.LateToleranceMinutes)
	}
	return nil
}

// SameWindow reports whether two schedules classify a day identically.
func (s Schedule) SameWindow(other Schedule) bool {
	return s.StartMinute == other.StartMinute &&
		s.EndMinute == other.EndMinute &&
		s.LateToleranceMinutes == other.LateToleranceMinutes
}

func (s Schedule) String() string {
	return fmt.Sprintf("%s-%s (+%d)", utils.FormatClock(s.StartMinute), utils.FormatClock(s.EndMinute), s.LateToleranceMinutes)
}

// Assignment binds a schedule either to one employee or to a whole department.
// Exactly one of EmployeeID and Department is set.
type Assignment struct {
	ID         string
	CompanyID  string
	ScheduleID string
	EmployeeID *string
	Department *string
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time

	// Join
	Schedule Schedule
}

// ActiveOn reports whether the assignment covers date.
func (a Assignment) ActiveOn(date time.Time) bool {
	d := date.Format("2006-01-02")
	if !a.StartDate.IsZero() && d < a.StartDate.Format("2006-01-02") {
		return false
	}
	if a.EndDate != nil && d > a.EndDate.Format("2006-01-02") {
		return false
	}
	return true
}
