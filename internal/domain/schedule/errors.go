package schedule

import "errors"

var (
	ErrInvalidSchedule        = errors.New("invalid work schedule")
	ErrAssignmentTargetNeeded = errors.New("assignment needs either an employee or a department")
)
