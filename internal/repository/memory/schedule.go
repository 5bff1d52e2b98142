package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
)

type AssignmentRepository struct {
	mu          sync.RWMutex
	assignments []schedule.Assignment
}

func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{}
}

// Add appends assignments. Earlier assignments win when several target the
// same employee or department.
func (r *AssignmentRepository) Add(assignments ...schedule.Assignment) error {
	for _, a := range assignments {
		if (a.EmployeeID == nil) == (a.Department == nil) {
			return schedule.ErrAssignmentTargetNeeded
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = append(r.assignments, assignments...)
	return nil
}

func (r *AssignmentRepository) ListAssignments(_ context.Context, companyID string, date time.Time) ([]schedule.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []schedule.Assignment
	for _, a := range r.assignments {
		if a.CompanyID == companyID && a.ActiveOn(date) {
			out = append(out, a)
		}
	}
	return out, nil
}
