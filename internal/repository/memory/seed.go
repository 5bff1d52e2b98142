package memory

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-reconciler/internal/fixtures"
)

// Stores bundles the in-memory repositories of one process.
type Stores struct {
	ScanEvents  *ScanEventRepository
	Employees   *EmployeeRepository
	Assignments *AssignmentRepository
	Reports     *ReportRepository
}

func NewStores() *Stores {
	return &Stores{
		ScanEvents:  NewScanEventRepository(),
		Employees:   NewEmployeeRepository(),
		Assignments: NewAssignmentRepository(),
		Reports:     NewReportRepository(),
	}
}

// SeedReferenceDay loads the reference roster, schedules and badge day under
// fixtures.ReferenceCompanyID.
func (s *Stores) SeedReferenceDay(ctx context.Context) error {
	companyID := fixtures.ReferenceCompanyID

	s.Employees.Upsert(fixtures.GetReferenceEmployees(companyID)...)

	if err := s.Assignments.Add(fixtures.GetDefaultAssignments(companyID)...); err != nil {
		return fmt.Errorf("seed assignments: %w", err)
	}

	events := fixtures.GetReferenceEvents(companyID)
	for i := range events {
		events[i].ID = fmt.Sprintf("seed-%02d", i+1)
	}
	if err := s.ScanEvents.CreateBatch(ctx, events); err != nil {
		return fmt.Errorf("seed scan events: %w", err)
	}
	return nil
}
