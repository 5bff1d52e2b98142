package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
)

type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{
		employees: make(map[string]employee.Employee),
	}
}

// Upsert adds or replaces employees, keyed by company and ID.
func (r *EmployeeRepository) Upsert(employees ...employee.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range employees {
		r.employees[e.CompanyID+"/"+e.ID] = e
	}
}

func (r *EmployeeRepository) ListActive(_ context.Context, companyID string, department *string) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []employee.Employee
	for _, e := range r.employees {
		if e.CompanyID != companyID || e.EmploymentStatus != employee.EmploymentStatusActive {
			continue
		}
		if department != nil && e.Department != *department {
			continue
		}
		out = append(out, e)
	}

	slices.SortFunc(out, func(a, b employee.Employee) int {
		return cmp.Or(cmp.Compare(a.EmployeeCode, b.EmployeeCode), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *EmployeeRepository) ListCompanyIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.employees {
		if e.EmploymentStatus != employee.EmploymentStatusActive {
			continue
		}
		if _, ok := seen[e.CompanyID]; ok {
			continue
		}
		seen[e.CompanyID] = struct{}{}
		out = append(out, e.CompanyID)
	}
	slices.Sort(out)
	return out, nil
}
