package employee

import "context"

type EmployeeRepository interface {
	// ListActive returns the active employees of a company, optionally restricted
	// to one department, ordered by employee code.
	ListActive(ctx context.Context, companyID string, department *string) ([]Employee, error)

	// ListCompanyIDs returns every company that has at least one active employee.
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
