package employee

import "time"

// Employee is one entry of a company's directory, the source of the
// expected-attendance roster.
type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	Department       string
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	ResignationDate  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

// ExpectedOn reports whether the employee should badge on date.
func (e Employee) ExpectedOn(date time.Time) bool {
	if e.EmploymentStatus != EmploymentStatusActive {
		return false
	}
	d := date.Format("2006-01-02")
	if !e.HireDate.IsZero() && d < e.HireDate.Format("2006-01-02") {
		return false
	}
	if e.ResignationDate != nil && d > e.ResignationDate.Format("2006-01-02") {
		return false
	}
	return true
}
