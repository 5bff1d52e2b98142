package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
)

type EmployeeStore struct {
	db *sql.DB
}

func NewEmployeeStore(db *sql.DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

// Upsert inserts employees or refreshes them in place.
func (s *EmployeeStore) Upsert(ctx context.Context, employees ...employee.Employee) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Upsert begin: %w", err)
	}

	for _, e := range employees {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO employees(
  id, company_id, employee_code, full_name, department, employment_status,
  hire_date, resignation_date, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  employee_code = excluded.employee_code,
  full_name = excluded.full_name,
  department = excluded.department,
  employment_status = excluded.employment_status,
  hire_date = excluded.hire_date,
  resignation_date = excluded.resignation_date,
  updated_at_ms = excluded.updated_at_ms;
`,
			e.ID, e.CompanyID, e.EmployeeCode, e.FullName, e.Department, string(e.EmploymentStatus),
			nullDate(&e.HireDate), nullDate(e.ResignationDate), toMillis(e.CreatedAt), toMillis(e.UpdatedAt),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("Upsert employee %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Upsert commit: %w", err)
	}
	return nil
}

func (s *EmployeeStore) ListActive(ctx context.Context, companyID string, department *string) ([]employee.Employee, error) {
	var dept any
	if department != nil {
		dept = *department
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, company_id, employee_code, full_name, department, employment_status,
       hire_date, resignation_date, created_at_ms, updated_at_ms
FROM employees
WHERE company_id = ? AND employment_status = 'active' AND (? IS NULL OR department = ?)
ORDER BY employee_code ASC;
`, companyID, dept, dept)
	if err != nil {
		return nil, fmt.Errorf("ListActive query: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		var (
			e                    employee.Employee
			status               string
			hired, resigned      sql.NullString
			createdMs, updatedMs int64
		)
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FullName, &e.Department, &status,
			&hired, &resigned, &createdMs, &updatedMs,
		); err != nil {
			return nil, fmt.Errorf("ListActive scan: %w", err)
		}

		hireDate, err := parseDate(hired)
		if err != nil {
			return nil, fmt.Errorf("ListActive hire_date: %w", err)
		}
		if hireDate != nil {
			e.HireDate = *hireDate
		}
		if e.ResignationDate, err = parseDate(resigned); err != nil {
			return nil, fmt.Errorf("ListActive resignation_date: %w", err)
		}
		e.EmploymentStatus = employee.EmploymentStatus(status)
		e.CreatedAt = fromMillis(createdMs)
		e.UpdatedAt = fromMillis(updatedMs)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActive rows: %w", err)
	}
	return out, nil
}

func (s *EmployeeStore) ListCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT company_id FROM employees WHERE employment_status = 'active' ORDER BY company_id;
`)
	if err != nil {
		return nil, fmt.Errorf("ListCompanyIDs query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ListCompanyIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCompanyIDs rows: %w", err)
	}
	return ids, nil
}
