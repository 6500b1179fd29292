package employee

import (
	"context"

	"github.com/hrstack/payroll-backend-go/internal/domain/salary"
)

// EmployeeWithSalary pairs a directory entry with its salary structure for
// payroll eligibility queries.
type EmployeeWithSalary struct {
	Employee        Employee
	SalaryStructure salary.SalaryStructure
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	// ListActiveWithSalary returns every active, non-deleted employee of the
	// company that has a salary structure configured.
	ListActiveWithSalary(ctx context.Context, companyID string) ([]EmployeeWithSalary, error)
}
