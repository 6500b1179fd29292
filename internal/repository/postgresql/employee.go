package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hrstack/payroll-backend-go/internal/domain/employee"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.user_id, e.company_id, e.employee_code, e.full_name, u.email,
			e.employment_status, e.hire_date, e.created_at, e.updated_at, e.deleted_at
		FROM employees e
		LEFT JOIN users u ON u.id = e.user_id
		WHERE e.id = $1 AND e.company_id = $2 AND e.deleted_at IS NULL
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&emp.ID, &emp.UserID, &emp.CompanyID, &emp.EmployeeCode, &emp.FullName, &emp.Email,
		&emp.EmploymentStatus, &emp.HireDate, &emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

func (r *employeeRepository) ListActiveWithSalary(ctx context.Context, companyID string) ([]employee.EmployeeWithSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.user_id, e.company_id, e.employee_code, e.full_name, u.email,
			e.employment_status, e.hire_date, e.created_at, e.updated_at, e.deleted_at,
			s.id, s.employee_id, s.company_id,
			s.basic_salary, s.hra, s.da, s.ta, s.special_allowance, s.medical_allowance, s.other_allowances,
			s.pf, s.esi, s.professional_tax, s.tds, s.other_deductions,
			s.gross_salary, s.net_salary, s.ctc, s.effective_from, s.created_at, s.updated_at
		FROM employees e
		LEFT JOIN users u ON u.id = e.user_id
		JOIN salary_structures s ON s.employee_id = e.id
		WHERE e.company_id = $1 AND e.employment_status = $2 AND e.deleted_at IS NULL
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, companyID, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees with salary: %w", err)
	}
	defer rows.Close()

	var result []employee.EmployeeWithSalary
	for rows.Next() {
		var es employee.EmployeeWithSalary
		var otherAllowances, otherDeductions []byte

		err := rows.Scan(
			&es.Employee.ID, &es.Employee.UserID, &es.Employee.CompanyID,
			&es.Employee.EmployeeCode, &es.Employee.FullName, &es.Employee.Email,
			&es.Employee.EmploymentStatus, &es.Employee.HireDate,
			&es.Employee.CreatedAt, &es.Employee.UpdatedAt, &es.Employee.DeletedAt,
			&es.SalaryStructure.ID, &es.SalaryStructure.EmployeeID, &es.SalaryStructure.CompanyID,
			&es.SalaryStructure.BasicSalary, &es.SalaryStructure.HRA, &es.SalaryStructure.DA,
			&es.SalaryStructure.TA, &es.SalaryStructure.SpecialAllowance, &es.SalaryStructure.MedicalAllowance,
			&otherAllowances,
			&es.SalaryStructure.PF, &es.SalaryStructure.ESI, &es.SalaryStructure.ProfessionalTax,
			&es.SalaryStructure.TDS, &otherDeductions,
			&es.SalaryStructure.GrossSalary, &es.SalaryStructure.NetSalary, &es.SalaryStructure.CTC,
			&es.SalaryStructure.EffectiveFrom, &es.SalaryStructure.CreatedAt, &es.SalaryStructure.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee with salary: %w", err)
		}

		if len(otherAllowances) > 0 {
			if err := json.Unmarshal(otherAllowances, &es.SalaryStructure.OtherAllowances); err != nil {
				return nil, fmt.Errorf("failed to decode other allowances: %w", err)
			}
		}
		if len(otherDeductions) > 0 {
			if err := json.Unmarshal(otherDeductions, &es.SalaryStructure.OtherDeductions); err != nil {
				return nil, fmt.Errorf("failed to decode other deductions: %w", err)
			}
		}

		result = append(result, es)
	}

	return result, nil
}
