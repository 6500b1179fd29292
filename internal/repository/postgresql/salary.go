package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hrstack/payroll-backend-go/internal/domain/salary"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepository{db: db}
}

const salaryColumns = `id, employee_id, company_id,
	basic_salary, hra, da, ta, special_allowance, medical_allowance, other_allowances,
	pf, esi, professional_tax, tds, other_deductions,
	gross_salary, net_salary, ctc, effective_from, created_at, updated_at`

func scanSalary(row pgx.Row) (salary.SalaryStructure, error) {
	var s salary.SalaryStructure
	var otherAllowances, otherDeductions []byte

	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CompanyID,
		&s.BasicSalary, &s.HRA, &s.DA, &s.TA, &s.SpecialAllowance, &s.MedicalAllowance, &otherAllowances,
		&s.PF, &s.ESI, &s.ProfessionalTax, &s.TDS, &otherDeductions,
		&s.GrossSalary, &s.NetSalary, &s.CTC, &s.EffectiveFrom, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return salary.SalaryStructure{}, err
	}

	if len(otherAllowances) > 0 {
		if err := json.Unmarshal(otherAllowances, &s.OtherAllowances); err != nil {
			return salary.SalaryStructure{}, fmt.Errorf("failed to decode other allowances: %w", err)
		}
	}
	if len(otherDeductions) > 0 {
		if err := json.Unmarshal(otherDeductions, &s.OtherDeductions); err != nil {
			return salary.SalaryStructure{}, fmt.Errorf("failed to decode other deductions: %w", err)
		}
	}

	return s, nil
}

func (r *salaryRepository) GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salaryColumns + ` FROM salary_structures
		WHERE employee_id = $1 AND company_id = $2`

	s, err := scanSalary(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return salary.SalaryStructure{}, salary.ErrSalaryStructureNotFound
		}
		return salary.SalaryStructure{}, fmt.Errorf("failed to get salary structure: %w", err)
	}

	return s, nil
}

func (r *salaryRepository) Upsert(ctx context.Context, s salary.SalaryStructure) (salary.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	otherAllowances, err := json.Marshal(s.OtherAllowances)
	if err != nil {
		return salary.SalaryStructure{}, fmt.Errorf("failed to encode other allowances: %w", err)
	}
	otherDeductions, err := json.Marshal(s.OtherDeductions)
	if err != nil {
		return salary.SalaryStructure{}, fmt.Errorf("failed to encode other deductions: %w", err)
	}

	query := `
		INSERT INTO salary_structures (
			employee_id, company_id,
			basic_salary, hra, da, ta, special_allowance, medical_allowance, other_allowances,
			pf, esi, professional_tax, tds, other_deductions,
			gross_salary, net_salary, ctc, effective_from
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (employee_id) DO UPDATE SET
			basic_salary = EXCLUDED.basic_salary,
			hra = EXCLUDED.hra,
			da = EXCLUDED.da,
			ta = EXCLUDED.ta,
			special_allowance = EXCLUDED.special_allowance,
			medical_allowance = EXCLUDED.medical_allowance,
			other_allowances = EXCLUDED.other_allowances,
			pf = EXCLUDED.pf,
			esi = EXCLUDED.esi,
			professional_tax = EXCLUDED.professional_tax,
			tds = EXCLUDED.tds,
			other_deductions = EXCLUDED.other_deductions,
			gross_salary = EXCLUDED.gross_salary,
			net_salary = EXCLUDED.net_salary,
			ctc = EXCLUDED.ctc,
			effective_from = EXCLUDED.effective_from,
			updated_at = NOW()
		RETURNING ` + salaryColumns

	saved, err := scanSalary(q.QueryRow(ctx, query,
		s.EmployeeID, s.CompanyID,
		s.BasicSalary, s.HRA, s.DA, s.TA, s.SpecialAllowance, s.MedicalAllowance, otherAllowances,
		s.PF, s.ESI, s.ProfessionalTax, s.TDS, otherDeductions,
		s.GrossSalary, s.NetSalary, s.CTC, s.EffectiveFrom,
	))
	if err != nil {
		return salary.SalaryStructure{}, fmt.Errorf("failed to upsert salary structure: %w", err)
	}

	return saved, nil
}
