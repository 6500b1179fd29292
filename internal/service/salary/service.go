package salary

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrstack/payroll-backend-go/internal/domain/employee"
	"github.com/hrstack/payroll-backend-go/internal/domain/salary"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
)

type SalaryServiceImpl struct {
	db           *database.DB
	salaryRepo   salary.SalaryRepository
	employeeRepo employee.EmployeeRepository
}

func NewSalaryService(
	db *database.DB,
	salaryRepo salary.SalaryRepository,
	employeeRepo employee.EmployeeRepository,
) salary.SalaryService {
	return &SalaryServiceImpl{
		db:           db,
		salaryRepo:   salaryRepo,
		employeeRepo: employeeRepo,
	}
}

func getClaimsFromContext(ctx context.Context) (companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company_id claim is missing or invalid")
	}

	return companyID, nil
}

func (s *SalaryServiceImpl) Get(ctx context.Context, employeeID string) (salary.SalaryStructureResponse, error) {
	companyID, err := getClaimsFromContext(ctx)
	if err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	structure, err := s.salaryRepo.GetByEmployeeID(ctx, employeeID, companyID)
	if err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	return mapToResponse(structure), nil
}

func (s *SalaryServiceImpl) Upsert(ctx context.Context, req salary.UpsertSalaryStructureRequest) (salary.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	companyID, err := getClaimsFromContext(ctx)
	if err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	effectiveFrom := time.Now()
	if req.EffectiveFrom != nil {
		parsed, err := time.Parse("2006-01-02", *req.EffectiveFrom)
		if err == nil {
			effectiveFrom = parsed
		}
	}

	structure := salary.SalaryStructure{
		EmployeeID:       req.EmployeeID,
		CompanyID:        companyID,
		BasicSalary:      req.BasicSalary,
		HRA:              req.HRA,
		DA:               req.DA,
		TA:               req.TA,
		SpecialAllowance: req.SpecialAllowance,
		MedicalAllowance: req.MedicalAllowance,
		OtherAllowances:  req.OtherAllowances,
		PF:               req.PF,
		ESI:              req.ESI,
		ProfessionalTax:  req.ProfessionalTax,
		TDS:              req.TDS,
		OtherDeductions:  req.OtherDeductions,
		EffectiveFrom:    effectiveFrom,
	}
	// Derived fields are always rebuilt in full, never patched.
	structure.Recompute()

	saved, err := s.salaryRepo.Upsert(ctx, structure)
	if err != nil {
		return salary.SalaryStructureResponse{}, err
	}

	return mapToResponse(saved), nil
}

func mapToResponse(s salary.SalaryStructure) salary.SalaryStructureResponse {
	allowances := s.OtherAllowances
	if allowances == nil {
		allowances = []salary.NamedAmount{}
	}
	deductions := s.OtherDeductions
	if deductions == nil {
		deductions = []salary.NamedAmount{}
	}

	return salary.SalaryStructureResponse{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		BasicSalary:      s.BasicSalary,
		HRA:              s.HRA,
		DA:               s.DA,
		TA:               s.TA,
		SpecialAllowance: s.SpecialAllowance,
		MedicalAllowance: s.MedicalAllowance,
		OtherAllowances:  allowances,
		PF:               s.PF,
		ESI:              s.ESI,
		ProfessionalTax:  s.ProfessionalTax,
		TDS:              s.TDS,
		OtherDeductions:  deductions,
		GrossSalary:      s.GrossSalary,
		NetSalary:        s.NetSalary,
		CTC:              s.CTC,
		EffectiveFrom:    s.EffectiveFrom.Format("2006-01-02"),
	}
}
