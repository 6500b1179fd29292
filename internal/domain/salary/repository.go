package salary

import "context"

type SalaryRepository interface {
	GetByEmployeeID(ctx context.Context, employeeID string, companyID string) (SalaryStructure, error)
	Upsert(ctx context.Context, structure SalaryStructure) (SalaryStructure, error)
}

type SalaryService interface {
	Get(ctx context.Context, employeeID string) (SalaryStructureResponse, error)
	Upsert(ctx context.Context, req UpsertSalaryStructureRequest) (SalaryStructureResponse, error)
}
