package payroll

import "context"

type PayrollService interface {
	Generate(ctx context.Context, req GeneratePayrollRequest) (PayrollRunResponse, error)
	GetRun(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, filter PayrollRunFilter) ([]PayrollRunResponse, int64, error)
	GetRunItems(ctx context.Context, runID string) ([]PayrollItemResponse, error)
	UpdateItem(ctx context.Context, req UpdatePayrollItemRequest) (PayrollItemResponse, error)
	Process(ctx context.Context, runID string) (PayrollRunResponse, error)
	Complete(ctx context.Context, runID string) (PayrollRunResponse, error)
	MarkPaid(ctx context.Context, runID string, req MarkPaidRequest) (PayrollRunResponse, error)
	GetPayslip(ctx context.Context, runID, employeeID string) (PayslipResponse, error)
	ListEmployeePayslips(ctx context.Context, employeeID string) ([]PayslipResponse, error)
}
