package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll runs and items.
// All methods include companyID parameter to prevent cross-company data access attacks.
type PayrollRepository interface {
	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	// GetRunByIDForUpdate locks the run row for the rest of the current
	// transaction, serializing against concurrent status changes.
	GetRunByIDForUpdate(ctx context.Context, id string, companyID string) (PayrollRun, error)
	GetRunByPeriod(ctx context.Context, companyID string, month, year int) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, filter PayrollRunFilter) ([]PayrollRun, int64, error)
	UpdateRunTotals(ctx context.Context, run PayrollRun) error
	SetRunProcessing(ctx context.Context, runID, companyID, processedBy string, processedAt time.Time) error
	SetRunCompleted(ctx context.Context, runID, companyID string) error
	SetRunPaid(ctx context.Context, runID, companyID string, paidAt time.Time) error
	// ListOverdueDraftRuns returns draft runs across all companies whose
	// period ended before the cutoff. Used by the reminder job only.
	ListOverdueDraftRuns(ctx context.Context, periodEndBefore time.Time) ([]PayrollRun, error)

	// Items
	CreateItems(ctx context.Context, items []PayrollItem) error
	DeleteItemsByRunID(ctx context.Context, runID string) error
	GetItemByID(ctx context.Context, id string, companyID string) (PayrollItem, error)
	GetItemsByRunID(ctx context.Context, runID string, companyID string) ([]PayrollItem, error)
	GetItemForEmployee(ctx context.Context, runID, employeeID, companyID string) (PayrollItem, error)
	ListPayslips(ctx context.Context, employeeID, companyID string) ([]PayslipRecord, error)
	UpdateItemOverrides(ctx context.Context, item PayrollItem) error
	SetItemsStatusByRunID(ctx context.Context, runID string, status RunStatus) error
}
