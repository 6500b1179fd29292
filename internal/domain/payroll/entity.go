package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum
type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusPaid       RunStatus = "paid"
)

func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusDraft, RunStatusProcessing, RunStatusCompleted, RunStatusPaid:
		return true
	}
	return false
}

// next returns the only status a run may move to. Transitions are strictly
// forward; there is no cancellation or rollback path.
func (s RunStatus) next() (RunStatus, bool) {
	switch s {
	case RunStatusDraft:
		return RunStatusProcessing, true
	case RunStatusProcessing:
		return RunStatusCompleted, true
	case RunStatusCompleted:
		return RunStatusPaid, true
	}
	return "", false
}

// CheckTransition validates a status change and returns an error naming the
// required prior state when the change is not allowed.
func (s RunStatus) CheckTransition(to RunStatus) error {
	next, ok := s.next()
	if ok && next == to {
		return nil
	}

	var required RunStatus
	switch to {
	case RunStatusProcessing:
		required = RunStatusDraft
	case RunStatusCompleted:
		required = RunStatusProcessing
	case RunStatusPaid:
		required = RunStatusCompleted
	default:
		return fmt.Errorf("%w: cannot move to %s", ErrInvalidStatusTransition, to)
	}

	return fmt.Errorf("%w: run must be %s first, current status is %s", ErrInvalidStatusTransition, required, s)
}

// PayrollRun - one batch payroll computation per (company, month, year)
type PayrollRun struct {
	ID              string
	CompanyID       string
	PeriodMonth     int
	PeriodYear      int
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Status          RunStatus
	TotalEmployees  int
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	ProcessedBy     *string
	ProcessedAt     *time.Time
	PaidAt          *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PayrollItem - one employee's computed payroll line within a run.
//
// BaseGrossEarnings and BaseTotalDeductions hold the values computed at
// generation time and never change afterwards. OvertimePay, Bonus,
// OtherEarnings and OtherDeductions are admin overrides replaced on every
// update; GrossEarnings, TotalDeductions and NetSalary are always recomputed
// from baseline + overrides, so applying the same update twice is a no-op.
type PayrollItem struct {
	ID           string
	PayrollRunID string
	EmployeeID   string

	TotalWorkingDays int
	DaysPresent      decimal.Decimal
	DaysAbsent       decimal.Decimal
	PaidLeaveDays    decimal.Decimal
	LopDays          decimal.Decimal

	BasicSalary      decimal.Decimal
	HRA              decimal.Decimal
	DA               decimal.Decimal
	TA               decimal.Decimal
	SpecialAllowance decimal.Decimal

	PF              decimal.Decimal
	ESI             decimal.Decimal
	ProfessionalTax decimal.Decimal
	TDS             decimal.Decimal
	LopDeduction    decimal.Decimal

	BaseGrossEarnings   decimal.Decimal
	BaseTotalDeductions decimal.Decimal

	OvertimePay     decimal.Decimal
	Bonus           decimal.Decimal
	OtherEarnings   decimal.Decimal
	OtherDeductions decimal.Decimal

	GrossEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	Status    RunStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	Email        *string
}

// PayslipRecord pairs an item with its parent run for payslip rendering.
type PayslipRecord struct {
	Item PayrollItem
	Run  PayrollRun
}

// Recompute refreshes the derived totals from the immutable baseline and the
// current override fields.
func (i *PayrollItem) Recompute() {
	i.GrossEarnings = i.BaseGrossEarnings.Add(i.OvertimePay).Add(i.Bonus).Add(i.OtherEarnings)
	i.TotalDeductions = i.BaseTotalDeductions.Add(i.OtherDeductions)
	i.NetSalary = i.GrossEarnings.Sub(i.TotalDeductions)
}
