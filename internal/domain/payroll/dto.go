package payroll

import (
	"time"

	"github.com/hrstack/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== GENERATION DTOs ==========

type GeneratePayrollRequest struct {
	PeriodMonth int     `json:"period_month"`
	PeriodYear  int     `json:"period_year"`
	Notes       *string `json:"notes,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be a valid year"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== ITEM DTOs ==========

type UpdatePayrollItemRequest struct {
	ID              string
	OvertimePay     *decimal.Decimal `json:"overtime_pay,omitempty"`
	Bonus           *decimal.Decimal `json:"bonus,omitempty"`
	OtherEarnings   *decimal.Decimal `json:"other_earnings,omitempty"`
	OtherDeductions *decimal.Decimal `json:"other_deductions,omitempty"`
}

func (r *UpdatePayrollItemRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.OvertimePay != nil && r.OvertimePay.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_pay", Message: "must be non-negative"})
	}
	if r.Bonus != nil && r.Bonus.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bonus", Message: "must be non-negative"})
	}
	if r.OtherEarnings != nil && r.OtherEarnings.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "other_earnings", Message: "must be non-negative"})
	}
	if r.OtherDeductions != nil && r.OtherDeductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "other_deductions", Message: "must be non-negative"})
	}
	if r.OvertimePay == nil && r.Bonus == nil && r.OtherEarnings == nil && r.OtherDeductions == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "at least one adjustment field is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollItemResponse struct {
	ID           string `json:"id"`
	PayrollRunID string `json:"payroll_run_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	EmployeeCode string `json:"employee_code,omitempty"`

	TotalWorkingDays int             `json:"total_working_days"`
	DaysPresent      decimal.Decimal `json:"days_present"`
	DaysAbsent       decimal.Decimal `json:"days_absent"`
	PaidLeaveDays    decimal.Decimal `json:"paid_leave_days"`
	LopDays          decimal.Decimal `json:"lop_days"`

	BasicSalary      decimal.Decimal `json:"basic_salary"`
	HRA              decimal.Decimal `json:"hra"`
	DA               decimal.Decimal `json:"da"`
	TA               decimal.Decimal `json:"ta"`
	SpecialAllowance decimal.Decimal `json:"special_allowance"`

	PF              decimal.Decimal `json:"pf"`
	ESI             decimal.Decimal `json:"esi"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	TDS             decimal.Decimal `json:"tds"`
	LopDeduction    decimal.Decimal `json:"lop_deduction"`

	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	Bonus           decimal.Decimal `json:"bonus"`
	OtherEarnings   decimal.Decimal `json:"other_earnings"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`

	GrossEarnings   decimal.Decimal `json:"gross_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	Status string `json:"status"`
}

// ========== RUN DTOs ==========

type PayrollRunResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	PeriodStart     string          `json:"period_start"`
	PeriodEnd       string          `json:"period_end"`
	Status          string          `json:"status"`
	TotalEmployees  int             `json:"total_employees"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	ProcessedBy     *string         `json:"processed_by,omitempty"`
	ProcessedAt     *string         `json:"processed_at,omitempty"`
	PaidAt          *string         `json:"paid_at,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

type PayrollRunFilter struct {
	Year   *int
	Status *RunStatus
	Page   int
	Limit  int
}

// ========== PAYSLIP DTOs ==========

type PayslipResponse struct {
	CompanyName  string              `json:"company_name"`
	EmployeeName string              `json:"employee_name"`
	EmployeeCode string              `json:"employee_code"`
	PeriodMonth  int                 `json:"period_month"`
	PeriodYear   int                 `json:"period_year"`
	RunStatus    string              `json:"run_status"`
	PaidAt       *string             `json:"paid_at,omitempty"`
	Item         PayrollItemResponse `json:"item"`
}
