package payroll

import "errors"

var (
	ErrPayrollRunNotFound      = errors.New("payroll run not found")
	ErrPayrollItemNotFound     = errors.New("payroll item not found")
	ErrPayrollRunExists        = errors.New("payroll run already exists for this period")
	ErrRunNotEditable          = errors.New("payroll run already processed, regenerate is not allowed")
	ErrItemNotEditable         = errors.New("payroll item can only be edited while its run is draft")
	ErrInvalidStatusTransition = errors.New("invalid payroll status transition")
	ErrNoEligibleEmployees     = errors.New("no active employees with a salary structure found")
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrPayslipForbidden        = errors.New("payslip belongs to another employee")
	ErrPayslipNotAvailable     = errors.New("payslip is available once the payroll run is completed")
)
