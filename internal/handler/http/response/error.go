package response

import (
	"errors"
	"net/http"

	"github.com/hrstack/payroll-backend-go/internal/domain/company"
	"github.com/hrstack/payroll-backend-go/internal/domain/employee"
	"github.com/hrstack/payroll-backend-go/internal/domain/notification"
	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
	"github.com/hrstack/payroll-backend-go/internal/domain/salary"
	"github.com/hrstack/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrPayrollItemNotFound):
		NotFound(w, "Payroll item not found")
	case errors.Is(err, payroll.ErrPayrollRunExists):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrRunNotEditable):
		Conflict(w, "Payroll run is no longer editable")
	case errors.Is(err, payroll.ErrItemNotEditable):
		BadRequest(w, "Payroll item can only be adjusted while the run is in draft", nil)
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrNoEligibleEmployees):
		BadRequest(w, "No active employees with a salary structure found for this period", nil)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrPayslipForbidden):
		Forbidden(w, "You can only view your own payslips")
	case errors.Is(err, payroll.ErrPayslipNotAvailable):
		NotFound(w, "Payslip is not available until the payroll run is completed")

	// Salary domain errors
	case errors.Is(err, salary.ErrSalaryStructureNotFound):
		NotFound(w, "Salary structure not found")

	// Employee and company domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
