package salary

import (
	"github.com/hrstack/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type UpsertSalaryStructureRequest struct {
	EmployeeID string `json:"-"`

	BasicSalary      decimal.Decimal `json:"basic_salary"`
	HRA              decimal.Decimal `json:"hra"`
	DA               decimal.Decimal `json:"da"`
	TA               decimal.Decimal `json:"ta"`
	SpecialAllowance decimal.Decimal `json:"special_allowance"`
	MedicalAllowance decimal.Decimal `json:"medical_allowance"`
	OtherAllowances  []NamedAmount   `json:"other_allowances,omitempty"`

	PF              decimal.Decimal `json:"pf"`
	ESI             decimal.Decimal `json:"esi"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	TDS             decimal.Decimal `json:"tds"`
	OtherDeductions []NamedAmount   `json:"other_deductions,omitempty"`

	EffectiveFrom *string `json:"effective_from,omitempty"`
}

func (r *UpsertSalaryStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}
	if r.BasicSalary.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "is required"})
	}
	for field, v := range map[string]decimal.Decimal{
		"hra":               r.HRA,
		"da":                r.DA,
		"ta":                r.TA,
		"special_allowance": r.SpecialAllowance,
		"medical_allowance": r.MedicalAllowance,
		"pf":                r.PF,
		"esi":               r.ESI,
		"professional_tax":  r.ProfessionalTax,
		"tds":               r.TDS,
	} {
		if v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	for _, a := range r.OtherAllowances {
		if validator.IsEmpty(a.Name) {
			errs = append(errs, validator.ValidationError{Field: "other_allowances", Message: "every entry needs a name"})
			break
		}
	}
	for _, d := range r.OtherDeductions {
		if validator.IsEmpty(d.Name) {
			errs = append(errs, validator.ValidationError{Field: "other_deductions", Message: "every entry needs a name"})
			break
		}
	}
	if r.EffectiveFrom != nil {
		if _, ok := validator.IsValidDate(*r.EffectiveFrom); !ok {
			errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryStructureResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`

	BasicSalary      decimal.Decimal `json:"basic_salary"`
	HRA              decimal.Decimal `json:"hra"`
	DA               decimal.Decimal `json:"da"`
	TA               decimal.Decimal `json:"ta"`
	SpecialAllowance decimal.Decimal `json:"special_allowance"`
	MedicalAllowance decimal.Decimal `json:"medical_allowance"`
	OtherAllowances  []NamedAmount   `json:"other_allowances"`

	PF              decimal.Decimal `json:"pf"`
	ESI             decimal.Decimal `json:"esi"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	TDS             decimal.Decimal `json:"tds"`
	OtherDeductions []NamedAmount   `json:"other_deductions"`

	GrossSalary decimal.Decimal `json:"gross_salary"`
	NetSalary   decimal.Decimal `json:"net_salary"`
	CTC         decimal.Decimal `json:"ctc"`

	EffectiveFrom string `json:"effective_from"`
}
