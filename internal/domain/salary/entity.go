package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// NamedAmount is a free-form allowance or deduction line.
type NamedAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// SalaryStructure - per-employee fixed monthly compensation, 1:1 with employee.
// GrossSalary, NetSalary and CTC are derived and recomputed in full on every
// write; they are never patched field by field.
type SalaryStructure struct {
	ID         string
	EmployeeID string
	CompanyID  string

	BasicSalary      decimal.Decimal
	HRA              decimal.Decimal
	DA               decimal.Decimal
	TA               decimal.Decimal
	SpecialAllowance decimal.Decimal
	MedicalAllowance decimal.Decimal
	OtherAllowances  []NamedAmount

	PF              decimal.Decimal
	ESI             decimal.Decimal
	ProfessionalTax decimal.Decimal
	TDS             decimal.Decimal
	OtherDeductions []NamedAmount

	GrossSalary decimal.Decimal
	NetSalary   decimal.Decimal
	CTC         decimal.Decimal

	EffectiveFrom time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Recompute derives gross, net and CTC from the component fields.
// Invariant: NetSalary = GrossSalary - (PF+ESI+ProfessionalTax+TDS+sum of other deductions).
func (s *SalaryStructure) Recompute() {
	gross := s.BasicSalary.
		Add(s.HRA).
		Add(s.DA).
		Add(s.TA).
		Add(s.SpecialAllowance).
		Add(s.MedicalAllowance)
	for _, a := range s.OtherAllowances {
		gross = gross.Add(a.Amount)
	}

	deductions := s.PF.Add(s.ESI).Add(s.ProfessionalTax).Add(s.TDS)
	for _, d := range s.OtherDeductions {
		deductions = deductions.Add(d.Amount)
	}

	twelve := decimal.NewFromInt(12)

	s.GrossSalary = gross
	s.NetSalary = gross.Sub(deductions)
	s.CTC = gross.Mul(twelve).Add(s.PF.Mul(twelve)).Add(s.ESI.Mul(twelve))
}
