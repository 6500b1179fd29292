package salary

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSalaryStructure_Recompute(t *testing.T) {
	t.Parallel()

	s := SalaryStructure{
		BasicSalary:      decimal.NewFromInt(30000),
		HRA:              decimal.NewFromInt(12000),
		DA:               decimal.NewFromInt(3000),
		TA:               decimal.NewFromInt(2000),
		SpecialAllowance: decimal.NewFromInt(3000),
		MedicalAllowance: decimal.NewFromInt(1250),
		OtherAllowances: []NamedAmount{
			{Name: "Internet", Amount: decimal.NewFromInt(750)},
		},
		PF:              decimal.NewFromInt(1800),
		ESI:             decimal.NewFromInt(150),
		ProfessionalTax: decimal.NewFromInt(200),
		TDS:             decimal.NewFromInt(2500),
		OtherDeductions: []NamedAmount{
			{Name: "Canteen", Amount: decimal.NewFromInt(350)},
		},
	}

	s.Recompute()

	assert.True(t, s.GrossSalary.Equal(decimal.NewFromInt(52000)), "got %s", s.GrossSalary)
	assert.True(t, s.NetSalary.Equal(decimal.NewFromInt(47000)), "got %s", s.NetSalary)

	// CTC = annual gross plus annual employer PF and ESI contributions.
	wantCTC := decimal.NewFromInt(52000*12 + 1800*12 + 150*12)
	assert.True(t, s.CTC.Equal(wantCTC), "got %s", s.CTC)

	// Recompute is derived purely from components; repeating it changes nothing.
	s.Recompute()
	assert.True(t, s.GrossSalary.Equal(decimal.NewFromInt(52000)))

	// Changing a component and recomputing replaces the derived fields.
	s.TDS = decimal.NewFromInt(3000)
	s.Recompute()
	assert.True(t, s.NetSalary.Equal(decimal.NewFromInt(46500)))
}

func TestUpsertSalaryStructureRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := UpsertSalaryStructureRequest{
		BasicSalary: decimal.NewFromInt(30000),
		HRA:         decimal.NewFromInt(12000),
	}
	assert.NoError(t, valid.Validate())

	missing := UpsertSalaryStructureRequest{}
	assert.Error(t, missing.Validate(), "basic salary is required")

	negative := UpsertSalaryStructureRequest{
		BasicSalary: decimal.NewFromInt(30000),
		TDS:         decimal.NewFromInt(-1),
	}
	assert.Error(t, negative.Validate())

	unnamed := UpsertSalaryStructureRequest{
		BasicSalary:     decimal.NewFromInt(30000),
		OtherAllowances: []NamedAmount{{Amount: decimal.NewFromInt(500)}},
	}
	assert.Error(t, unnamed.Validate())

	badDate := "2024-13-40"
	invalidDate := UpsertSalaryStructureRequest{
		BasicSalary:   decimal.NewFromInt(30000),
		EffectiveFrom: &badDate,
	}
	assert.Error(t, invalidDate.Validate())

	goodDate := "2024-04-01"
	withDate := UpsertSalaryStructureRequest{
		BasicSalary:   decimal.NewFromInt(30000),
		EffectiveFrom: &goodDate,
	}
	assert.NoError(t, withDate.Validate())
}
