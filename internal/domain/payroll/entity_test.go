package payroll

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatus_CheckTransition(t *testing.T) {
	t.Parallel()

	// The only legal path is draft -> processing -> completed -> paid.
	assert.NoError(t, RunStatusDraft.CheckTransition(RunStatusProcessing))
	assert.NoError(t, RunStatusProcessing.CheckTransition(RunStatusCompleted))
	assert.NoError(t, RunStatusCompleted.CheckTransition(RunStatusPaid))

	// No skipping ahead.
	err := RunStatusDraft.CheckTransition(RunStatusCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))
	assert.Contains(t, err.Error(), "must be processing first")

	err = RunStatusDraft.CheckTransition(RunStatusPaid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be completed first")

	err = RunStatusProcessing.CheckTransition(RunStatusPaid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be completed first")

	// No going back.
	assert.Error(t, RunStatusProcessing.CheckTransition(RunStatusDraft))
	assert.Error(t, RunStatusCompleted.CheckTransition(RunStatusProcessing))

	// Paid is terminal.
	assert.Error(t, RunStatusPaid.CheckTransition(RunStatusDraft))
	assert.Error(t, RunStatusPaid.CheckTransition(RunStatusProcessing))
	assert.Error(t, RunStatusPaid.CheckTransition(RunStatusCompleted))

	// Unknown target.
	err = RunStatusDraft.CheckTransition(RunStatus("archived"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))
}

func TestRunStatus_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []RunStatus{RunStatusDraft, RunStatusProcessing, RunStatusCompleted, RunStatusPaid} {
		assert.True(t, s.IsValid(), "%s should be valid", s)
	}
	assert.False(t, RunStatus("archived").IsValid())
	assert.False(t, RunStatus("").IsValid())
}

func TestPayrollItem_Recompute(t *testing.T) {
	t.Parallel()

	item := PayrollItem{
		BaseGrossEarnings:   decimal.NewFromInt(50000),
		BaseTotalDeductions: decimal.NewFromInt(4500),
	}

	item.Recompute()
	assert.True(t, item.GrossEarnings.Equal(decimal.NewFromInt(50000)))
	assert.True(t, item.NetSalary.Equal(decimal.NewFromInt(45500)))

	// Overrides are added on top of the untouched baseline.
	item.OvertimePay = decimal.NewFromInt(2000)
	item.Bonus = decimal.NewFromInt(5000)
	item.OtherDeductions = decimal.NewFromInt(1000)
	item.Recompute()

	assert.True(t, item.GrossEarnings.Equal(decimal.NewFromInt(57000)))
	assert.True(t, item.TotalDeductions.Equal(decimal.NewFromInt(5500)))
	assert.True(t, item.NetSalary.Equal(decimal.NewFromInt(51500)))

	// Recomputing with unchanged overrides is a no-op, not an accumulation.
	item.Recompute()
	item.Recompute()
	assert.True(t, item.GrossEarnings.Equal(decimal.NewFromInt(57000)))
	assert.True(t, item.NetSalary.Equal(decimal.NewFromInt(51500)))

	// Replacing an override replaces its effect entirely.
	item.Bonus = decimal.NewFromInt(1000)
	item.Recompute()
	assert.True(t, item.GrossEarnings.Equal(decimal.NewFromInt(53000)))
}

func TestGeneratePayrollRequest_Validate(t *testing.T) {
	t.Parallel()

	req := GeneratePayrollRequest{PeriodMonth: 1, PeriodYear: 2024}
	assert.NoError(t, req.Validate())

	req = GeneratePayrollRequest{PeriodMonth: 0, PeriodYear: 2024}
	assert.Error(t, req.Validate())

	req = GeneratePayrollRequest{PeriodMonth: 13, PeriodYear: 2024}
	assert.Error(t, req.Validate())

	req = GeneratePayrollRequest{PeriodMonth: 6, PeriodYear: 1999}
	assert.Error(t, req.Validate())
}

func TestUpdatePayrollItemRequest_Validate(t *testing.T) {
	t.Parallel()

	bonus := decimal.NewFromInt(1000)
	req := UpdatePayrollItemRequest{ID: "item-1", Bonus: &bonus}
	assert.NoError(t, req.Validate())

	// At least one adjustment is required.
	empty := UpdatePayrollItemRequest{ID: "item-1"}
	assert.Error(t, empty.Validate())

	neg := decimal.NewFromInt(-50)
	req = UpdatePayrollItemRequest{ID: "item-1", OvertimePay: &neg}
	assert.Error(t, req.Validate())

	// Zero is a valid way to clear an override.
	zero := decimal.Zero
	req = UpdatePayrollItemRequest{ID: "item-1", Bonus: &zero}
	assert.NoError(t, req.Validate())
}
