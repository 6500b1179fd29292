package payroll

import (
	"testing"
	"time"

	"github.com/hrstack/payroll-backend-go/internal/domain/attendance"
	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
	"github.com/hrstack/payroll-backend-go/internal/domain/salary"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monToFri = []int{1, 2, 3, 4, 5}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testStructure mirrors a typical mid-level salary: gross 50000, statutory
// deductions 4500, net 45500.
func testStructure() salary.SalaryStructure {
	s := salary.SalaryStructure{
		EmployeeID:       "emp-1",
		BasicSalary:      decimal.NewFromInt(30000),
		HRA:              decimal.NewFromInt(12000),
		DA:               decimal.NewFromInt(3000),
		TA:               decimal.NewFromInt(2000),
		SpecialAllowance: decimal.NewFromInt(3000),
		PF:               decimal.NewFromInt(1800),
		ProfessionalTax:  decimal.NewFromInt(200),
		TDS:              decimal.NewFromInt(2500),
	}
	s.Recompute()
	return s
}

func presentLogs(n int) []attendance.Log {
	logs := make([]attendance.Log, n)
	for i := range logs {
		logs[i] = attendance.Log{Status: attendance.StatusPresent}
	}
	return logs
}

func TestPeriodBounds(t *testing.T) {
	t.Parallel()

	start, end := PeriodBounds(1, 2024)
	assert.Equal(t, date(2024, time.January, 1), start)
	assert.Equal(t, date(2024, time.January, 31), end)

	// Leap February
	start, end = PeriodBounds(2, 2024)
	assert.Equal(t, date(2024, time.February, 1), start)
	assert.Equal(t, date(2024, time.February, 29), end)
}

func TestCountWorkingDays(t *testing.T) {
	t.Parallel()

	start, end := PeriodBounds(1, 2024)

	assert.Equal(t, 23, CountWorkingDays(start, end, monToFri, nil))

	// A holiday on a working day reduces the count.
	holidays := []time.Time{date(2024, time.January, 1)}
	assert.Equal(t, 22, CountWorkingDays(start, end, monToFri, holidays))

	// A holiday on a weekend changes nothing.
	holidays = []time.Time{date(2024, time.January, 6)}
	assert.Equal(t, 23, CountWorkingDays(start, end, monToFri, holidays))

	// Duplicate holiday dates are only excluded once.
	holidays = []time.Time{date(2024, time.January, 1), date(2024, time.January, 1)}
	assert.Equal(t, 22, CountWorkingDays(start, end, monToFri, holidays))

	// Six-day work week.
	monToSat := []int{1, 2, 3, 4, 5, 6}
	assert.Equal(t, 27, CountWorkingDays(start, end, monToSat, nil))
}

func TestAggregateAttendance(t *testing.T) {
	t.Parallel()

	logs := []attendance.Log{
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusPresent},
		{Status: attendance.StatusHalfDay},
		{Status: attendance.StatusOnLeave},
		{Status: attendance.StatusAbsent},
		{Status: attendance.Status("unknown")},
	}

	b := AggregateAttendance(logs)

	assert.True(t, b.DaysPresent.Equal(decimal.NewFromFloat(2.5)), "half day counts 0.5, got %s", b.DaysPresent)
	assert.True(t, b.DaysAbsent.Equal(decimal.NewFromInt(1)))
	assert.True(t, b.PaidLeaveDays.Equal(decimal.NewFromInt(1)))
	assert.True(t, b.EffectiveWorkingDays().Equal(decimal.NewFromFloat(3.5)))
}

func TestAttendanceRatio(t *testing.T) {
	t.Parallel()

	full := AggregateAttendance(presentLogs(23))
	assert.True(t, AttendanceRatio(23, full).Equal(decimal.NewFromInt(1)))

	// Ratio never exceeds 1 even with surplus logs.
	surplus := AggregateAttendance(presentLogs(25))
	assert.True(t, AttendanceRatio(23, surplus).Equal(decimal.NewFromInt(1)))

	// Zero expected working days yields a zero ratio, not a division error.
	assert.True(t, AttendanceRatio(0, full).IsZero())

	half := AttendanceBreakdown{
		DaysPresent:   decimal.NewFromInt(10),
		DaysAbsent:    decimal.Zero,
		PaidLeaveDays: decimal.Zero,
	}
	assert.True(t, AttendanceRatio(20, half).Equal(decimal.NewFromFloat(0.5)))
}

func TestLossOfPayDays(t *testing.T) {
	t.Parallel()

	// 23 expected, 15 present, 3 on leave, nothing marked: 5 unaccounted days.
	b := AttendanceBreakdown{
		DaysPresent:   decimal.NewFromInt(15),
		DaysAbsent:    decimal.Zero,
		PaidLeaveDays: decimal.NewFromInt(3),
	}
	assert.True(t, LossOfPayDays(23, b).Equal(decimal.NewFromInt(5)))

	// Explicitly marked absences are not counted again as LOP.
	b.DaysAbsent = decimal.NewFromInt(5)
	assert.True(t, LossOfPayDays(23, b).IsZero())

	// Never negative.
	over := AggregateAttendance(presentLogs(30))
	assert.True(t, LossOfPayDays(23, over).IsZero())
}

func TestComputeItem_FullAttendance(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	b := AggregateAttendance(presentLogs(23))

	item := ComputeItem(structure, b, 23)

	assert.True(t, item.LopDays.IsZero())
	assert.True(t, item.LopDeduction.IsZero())
	assert.True(t, item.GrossEarnings.Equal(structure.GrossSalary), "got %s", item.GrossEarnings)
	assert.True(t, item.TotalDeductions.Equal(decimal.NewFromInt(4500)))
	assert.True(t, item.NetSalary.Equal(structure.NetSalary), "full attendance must pay the structure net, got %s", item.NetSalary)
}

func TestComputeItem_ProrationAndLop(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	b := AttendanceBreakdown{
		DaysPresent:   decimal.NewFromInt(15),
		DaysAbsent:    decimal.Zero,
		PaidLeaveDays: decimal.NewFromInt(3),
	}

	item := ComputeItem(structure, b, 23)

	assert.True(t, item.LopDays.Equal(decimal.NewFromInt(5)))

	// 5 LOP days at the gross per-day rate: 50000 * 5 / 23 = 10869.57.
	wantLop := decimal.RequireFromString("10869.57")
	assert.True(t, item.LopDeduction.Equal(wantLop), "got %s", item.LopDeduction)

	// Earnings components are prorated by 18/23 and individually rounded.
	assert.True(t, item.BasicSalary.Equal(decimal.RequireFromString("23478.26")), "got %s", item.BasicSalary)
	assert.True(t, item.HRA.Equal(decimal.RequireFromString("9391.30")), "got %s", item.HRA)

	// Gross is the exact sum of the rounded components.
	sum := item.BasicSalary.Add(item.HRA).Add(item.DA).Add(item.TA).Add(item.SpecialAllowance)
	assert.True(t, item.GrossEarnings.Equal(sum))

	// Statutory deductions stay at full value.
	assert.True(t, item.PF.Equal(structure.PF))
	assert.True(t, item.TDS.Equal(structure.TDS))

	// Net identity holds.
	assert.True(t, item.NetSalary.Equal(item.GrossEarnings.Sub(item.TotalDeductions)))
}

func TestComputeItem_Deterministic(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	b := AttendanceBreakdown{
		DaysPresent:   decimal.NewFromFloat(17.5),
		DaysAbsent:    decimal.NewFromInt(2),
		PaidLeaveDays: decimal.NewFromInt(1),
	}

	first := ComputeItem(structure, b, 23)
	second := ComputeItem(structure, b, 23)

	assert.True(t, first.GrossEarnings.Equal(second.GrossEarnings))
	assert.True(t, first.TotalDeductions.Equal(second.TotalDeductions))
	assert.True(t, first.NetSalary.Equal(second.NetSalary))
	assert.True(t, first.LopDays.Equal(second.LopDays))
}

func TestComputeItem_ZeroWorkingDays(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	item := ComputeItem(structure, AttendanceBreakdown{
		DaysPresent:   decimal.Zero,
		DaysAbsent:    decimal.Zero,
		PaidLeaveDays: decimal.Zero,
	}, 0)

	assert.True(t, item.GrossEarnings.IsZero())
	assert.True(t, item.LopDeduction.IsZero())
	// Fixed statutory deductions still apply.
	assert.True(t, item.TotalDeductions.Equal(decimal.NewFromInt(4500)))
}

func TestFoldTotals(t *testing.T) {
	t.Parallel()

	structure := testStructure()
	items := []struct {
		present int
	}{{23}, {20}, {12}}

	var computed []payroll.PayrollItem
	for _, tc := range items {
		computed = append(computed, ComputeItem(structure, AggregateAttendance(presentLogs(tc.present)), 23))
	}

	totals := FoldTotals(computed)

	var wantGross, wantDeductions, wantNet decimal.Decimal
	for _, item := range computed {
		wantGross = wantGross.Add(item.GrossEarnings)
		wantDeductions = wantDeductions.Add(item.TotalDeductions)
		wantNet = wantNet.Add(item.NetSalary)
	}

	require.True(t, totals.Gross.Equal(wantGross))
	require.True(t, totals.Deductions.Equal(wantDeductions))
	require.True(t, totals.Net.Equal(wantNet))

	// Aggregate identity: net = gross - deductions.
	assert.True(t, totals.Net.Equal(totals.Gross.Sub(totals.Deductions)))

	// Folding the same items again yields the same totals.
	again := FoldTotals(computed)
	assert.True(t, again.Net.Equal(totals.Net))

	// Empty run.
	empty := FoldTotals(nil)
	assert.True(t, empty.Gross.IsZero())
	assert.True(t, empty.Net.IsZero())
}
