package payroll

import (
	"time"

	"github.com/hrstack/payroll-backend-go/internal/domain/attendance"
	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
	"github.com/hrstack/payroll-backend-go/internal/domain/salary"
	"github.com/shopspring/decimal"
)

// moneyPlaces is the rounding applied to every computed monetary amount.
const moneyPlaces = 2

var one = decimal.NewFromInt(1)

// PeriodBounds returns the inclusive first and last calendar day of a month.
func PeriodBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// CountWorkingDays counts calendar days in [start, end] whose weekday is in
// the working set and which do not fall on a holiday. Date equality is by
// calendar day, not timestamp.
func CountWorkingDays(start, end time.Time, workingWeekdays []int, holidays []time.Time) int {
	working := make(map[time.Weekday]bool, len(workingWeekdays))
	for _, wd := range workingWeekdays {
		working[time.Weekday(wd)] = true
	}

	holiday := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holiday[h.Format("2006-01-02")] = true
	}

	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if working[day.Weekday()] && !holiday[day.Format("2006-01-02")] {
			count++
		}
	}
	return count
}

// AttendanceBreakdown classifies one employee's attendance logs for a period.
type AttendanceBreakdown struct {
	DaysPresent   decimal.Decimal
	DaysAbsent    decimal.Decimal
	PaidLeaveDays decimal.Decimal
}

// EffectiveWorkingDays is the number of expected working days the employee
// actually covered: present (half days count 0.5) plus approved leave.
func (b AttendanceBreakdown) EffectiveWorkingDays() decimal.Decimal {
	return b.DaysPresent.Add(b.PaidLeaveDays)
}

// AggregateAttendance buckets attendance logs by status. A half day
// contributes 0.5 to days present. Unknown statuses are ignored.
func AggregateAttendance(logs []attendance.Log) AttendanceBreakdown {
	b := AttendanceBreakdown{
		DaysPresent:   decimal.Zero,
		DaysAbsent:    decimal.Zero,
		PaidLeaveDays: decimal.Zero,
	}
	half := decimal.NewFromFloat(0.5)

	for _, l := range logs {
		switch l.Status {
		case attendance.StatusPresent:
			b.DaysPresent = b.DaysPresent.Add(one)
		case attendance.StatusHalfDay:
			b.DaysPresent = b.DaysPresent.Add(half)
		case attendance.StatusOnLeave:
			b.PaidLeaveDays = b.PaidLeaveDays.Add(one)
		case attendance.StatusAbsent:
			b.DaysAbsent = b.DaysAbsent.Add(one)
		}
	}
	return b
}

// LossOfPayDays treats any working day that is neither covered nor explicitly
// marked absent as an unpaid day. Explicit absences are subtracted first so
// they are not double-penalized through the LOP deduction.
func LossOfPayDays(totalWorkingDays int, b AttendanceBreakdown) decimal.Decimal {
	lop := decimal.NewFromInt(int64(totalWorkingDays)).
		Sub(b.EffectiveWorkingDays()).
		Sub(b.DaysAbsent)
	if lop.IsNegative() {
		return decimal.Zero
	}
	return lop
}

// AttendanceRatio is the covered fraction of expected working days, capped at
// 1 even if effective days somehow exceed the period.
func AttendanceRatio(totalWorkingDays int, b AttendanceBreakdown) decimal.Decimal {
	if totalWorkingDays <= 0 {
		return decimal.Zero
	}
	ratio := b.EffectiveWorkingDays().Div(decimal.NewFromInt(int64(totalWorkingDays)))
	if ratio.GreaterThan(one) {
		return one
	}
	return ratio
}

// ComputeItem builds one employee's payroll line from their salary structure
// and attendance for the period. Basic, HRA, DA, TA and special allowance are
// prorated by the attendance ratio; the medical allowance is not carried onto
// the item. Statutory deductions are taken at full value; the LOP deduction
// uses the structure's gross per-day rate.
func ComputeItem(structure salary.SalaryStructure, b AttendanceBreakdown, totalWorkingDays int) payroll.PayrollItem {
	ratio := AttendanceRatio(totalWorkingDays, b)
	lopDays := LossOfPayDays(totalWorkingDays, b)

	basic := structure.BasicSalary.Mul(ratio).Round(moneyPlaces)
	hra := structure.HRA.Mul(ratio).Round(moneyPlaces)
	da := structure.DA.Mul(ratio).Round(moneyPlaces)
	ta := structure.TA.Mul(ratio).Round(moneyPlaces)
	special := structure.SpecialAllowance.Mul(ratio).Round(moneyPlaces)

	gross := basic.Add(hra).Add(da).Add(ta).Add(special)

	lopDeduction := decimal.Zero
	if totalWorkingDays > 0 {
		perDay := structure.GrossSalary.Div(decimal.NewFromInt(int64(totalWorkingDays)))
		lopDeduction = lopDays.Mul(perDay).Round(moneyPlaces)
	}

	deductions := structure.PF.
		Add(structure.ESI).
		Add(structure.ProfessionalTax).
		Add(structure.TDS).
		Add(lopDeduction)

	item := payroll.PayrollItem{
		EmployeeID: structure.EmployeeID,

		TotalWorkingDays: totalWorkingDays,
		DaysPresent:      b.DaysPresent,
		DaysAbsent:       b.DaysAbsent,
		PaidLeaveDays:    b.PaidLeaveDays,
		LopDays:          lopDays,

		BasicSalary:      basic,
		HRA:              hra,
		DA:               da,
		TA:               ta,
		SpecialAllowance: special,

		PF:              structure.PF,
		ESI:             structure.ESI,
		ProfessionalTax: structure.ProfessionalTax,
		TDS:             structure.TDS,
		LopDeduction:    lopDeduction,

		BaseGrossEarnings:   gross,
		BaseTotalDeductions: deductions,

		OvertimePay:     decimal.Zero,
		Bonus:           decimal.Zero,
		OtherEarnings:   decimal.Zero,
		OtherDeductions: decimal.Zero,

		Status: payroll.RunStatusDraft,
	}
	item.Recompute()
	return item
}

// RunTotals is the company-wide aggregate of a run's items.
type RunTotals struct {
	Gross      decimal.Decimal
	Deductions decimal.Decimal
	Net        decimal.Decimal
}

// FoldTotals reduces computed items into run aggregates as a final step, so
// regeneration can never double-count.
func FoldTotals(items []payroll.PayrollItem) RunTotals {
	totals := RunTotals{
		Gross:      decimal.Zero,
		Deductions: decimal.Zero,
		Net:        decimal.Zero,
	}
	for _, item := range items {
		totals.Gross = totals.Gross.Add(item.GrossEarnings)
		totals.Deductions = totals.Deductions.Add(item.TotalDeductions)
		totals.Net = totals.Net.Add(item.NetSalary)
	}
	return totals
}
