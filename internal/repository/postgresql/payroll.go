package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== RUNS ==========

const runColumns = `id, company_id, period_month, period_year, period_start, period_end,
	status, total_employees, total_gross, total_deductions, total_net,
	processed_by, processed_at, paid_at, notes, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var r payroll.PayrollRun
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.PeriodMonth, &r.PeriodYear, &r.PeriodStart, &r.PeriodEnd,
		&r.Status, &r.TotalEmployees, &r.TotalGross, &r.TotalDeductions, &r.TotalNet,
		&r.ProcessedBy, &r.ProcessedAt, &r.PaidAt, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (
			company_id, period_month, period_year, period_start, period_end,
			status, total_employees, total_gross, total_deductions, total_net, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + runColumns

	created, err := scanRun(q.QueryRow(ctx, query,
		run.CompanyID, run.PeriodMonth, run.PeriodYear, run.PeriodStart, run.PeriodEnd,
		run.Status, run.TotalEmployees, run.TotalGross, run.TotalDeductions, run.TotalNet, run.Notes,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_run_period") {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) GetRunByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs WHERE id = $1 AND company_id = $2 FOR UPDATE`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to lock payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) GetRunByPeriod(ctx context.Context, companyID string, month, year int) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3`

	run, err := scanRun(q.QueryRow(ctx, query, companyID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrPayrollRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run by period: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string, filter payroll.PayrollRunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Year != nil {
		where = append(where, fmt.Sprintf("period_year = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	whereClause := strings.Join(where, " AND ")

	var totalCount int64
	countQuery := "SELECT COUNT(*) FROM payroll_runs WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM payroll_runs WHERE %s
		ORDER BY period_year DESC, period_month DESC
		LIMIT $%d OFFSET $%d`, runColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, totalCount, nil
}

func (r *payrollRepository) UpdateRunTotals(ctx context.Context, run payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET total_employees = $2, total_gross = $3, total_deductions = $4,
			total_net = $5, notes = COALESCE($6, notes), updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		run.ID, run.TotalEmployees, run.TotalGross, run.TotalDeductions, run.TotalNet, run.Notes,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrPayrollRunNotFound
		}
		return fmt.Errorf("failed to update payroll run totals: %w", err)
	}

	return nil
}

func (r *payrollRepository) SetRunProcessing(ctx context.Context, runID, companyID, processedBy string, processedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, processed_by = $4, processed_at = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, runID, companyID, payroll.RunStatusProcessing, processedBy, processedAt).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrPayrollRunNotFound
		}
		return fmt.Errorf("failed to set payroll run processing: %w", err)
	}

	return nil
}

func (r *payrollRepository) SetRunCompleted(ctx context.Context, runID, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, runID, companyID, payroll.RunStatusCompleted).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrPayrollRunNotFound
		}
		return fmt.Errorf("failed to set payroll run completed: %w", err)
	}

	return nil
}

func (r *payrollRepository) SetRunPaid(ctx context.Context, runID, companyID string, paidAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, runID, companyID, payroll.RunStatusPaid, paidAt).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrPayrollRunNotFound
		}
		return fmt.Errorf("failed to set payroll run paid: %w", err)
	}

	return nil
}

func (r *payrollRepository) ListOverdueDraftRuns(ctx context.Context, periodEndBefore time.Time) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM payroll_runs
		WHERE status = $1 AND period_end < $2
		ORDER BY period_end`

	rows, err := q.Query(ctx, query, payroll.RunStatusDraft, periodEndBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue draft runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// ========== ITEMS ==========

const itemColumns = `i.id, i.payroll_run_id, i.employee_id,
	i.total_working_days, i.days_present, i.days_absent, i.paid_leave_days, i.lop_days,
	i.basic_salary, i.hra, i.da, i.ta, i.special_allowance,
	i.pf, i.esi, i.professional_tax, i.tds, i.lop_deduction,
	i.base_gross_earnings, i.base_total_deductions,
	i.overtime_pay, i.bonus, i.other_earnings, i.other_deductions,
	i.gross_earnings, i.total_deductions, i.net_salary,
	i.status, i.created_at, i.updated_at,
	e.full_name, e.employee_code, u.email`

func scanItem(row pgx.Row) (payroll.PayrollItem, error) {
	var i payroll.PayrollItem
	err := row.Scan(
		&i.ID, &i.PayrollRunID, &i.EmployeeID,
		&i.TotalWorkingDays, &i.DaysPresent, &i.DaysAbsent, &i.PaidLeaveDays, &i.LopDays,
		&i.BasicSalary, &i.HRA, &i.DA, &i.TA, &i.SpecialAllowance,
		&i.PF, &i.ESI, &i.ProfessionalTax, &i.TDS, &i.LopDeduction,
		&i.BaseGrossEarnings, &i.BaseTotalDeductions,
		&i.OvertimePay, &i.Bonus, &i.OtherEarnings, &i.OtherDeductions,
		&i.GrossEarnings, &i.TotalDeductions, &i.NetSalary,
		&i.Status, &i.CreatedAt, &i.UpdatedAt,
		&i.EmployeeName, &i.EmployeeCode, &i.Email,
	)
	return i, err
}

const itemJoin = `FROM payroll_items i
	JOIN employees e ON e.id = i.employee_id
	LEFT JOIN users u ON u.id = e.user_id`

func (r *payrollRepository) CreateItems(ctx context.Context, items []payroll.PayrollItem) error {
	if len(items) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_items (
			payroll_run_id, employee_id,
			total_working_days, days_present, days_absent, paid_leave_days, lop_days,
			basic_salary, hra, da, ta, special_allowance,
			pf, esi, professional_tax, tds, lop_deduction,
			base_gross_earnings, base_total_deductions,
			overtime_pay, bonus, other_earnings, other_deductions,
			gross_earnings, total_deductions, net_salary, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	for _, item := range items {
		_, err := q.Exec(ctx, query,
			item.PayrollRunID, item.EmployeeID,
			item.TotalWorkingDays, item.DaysPresent, item.DaysAbsent, item.PaidLeaveDays, item.LopDays,
			item.BasicSalary, item.HRA, item.DA, item.TA, item.SpecialAllowance,
			item.PF, item.ESI, item.ProfessionalTax, item.TDS, item.LopDeduction,
			item.BaseGrossEarnings, item.BaseTotalDeductions,
			item.OvertimePay, item.Bonus, item.OtherEarnings, item.OtherDeductions,
			item.GrossEarnings, item.TotalDeductions, item.NetSalary, item.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to create payroll item for employee %s: %w", item.EmployeeID, err)
		}
	}

	return nil
}

func (r *payrollRepository) DeleteItemsByRunID(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_items WHERE payroll_run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to delete payroll items: %w", err)
	}
	return nil
}

func (r *payrollRepository) GetItemByID(ctx context.Context, id string, companyID string) (payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + itemColumns + ` ` + itemJoin + `
		JOIN payroll_runs pr ON pr.id = i.payroll_run_id
		WHERE i.id = $1 AND pr.company_id = $2`

	item, err := scanItem(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollItem{}, payroll.ErrPayrollItemNotFound
		}
		return payroll.PayrollItem{}, fmt.Errorf("failed to get payroll item: %w", err)
	}

	return item, nil
}

func (r *payrollRepository) GetItemsByRunID(ctx context.Context, runID string, companyID string) ([]payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + itemColumns + ` ` + itemJoin + `
		JOIN payroll_runs pr ON pr.id = i.payroll_run_id
		WHERE i.payroll_run_id = $1 AND pr.company_id = $2
		ORDER BY e.employee_code`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll items: %w", err)
	}
	defer rows.Close()

	var items []payroll.PayrollItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *payrollRepository) GetItemForEmployee(ctx context.Context, runID, employeeID, companyID string) (payroll.PayrollItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + itemColumns + ` ` + itemJoin + `
		JOIN payroll_runs pr ON pr.id = i.payroll_run_id
		WHERE i.payroll_run_id = $1 AND i.employee_id = $2 AND pr.company_id = $3`

	item, err := scanItem(q.QueryRow(ctx, query, runID, employeeID, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollItem{}, payroll.ErrPayrollItemNotFound
		}
		return payroll.PayrollItem{}, fmt.Errorf("failed to get payroll item for employee: %w", err)
	}

	return item, nil
}

func (r *payrollRepository) ListPayslips(ctx context.Context, employeeID, companyID string) ([]payroll.PayslipRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + itemColumns + `,
		pr.id, pr.company_id, pr.period_month, pr.period_year, pr.period_start, pr.period_end,
		pr.status, pr.total_employees, pr.total_gross, pr.total_deductions, pr.total_net,
		pr.processed_by, pr.processed_at, pr.paid_at, pr.notes, pr.created_at, pr.updated_at
		` + itemJoin + `
		JOIN payroll_runs pr ON pr.id = i.payroll_run_id
		WHERE i.employee_id = $1 AND pr.company_id = $2 AND pr.status IN ($3, $4)
		ORDER BY pr.period_year DESC, pr.period_month DESC`

	rows, err := q.Query(ctx, query, employeeID, companyID, payroll.RunStatusCompleted, payroll.RunStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayslipRecord
	for rows.Next() {
		var i payroll.PayrollItem
		var run payroll.PayrollRun
		err := rows.Scan(
			&i.ID, &i.PayrollRunID, &i.EmployeeID,
			&i.TotalWorkingDays, &i.DaysPresent, &i.DaysAbsent, &i.PaidLeaveDays, &i.LopDays,
			&i.BasicSalary, &i.HRA, &i.DA, &i.TA, &i.SpecialAllowance,
			&i.PF, &i.ESI, &i.ProfessionalTax, &i.TDS, &i.LopDeduction,
			&i.BaseGrossEarnings, &i.BaseTotalDeductions,
			&i.OvertimePay, &i.Bonus, &i.OtherEarnings, &i.OtherDeductions,
			&i.GrossEarnings, &i.TotalDeductions, &i.NetSalary,
			&i.Status, &i.CreatedAt, &i.UpdatedAt,
			&i.EmployeeName, &i.EmployeeCode, &i.Email,
			&run.ID, &run.CompanyID, &run.PeriodMonth, &run.PeriodYear, &run.PeriodStart, &run.PeriodEnd,
			&run.Status, &run.TotalEmployees, &run.TotalGross, &run.TotalDeductions, &run.TotalNet,
			&run.ProcessedBy, &run.ProcessedAt, &run.PaidAt, &run.Notes, &run.CreatedAt, &run.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		records = append(records, payroll.PayslipRecord{Item: i, Run: run})
	}

	return records, nil
}

func (r *payrollRepository) UpdateItemOverrides(ctx context.Context, item payroll.PayrollItem) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_items
		SET overtime_pay = $2, bonus = $3, other_earnings = $4, other_deductions = $5,
			gross_earnings = $6, total_deductions = $7, net_salary = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		item.ID, item.OvertimePay, item.Bonus, item.OtherEarnings, item.OtherDeductions,
		item.GrossEarnings, item.TotalDeductions, item.NetSalary,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrPayrollItemNotFound
		}
		return fmt.Errorf("failed to update payroll item: %w", err)
	}

	return nil
}

func (r *payrollRepository) SetItemsStatusByRunID(ctx context.Context, runID string, status payroll.RunStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payroll_items SET status = $2, updated_at = NOW() WHERE payroll_run_id = $1`

	if _, err := q.Exec(ctx, query, runID, status); err != nil {
		return fmt.Errorf("failed to update payroll item statuses: %w", err)
	}
	return nil
}
