package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrstack/payroll-backend-go/internal/domain/attendance"
	"github.com/hrstack/payroll-backend-go/internal/domain/company"
	"github.com/hrstack/payroll-backend-go/internal/domain/employee"
	"github.com/hrstack/payroll-backend-go/internal/domain/notification"
	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
	"github.com/hrstack/payroll-backend-go/internal/pkg/email"
	"github.com/hrstack/payroll-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type PayrollServiceImpl struct {
	db             *database.DB
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	companyRepo    company.CompanyRepository
	notifications  notification.Service
	emailService   email.EmailService
	payslipBaseURL string
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	companyRepo company.CompanyRepository,
	notifications notification.Service,
	emailService email.EmailService,
	payslipBaseURL string,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		db:             db,
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		companyRepo:    companyRepo,
		notifications:  notifications,
		emailService:   emailService,
		payslipBaseURL: payslipBaseURL,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

func isAdminFromContext(ctx context.Context) bool {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return false
	}
	isAdmin, _ := claims["is_admin"].(bool)
	return isAdmin
}

// checkPayslipAccess lets admins read any payslip and everyone else only
// their own.
func (s *PayrollServiceImpl) checkPayslipAccess(ctx context.Context, employeeID, companyID, userID string) error {
	if isAdminFromContext(ctx) {
		return nil
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		return err
	}
	if emp.UserID == nil || *emp.UserID != userID {
		return payroll.ErrPayslipForbidden
	}
	return nil
}

// ========== GENERATION ==========

func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	// A run may be regenerated only while it is still draft.
	existing, err := s.payrollRepo.GetRunByPeriod(ctx, companyID, req.PeriodMonth, req.PeriodYear)
	hasExisting := err == nil
	if err != nil && !errors.Is(err, payroll.ErrPayrollRunNotFound) {
		return payroll.PayrollRunResponse{}, err
	}
	if hasExisting && existing.Status != payroll.RunStatusDraft {
		return payroll.PayrollRunResponse{}, payroll.ErrRunNotEditable
	}

	eligible, err := s.employeeRepo.ListActiveWithSalary(ctx, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to list eligible employees: %w", err)
	}
	if len(eligible) == 0 {
		return payroll.PayrollRunResponse{}, payroll.ErrNoEligibleEmployees
	}

	periodStart, periodEnd := PeriodBounds(req.PeriodMonth, req.PeriodYear)

	workingWeekdays, err := s.companyRepo.GetWorkingDays(ctx, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get working days: %w", err)
	}
	holidays, err := s.companyRepo.GetHolidays(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get holidays: %w", err)
	}

	totalWorkingDays := CountWorkingDays(periodStart, periodEnd, workingWeekdays, holidays)

	// Per-employee computation is independent and purely derived from the
	// inputs read above; nothing is written until every item has computed.
	items := make([]payroll.PayrollItem, 0, len(eligible))
	for _, e := range eligible {
		logs, err := s.attendanceRepo.GetLogs(ctx, e.Employee.ID, periodStart, periodEnd)
		if err != nil {
			return payroll.PayrollRunResponse{}, fmt.Errorf("failed to get attendance for employee %s: %w", e.Employee.ID, err)
		}
		breakdown := AggregateAttendance(logs)
		items = append(items, ComputeItem(e.SalaryStructure, breakdown, totalWorkingDays))
	}

	totals := FoldTotals(items)

	run := payroll.PayrollRun{
		CompanyID:       companyID,
		PeriodMonth:     req.PeriodMonth,
		PeriodYear:      req.PeriodYear,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		Status:          payroll.RunStatusDraft,
		TotalEmployees:  len(items),
		TotalGross:      totals.Gross,
		TotalDeductions: totals.Deductions,
		TotalNet:        totals.Net,
		Notes:           req.Notes,
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if hasExisting {
			// Re-check under a row lock: the draft check above ran outside
			// this transaction, so a concurrent Process may have advanced
			// the run in between.
			locked, err := s.payrollRepo.GetRunByIDForUpdate(txCtx, existing.ID, companyID)
			if err != nil {
				return err
			}
			if locked.Status != payroll.RunStatusDraft {
				return payroll.ErrRunNotEditable
			}

			// Full replace: clear prior items before writing the new batch.
			run.ID = existing.ID
			if err := s.payrollRepo.DeleteItemsByRunID(txCtx, existing.ID); err != nil {
				return err
			}
			if err := s.payrollRepo.UpdateRunTotals(txCtx, run); err != nil {
				return err
			}
		} else {
			created, err := s.payrollRepo.CreateRun(txCtx, run)
			if err != nil {
				return err
			}
			run = created
		}

		for i := range items {
			items[i].PayrollRunID = run.ID
		}
		return s.payrollRepo.CreateItems(txCtx, items)
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return s.GetRun(ctx, run.ID)
}

// ========== RUN QUERIES ==========

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.PayrollRunFilter) ([]payroll.PayrollRunResponse, int64, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	runs, totalCount, err := s.payrollRepo.ListRuns(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, mapToRunResponse(run))
	}
	return result, totalCount, nil
}

func (s *PayrollServiceImpl) GetRunItems(ctx context.Context, runID string) ([]payroll.PayrollItemResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.payrollRepo.GetRunByID(ctx, runID, companyID); err != nil {
		return nil, err
	}

	items, err := s.payrollRepo.GetItemsByRunID(ctx, runID, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.PayrollItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, mapToItemResponse(item))
	}
	return result, nil
}

// ========== ITEM ADJUSTMENT ==========

func (s *PayrollServiceImpl) UpdateItem(ctx context.Context, req payroll.UpdatePayrollItemRequest) (payroll.PayrollItemResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	item, err := s.payrollRepo.GetItemByID(ctx, req.ID, companyID)
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}
	if item.Status != payroll.RunStatusDraft {
		return payroll.PayrollItemResponse{}, payroll.ErrItemNotEditable
	}

	// Overrides replace the stored values; totals always derive from the
	// immutable baseline, so repeating the same request changes nothing.
	if req.OvertimePay != nil {
		item.OvertimePay = *req.OvertimePay
	}
	if req.Bonus != nil {
		item.Bonus = *req.Bonus
	}
	if req.OtherEarnings != nil {
		item.OtherEarnings = *req.OtherEarnings
	}
	if req.OtherDeductions != nil {
		item.OtherDeductions = *req.OtherDeductions
	}
	item.Recompute()

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.payrollRepo.UpdateItemOverrides(txCtx, item); err != nil {
			return err
		}

		// Keep run aggregates equal to the sum of their items.
		siblings, err := s.payrollRepo.GetItemsByRunID(txCtx, item.PayrollRunID, companyID)
		if err != nil {
			return err
		}
		totals := FoldTotals(siblings)

		run, err := s.payrollRepo.GetRunByID(txCtx, item.PayrollRunID, companyID)
		if err != nil {
			return err
		}
		run.TotalGross = totals.Gross
		run.TotalDeductions = totals.Deductions
		run.TotalNet = totals.Net
		run.TotalEmployees = len(siblings)
		return s.payrollRepo.UpdateRunTotals(txCtx, run)
	})
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}

	updated, err := s.payrollRepo.GetItemByID(ctx, req.ID, companyID)
	if err != nil {
		return payroll.PayrollItemResponse{}, err
	}
	return mapToItemResponse(updated), nil
}

// ========== STATE MACHINE ==========

func (s *PayrollServiceImpl) Process(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if err := run.Status.CheckTransition(payroll.RunStatusProcessing); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := s.payrollRepo.SetRunProcessing(txCtx, runID, companyID, userID, time.Now()); err != nil {
			return err
		}
		return s.payrollRepo.SetItemsStatusByRunID(txCtx, runID, payroll.RunStatusProcessing)
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return s.GetRun(ctx, runID)
}

func (s *PayrollServiceImpl) Complete(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if err := run.Status.CheckTransition(payroll.RunStatusCompleted); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := s.payrollRepo.SetRunCompleted(txCtx, runID, companyID); err != nil {
			return err
		}
		return s.payrollRepo.SetItemsStatusByRunID(txCtx, runID, payroll.RunStatusCompleted)
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	// The status change is already committed; delivery failures are logged
	// and swallowed so a slow mail provider cannot undo the transition.
	items, err := s.payrollRepo.GetItemsByRunID(ctx, runID, companyID)
	if err != nil {
		slog.Error("payroll completed but dispatch loop could not load items", "run_id", runID, "error", err)
	} else {
		s.dispatchCompleted(ctx, run, items)
	}

	return s.GetRun(ctx, runID)
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, runID string, req payroll.MarkPaidRequest) (payroll.PayrollRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if err := run.Status.CheckTransition(payroll.RunStatusPaid); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		if err := s.payrollRepo.SetRunPaid(txCtx, runID, companyID, paidAt); err != nil {
			return err
		}
		return s.payrollRepo.SetItemsStatusByRunID(txCtx, runID, payroll.RunStatusPaid)
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return s.GetRun(ctx, runID)
}

// dispatchCompleted fires one in-app notification and one payslip email per
// item, best-effort.
func (s *PayrollServiceImpl) dispatchCompleted(ctx context.Context, run payroll.PayrollRun, items []payroll.PayrollItem) {
	monthName := time.Month(run.PeriodMonth).String()

	var notifs []notification.CreateNotificationRequest
	for _, item := range items {
		emp, err := s.employeeRepo.GetByID(ctx, item.EmployeeID, run.CompanyID)
		if err != nil {
			slog.Error("payslip dispatch skipped, employee lookup failed", "employee_id", item.EmployeeID, "error", err)
			continue
		}

		if emp.UserID != nil {
			notifs = append(notifs, notification.CreateNotificationRequest{
				CompanyID:   run.CompanyID,
				RecipientID: *emp.UserID,
				Type:        notification.TypePayrollGenerated,
				Title:       "Payroll completed",
				Message:     fmt.Sprintf("Your payroll for %s %d is ready", monthName, run.PeriodYear),
				Data: map[string]interface{}{
					"payroll_run_id": run.ID,
					"net_salary":     item.NetSalary.String(),
				},
			})
		}

		if emp.Email != nil {
			payslipLink := fmt.Sprintf("%s/payroll/runs/%s/payslips/%s", s.payslipBaseURL, run.ID, emp.ID)
			go func(to, name string, net string, link string) {
				if err := s.emailService.SendPayslip(to, name, monthName, run.PeriodYear, net, link); err != nil {
					slog.Error("failed to send payslip email", "to", to, "run_id", run.ID, "error", err)
				}
			}(*emp.Email, emp.FullName, item.NetSalary.StringFixed(2), payslipLink)
		}
	}

	if len(notifs) > 0 {
		if err := s.notifications.QueueBulkNotification(ctx, notifs); err != nil {
			slog.Error("failed to queue payroll notifications", "run_id", run.ID, "error", err)
		}
	}
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, runID, employeeID string) (payroll.PayslipResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if err := s.checkPayslipAccess(ctx, employeeID, companyID, userID); err != nil {
		return payroll.PayslipResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	// Draft and processing figures are still subject to admin edits; payslips
	// exist only for completed and paid runs, same as ListPayslips.
	if run.Status != payroll.RunStatusCompleted && run.Status != payroll.RunStatusPaid {
		return payroll.PayslipResponse{}, payroll.ErrPayslipNotAvailable
	}
	item, err := s.payrollRepo.GetItemForEmployee(ctx, runID, employeeID, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return mapToPayslipResponse(comp.Name, run, item), nil
}

func (s *PayrollServiceImpl) ListEmployeePayslips(ctx context.Context, employeeID string) ([]payroll.PayslipResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkPayslipAccess(ctx, employeeID, companyID, userID); err != nil {
		return nil, err
	}

	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	records, err := s.payrollRepo.ListPayslips(ctx, employeeID, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.PayslipResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, mapToPayslipResponse(comp.Name, rec.Run, rec.Item))
	}
	return result, nil
}

// ========== HELPERS ==========

func mapToRunResponse(run payroll.PayrollRun) payroll.PayrollRunResponse {
	var processedAt, paidAt *string
	if run.ProcessedAt != nil {
		str := run.ProcessedAt.Format(time.RFC3339)
		processedAt = &str
	}
	if run.PaidAt != nil {
		str := run.PaidAt.Format(time.RFC3339)
		paidAt = &str
	}

	return payroll.PayrollRunResponse{
		ID:              run.ID,
		CompanyID:       run.CompanyID,
		PeriodMonth:     run.PeriodMonth,
		PeriodYear:      run.PeriodYear,
		PeriodStart:     run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:       run.PeriodEnd.Format("2006-01-02"),
		Status:          string(run.Status),
		TotalEmployees:  run.TotalEmployees,
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNet:        run.TotalNet,
		ProcessedBy:     run.ProcessedBy,
		ProcessedAt:     processedAt,
		PaidAt:          paidAt,
		Notes:           run.Notes,
		CreatedAt:       run.CreatedAt.Format(time.RFC3339),
	}
}

func mapToItemResponse(item payroll.PayrollItem) payroll.PayrollItemResponse {
	employeeName := ""
	employeeCode := ""
	if item.EmployeeName != nil {
		employeeName = *item.EmployeeName
	}
	if item.EmployeeCode != nil {
		employeeCode = *item.EmployeeCode
	}

	return payroll.PayrollItemResponse{
		ID:           item.ID,
		PayrollRunID: item.PayrollRunID,
		EmployeeID:   item.EmployeeID,
		EmployeeName: employeeName,
		EmployeeCode: employeeCode,

		TotalWorkingDays: item.TotalWorkingDays,
		DaysPresent:      item.DaysPresent,
		DaysAbsent:       item.DaysAbsent,
		PaidLeaveDays:    item.PaidLeaveDays,
		LopDays:          item.LopDays,

		BasicSalary:      item.BasicSalary,
		HRA:              item.HRA,
		DA:               item.DA,
		TA:               item.TA,
		SpecialAllowance: item.SpecialAllowance,

		PF:              item.PF,
		ESI:             item.ESI,
		ProfessionalTax: item.ProfessionalTax,
		TDS:             item.TDS,
		LopDeduction:    item.LopDeduction,

		OvertimePay:     item.OvertimePay,
		Bonus:           item.Bonus,
		OtherEarnings:   item.OtherEarnings,
		OtherDeductions: item.OtherDeductions,

		GrossEarnings:   item.GrossEarnings,
		TotalDeductions: item.TotalDeductions,
		NetSalary:       item.NetSalary,

		Status: string(item.Status),
	}
}

func mapToPayslipResponse(companyName string, run payroll.PayrollRun, item payroll.PayrollItem) payroll.PayslipResponse {
	var paidAt *string
	if run.PaidAt != nil {
		str := run.PaidAt.Format(time.RFC3339)
		paidAt = &str
	}

	itemResp := mapToItemResponse(item)
	return payroll.PayslipResponse{
		CompanyName:  companyName,
		EmployeeName: itemResp.EmployeeName,
		EmployeeCode: itemResp.EmployeeCode,
		PeriodMonth:  run.PeriodMonth,
		PeriodYear:   run.PeriodYear,
		RunStatus:    string(run.Status),
		PaidAt:       paidAt,
		Item:         itemResp,
	}
}
