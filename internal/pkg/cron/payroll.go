package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrstack/payroll-backend-go/internal/domain/company"
	"github.com/hrstack/payroll-backend-go/internal/domain/notification"
	"github.com/hrstack/payroll-backend-go/internal/domain/payroll"
)

// PayrollJobs holds the scheduled payroll housekeeping jobs.
type PayrollJobs struct {
	payrollRepo     payroll.PayrollRepository
	companyRepo     company.CompanyRepository
	notificationSvc notification.Service
}

func NewPayrollJobs(
	payrollRepo payroll.PayrollRepository,
	companyRepo company.CompanyRepository,
	notificationSvc notification.Service,
) *PayrollJobs {
	return &PayrollJobs{
		payrollRepo:     payrollRepo,
		companyRepo:     companyRepo,
		notificationSvc: notificationSvc,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("remind_overdue_draft_runs", 1*time.Hour, j.RemindOverdueDraftRuns)
}

// RemindOverdueDraftRuns nudges company admins about payroll runs still in
// draft three days after their period ended.
func (j *PayrollJobs) RemindOverdueDraftRuns(ctx context.Context) error {
	// Only run in the morning (08:00-08:59 UTC)
	if time.Now().UTC().Hour() != 8 {
		return nil
	}

	slog.Info("Cron: Starting overdue draft run reminder job")

	cutoff := time.Now().UTC().AddDate(0, 0, -3)
	runs, err := j.payrollRepo.ListOverdueDraftRuns(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list overdue draft runs: %w", err)
	}

	reminded := 0
	for _, run := range runs {
		adminIDs, err := j.companyRepo.ListAdminUserIDs(ctx, run.CompanyID)
		if err != nil {
			slog.Error("Cron: Failed to resolve company admins", "company_id", run.CompanyID, "error", err)
			continue
		}

		period := fmt.Sprintf("%02d/%d", run.PeriodMonth, run.PeriodYear)
		for _, adminID := range adminIDs {
			err := j.notificationSvc.QueueNotification(ctx, notification.CreateNotificationRequest{
				CompanyID:   run.CompanyID,
				RecipientID: adminID,
				Type:        notification.TypePayrollReminder,
				Title:       "Payroll run awaiting processing",
				Message:     fmt.Sprintf("The payroll run for %s is still in draft. Review and process it so employees can be paid on time.", period),
				Data: map[string]interface{}{
					"payroll_run_id": run.ID,
					"period_month":   run.PeriodMonth,
					"period_year":    run.PeriodYear,
				},
			})
			if err != nil {
				slog.Error("Cron: Failed to queue reminder", "payroll_run_id", run.ID, "error", err)
				continue
			}
			reminded++
		}
	}

	slog.Info("Cron: Overdue draft run reminder job completed", "overdue_runs", len(runs), "reminders_sent", reminded)
	return nil
}
