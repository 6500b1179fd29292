package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/hrstack/payroll-backend-go/internal/domain/attendance"
	"github.com/hrstack/payroll-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) GetLogs(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]attendance.Log, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, date, status, clock_in, clock_out, created_at, updated_at
		FROM attendance_logs
		WHERE employee_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.Log
	for rows.Next() {
		var log attendance.Log
		err := rows.Scan(
			&log.ID, &log.EmployeeID, &log.CompanyID, &log.Date, &log.Status,
			&log.ClockIn, &log.ClockOut, &log.CreatedAt, &log.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, nil
}

func (r *attendanceRepository) BulkUpsertOnLeave(ctx context.Context, employeeID, companyID string, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_logs (employee_id, company_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = NOW()
	`

	for _, date := range dates {
		if _, err := q.Exec(ctx, query, employeeID, companyID, date, attendance.StatusOnLeave); err != nil {
			return fmt.Errorf("failed to upsert attendance log for %s: %w", date.Format("2006-01-02"), err)
		}
	}

	return nil
}
