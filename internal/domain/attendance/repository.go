package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the attendance store contract. The payroll engine
// only reads; BulkUpsertOnLeave is the write entry point used by the leave
// approval workflow to mark every day of an approved span as on_leave.
type AttendanceRepository interface {
	GetLogs(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) ([]Log, error)
	BulkUpsertOnLeave(ctx context.Context, employeeID, companyID string, dates []time.Time) error
}
