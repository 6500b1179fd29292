package attendance

import (
	"time"
)

// Status enum
type Status string

const (
	StatusPresent Status = "present"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
	StatusAbsent  Status = "absent"
)

// Log is one attendance row per (employee, calendar date). Rows are created by
// check-in, by manual admin entry, or bulk-upserted as on_leave when a leave
// request is approved. Rows are never deleted, only updated in place.
type Log struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	Status     Status
	ClockIn    *time.Time
	ClockOut   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
