package company

import "time"

type Company struct {
	ID        string
	Name      string
	Username  string
	Address   *string
	// WorkingDays holds weekday integers (0=Sunday..6=Saturday) defining the
	// standard work week. Defaults to Mon-Fri when unset.
	WorkingDays []int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultWorkingDays is the Mon-Fri work week.
var DefaultWorkingDays = []int{1, 2, 3, 4, 5}

// Holiday dates are unique per (company, date) and only exclude days from the
// working-day count.
type Holiday struct {
	ID        string
	CompanyID string
	Name      string
	Date      time.Time
	CreatedAt time.Time
}
