package company

import (
	"context"
	"time"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	// GetWorkingDays returns the company's working weekday set, falling back
	// to DefaultWorkingDays when none is configured.
	GetWorkingDays(ctx context.Context, companyID string) ([]int, error)
	GetHolidays(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]time.Time, error)
	// ListAdminUserIDs returns user IDs with admin rights in the company,
	// used to address reminder notifications.
	ListAdminUserIDs(ctx context.Context, companyID string) ([]string, error)
}
