package company

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrHolidayExists   = errors.New("holiday already exists for this date")
)
