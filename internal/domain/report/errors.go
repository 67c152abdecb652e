package report

import "errors"

var (
	ErrInvalidDateRange = errors.New("end_date must not be before start_date")
	ErrRangeTooLarge    = errors.New("report range must not exceed 366 days")
)
