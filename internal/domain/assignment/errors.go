package assignment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSiteNotAssigned    = errors.New("you are not assigned to this site")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrHoursConflict      = errors.New("assignment hours fall outside the allowed site hours")
)

// HoursConflictError lists the sites whose allowed hours do not cover the requested
// assignment window. Callers retry with confirm set to accept them.
type HoursConflictError struct {
	Warnings []HoursWarning
}

func (e *HoursConflictError) Error() string {
	names := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		names = append(names, w.SiteName)
	}
	return fmt.Sprintf("%s: %s", ErrHoursConflict, strings.Join(names, ", "))
}

func (e *HoursConflictError) Unwrap() error {
	return ErrHoursConflict
}

// Details maps site IDs to human readable warnings.
func (e *HoursConflictError) Details() map[string]string {
	details := make(map[string]string, len(e.Warnings))
	for _, w := range e.Warnings {
		details[w.SiteID] = w.Message
	}
	return details
}
