package onsite

import "time"

type MessageStatus string

const (
	MessagePending  MessageStatus = "pending"
	MessageResolved MessageStatus = "resolved"
)

type SitePhoto struct {
	ID         string
	SiteID     string
	EmployeeID string
	PhotoURL   string
	Caption    string
	UploadDate time.Time
	Latitude   *float64
	Longitude  *float64

	// Join
	EmployeeName *string
}

// SiteMessage is a note from an employee on site to the site's manager.
type SiteMessage struct {
	ID         string
	SiteID     string
	EmployeeID string
	ManagerID  string
	Message    string
	Status     MessageStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time

	// Join
	EmployeeName *string
	SiteName     *string
}
