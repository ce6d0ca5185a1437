package models

import "time"

// BookingRole selects whose bookings a query returns.
type BookingRole string

const (
	RoleBooker BookingRole = "BOOKER"
	RoleOwner  BookingRole = "OWNER"
)

// Sortable booking columns.
const (
	SortByStart  = "start_date"
	SortByStatus = "status"
)

type SortField struct {
	Column string
	Desc   bool
}

type Page struct {
	Offset int
	Limit  int
}

// BookingQuery is a storage-neutral description of a filtered, ordered booking read.
// Zero-valued bounds and an empty Status are not applied.
type BookingQuery struct {
	Role   BookingRole
	UserID int64
	Status BookingStatus

	StartBefore time.Time
	StartAfter  time.Time
	EndBefore   time.Time
	EndAfter    time.Time

	Order []SortField
	Page  Page
}
