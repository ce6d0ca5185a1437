package models

import "time"

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

// IsTerminal reports whether a booking in this status can no longer be approved or rejected.
func (s BookingStatus) IsTerminal() bool {
	return s != StatusWaiting
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCanceled:
		return true
	default:
		return false
	}
}

type Booking struct {
	ID       int64         `db:"id"`
	Start    time.Time     `db:"start_date"`
	End      time.Time     `db:"end_date"`
	ItemID   int64         `db:"item_id"`
	BookerID int64         `db:"booker_id"`
	Status   BookingStatus `db:"status"`

	// Filled by joined reads only.
	Item   *Item `db:"-"`
	Booker *User `db:"-"`
}

// FinishedBefore reports whether the booking ended strictly before t.
func (b *Booking) FinishedBefore(t time.Time) bool {
	return b.End.Before(t)
}

// StartsAfter reports whether the booking starts strictly after t.
func (b *Booking) StartsAfter(t time.Time) bool {
	return b.Start.After(t)
}
