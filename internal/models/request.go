package models

import "time"

// ItemRequest is a user's ask for an item nobody has listed yet.
type ItemRequest struct {
	ID          int64     `db:"id"`
	Description string    `db:"description"`
	RequestorID int64     `db:"requestor_id"`
	CreatedAt   time.Time `db:"created_at"`

	// Items listed in answer to the request.
	Items []*Item `db:"-"`
}
