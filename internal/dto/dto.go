// Package dto holds the JSON shapes exchanged between gateway, server and clients,
// and the mapping between them and models.
package dto

import "shareit/internal/models"

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserDto struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserCreateRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

type UserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,notblank"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type ItemDto struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

type ItemCreateRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type ItemUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Description *string `json:"description" validate:"omitempty,notblank"`
	Available   *bool   `json:"available"`
}

// BookingShortDto is the booking summary shown on an item page.
type BookingShortDto struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    Timestamp `json:"start"`
	End      Timestamp `json:"end"`
}

type ItemDetailsDto struct {
	ItemDto
	LastBooking *BookingShortDto `json:"lastBooking"`
	NextBooking *BookingShortDto `json:"nextBooking"`
	Comments    []CommentDto     `json:"comments"`
}

type CommentDto struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    Timestamp `json:"created"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"notblank,max=1000"`
}

type BookingRequest struct {
	ItemID int64     `json:"itemId" validate:"required,gt=0"`
	Start  Timestamp `json:"start" validate:"required,notpast"`
	End    Timestamp `json:"end" validate:"required,future"`
}

type BookingDto struct {
	ID     int64                `json:"id"`
	Start  Timestamp            `json:"start"`
	End    Timestamp            `json:"end"`
	Status models.BookingStatus `json:"status"`
	Item   *ItemDto             `json:"item"`
	Booker *UserDto             `json:"booker"`
}

type ItemRequestCreateRequest struct {
	Description string `json:"description" validate:"notblank,max=200"`
}

type ItemRequestDto struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequestorID int64     `json:"requestorId"`
	Created     Timestamp `json:"created"`
	Items       []ItemDto `json:"items"`
}

// UserIDHeader carries the caller identity. It is trusted as-is.
const UserIDHeader = models.UserIDHeader
