package domain

import (
	"context"
	"io"
	"time"

	"shareit/internal/models"
)

// Repository is the persistence collaborator. Reads of missing rows fail with ErrNotFound,
// unique violations with ErrConflict.
type Repository interface {
	// InTx runs fn against a repository bound to a single transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(repo Repository) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, from, to models.BookingStatus) error
	FindBookings(ctx context.Context, query models.BookingQuery) ([]*models.Booking, error)
	GetItemBookings(ctx context.Context, itemIDs []int64) ([]*models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, before time.Time) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)

	CreateItemRequest(ctx context.Context, request *models.ItemRequest) error
	GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetItemRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
}

// RateLimitRepository counts requests per caller within a window.
type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	Create(ctx context.Context, bookerID int64, in BookingInput) (*models.Booking, error)
	ChangeStatus(ctx context.Context, userID, bookingID int64, approved bool) (*models.Booking, error)
	GetInfo(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListByBooker(ctx context.Context, userID int64, state string, page models.Page) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, userID int64, state string, page models.Page) ([]*models.Booking, error)
	ExportForOwner(ctx context.Context, userID int64, state string, w io.Writer) error
}

type ItemService interface {
	Create(ctx context.Context, userID int64, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, userID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	Search(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error)
	ListForOwner(ctx context.Context, userID int64, page models.Page) ([]*models.ItemDetails, error)
	GetOne(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error)
}

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type RequestService interface {
	Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	ListOthers(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
	Get(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error)
}

// BookingInput is what a booker submits.
type BookingInput struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}
