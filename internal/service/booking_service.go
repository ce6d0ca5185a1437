package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/export"
	"shareit/internal/models"
)

const defaultExportLimit = 10000

type BookingService struct {
	repo        domain.Repository
	resolver    *StateResolver
	eventBus    domain.EventPublisher
	exportLimit int
	logger      *zerolog.Logger
	now         func() time.Time
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, exportLimit int, logger *zerolog.Logger) *BookingService {
	if exportLimit <= 0 {
		exportLimit = defaultExportLimit
	}
	return &BookingService{
		repo:        repo,
		resolver:    NewStateResolver(),
		eventBus:    eventBus,
		exportLimit: exportLimit,
		logger:      logger,
		now:         time.Now,
	}
}

// Resolver exposes the state registry so callers can register additional states.
func (s *BookingService) Resolver() *StateResolver {
	return s.resolver
}

func (s *BookingService) Create(ctx context.Context, bookerID int64, in domain.BookingInput) (*models.Booking, error) {
	var booking *models.Booking
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		item, err := repo.GetItemByID(ctx, in.ItemID)
		if err != nil {
			return notFound(err, "Item with id %d not found", in.ItemID)
		}
		booker, err := repo.GetUserByID(ctx, bookerID)
		if err != nil {
			return notFound(err, "User with id %d not found", bookerID)
		}
		if item.OwnerID == bookerID {
			return domain.Forbiddenf("Owner can't book own item %d", item.ID)
		}
		if !item.Available {
			return domain.InvalidRequestf("Item %d is not available for booking", item.ID)
		}
		// bookings are stored to the second
		if !in.End.Truncate(time.Second).After(in.Start.Truncate(time.Second)) {
			return domain.InvalidRequestf("Booking end must be after start")
		}

		booking = &models.Booking{
			Start:    in.Start,
			End:      in.End,
			ItemID:   item.ID,
			BookerID: booker.ID,
			Status:   models.StatusWaiting,
		}
		if err := repo.CreateBooking(ctx, booking); err != nil {
			return err
		}
		booking.Item = item
		booking.Booker = booker
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", booking.ItemID).
		Int64("booker_id", bookerID).
		Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	return booking, nil
}

// ChangeStatus approves or rejects a waiting booking. A decided booking fails with InvalidTransition
// for any caller; otherwise only the item owner may decide.
func (s *BookingService) ChangeStatus(ctx context.Context, userID, bookingID int64, approved bool) (*models.Booking, error) {
	to := models.StatusRejected
	if approved {
		to = models.StatusApproved
	}

	var booking *models.Booking
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return notFound(err, "Booking with id %d not found", bookingID)
		}
		if b.Status != models.StatusWaiting {
			return domain.InvalidTransitionf("Booking %d is already %s", bookingID, b.Status)
		}
		if b.Item == nil || b.Item.OwnerID != userID {
			return domain.Forbiddenf("Only the item owner can change status of booking %d", bookingID)
		}

		if err := repo.UpdateBookingStatus(ctx, bookingID, models.StatusWaiting, to); err != nil {
			if errors.Is(err, domain.ErrConcurrentModification) {
				return domain.InvalidTransitionf("Booking %d is no longer waiting", bookingID)
			}
			return err
		}
		b.Status = to
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("owner_id", userID).
		Str("status", string(to)).
		Msg("booking status changed")

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, booking, userID)
	return booking, nil
}

// GetInfo returns a booking visible to its booker or the item owner.
func (s *BookingService) GetInfo(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "Booking with id %d not found", bookingID)
	}
	if b.BookerID != userID && (b.Item == nil || b.Item.OwnerID != userID) {
		return nil, domain.Forbiddenf("User %d has no access to booking %d", userID, bookingID)
	}
	return b, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, userID int64, state string, page models.Page) ([]*models.Booking, error) {
	return s.list(ctx, userID, state, models.RoleBooker, page)
}

func (s *BookingService) ListByOwner(ctx context.Context, userID int64, state string, page models.Page) ([]*models.Booking, error) {
	return s.list(ctx, userID, state, models.RoleOwner, page)
}

// ExportForOwner writes the owner's bookings in the given state as an XLSX workbook.
func (s *BookingService) ExportForOwner(ctx context.Context, userID int64, state string, w io.Writer) error {
	bookings, err := s.list(ctx, userID, state, models.RoleOwner, models.Page{Limit: s.exportLimit})
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Bookings of user %d: %s", userID, state)
	if err := export.WriteBookings(w, title, bookings); err != nil {
		return fmt.Errorf("export bookings: %w", err)
	}
	return nil
}

func (s *BookingService) list(ctx context.Context, userID int64, state string, role models.BookingRole, page models.Page) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "User with id %d not found", userID)
	}

	query, err := s.resolver.Resolve(state, userID, role, page, s.now())
	if err != nil {
		return nil, err
	}

	return s.repo.FindBookings(ctx, query)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil || booking == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ItemID:      booking.ItemID,
		BookerID:    booking.BookerID,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	}
	if booking.Item != nil {
		payload.ItemName = booking.Item.Name
		payload.OwnerID = booking.Item.OwnerID
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

// notFound rewrites a repository not-found error with a caller-facing message. Other errors pass through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundf(format, args...)
	}
	return err
}
