package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
)

type ItemService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

var _ domain.ItemService = (*ItemService)(nil)

func NewItemService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ItemService) Create(ctx context.Context, userID int64, item *models.Item) (*models.Item, error) {
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, userID); err != nil {
			return notFound(err, "User with id %d not found", userID)
		}
		if item.RequestID != nil {
			if _, err := repo.GetItemRequest(ctx, *item.RequestID); err != nil {
				return notFound(err, "Item request with id %d not found", *item.RequestID)
			}
		}

		item.ID = 0
		item.OwnerID = userID
		return repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", userID).Msg("item created")
	return item, nil
}

// Update applies a partial patch. A non-owner gets NotFound so that item existence is not disclosed.
func (s *ItemService) Update(ctx context.Context, userID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	var item *models.Item
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		current, err := repo.GetItemByID(ctx, itemID)
		if err != nil {
			return notFound(err, "Item with id %d not found", itemID)
		}
		if current.OwnerID != userID {
			return domain.NotFoundf("Item with id %d not found for user %d", itemID, userID)
		}

		patch.Apply(current)
		if err := repo.UpdateItem(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Search returns available items whose name or description contains text. Blank text matches nothing.
func (s *ItemService) Search(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, page)
}

// AddComment lets a user comment an item they have finished a booking of.
func (s *ItemService) AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error) {
	var comment *models.Comment
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		author, err := repo.GetUserByID(ctx, userID)
		if err != nil {
			return notFound(err, "User with id %d not found", userID)
		}
		if _, err := repo.GetItemByID(ctx, itemID); err != nil {
			return notFound(err, "Item with id %d not found", itemID)
		}

		now := s.now()
		finished, err := repo.HasFinishedBooking(ctx, userID, itemID, now)
		if err != nil {
			return err
		}
		if !finished {
			return domain.InvalidRequestf("User %d has no finished booking of item %d", userID, itemID)
		}

		comment = &models.Comment{
			Text:       text,
			ItemID:     itemID,
			AuthorID:   userID,
			AuthorName: author.Name,
			CreatedAt:  now,
		}
		return repo.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{CommentID: comment.ID, ItemID: itemID, AuthorID: userID}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

// ListForOwner returns the user's items by id with booking context and comments.
func (s *ItemService) ListForOwner(ctx context.Context, userID int64, page models.Page) ([]*models.ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "User with id %d not found", userID)
	}
	items, err := s.repo.GetItemsByOwner(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, userID, items)
}

// GetOne returns an item with comments. Last and next bookings are shown only to the owner.
func (s *ItemService) GetOne(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, "Item with id %d not found", itemID)
	}
	details, err := s.details(ctx, userID, []*models.Item{item})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *ItemService) details(ctx context.Context, userID int64, items []*models.Item) ([]*models.ItemDetails, error) {
	result := make([]*models.ItemDetails, 0, len(items))
	if len(items) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(items))
	owned := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		if item.OwnerID == userID {
			owned = append(owned, item.ID)
		}
	}

	comments, err := s.repo.GetCommentsByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[int64][]*models.Comment, len(items))
	for _, c := range comments {
		commentsByItem[c.ItemID] = append(commentsByItem[c.ItemID], c)
	}

	bookingsByItem := make(map[int64][]*models.Booking, len(owned))
	if len(owned) > 0 {
		bookings, err := s.repo.GetItemBookings(ctx, owned)
		if err != nil {
			return nil, err
		}
		for _, b := range bookings {
			bookingsByItem[b.ItemID] = append(bookingsByItem[b.ItemID], b)
		}
	}

	now := s.now()
	for _, item := range items {
		d := &models.ItemDetails{Item: item, Comments: commentsByItem[item.ID]}
		if d.Comments == nil {
			d.Comments = []*models.Comment{}
		}
		if item.OwnerID == userID {
			d.LastBooking, d.NextBooking = lastAndNext(bookingsByItem[item.ID], now)
		}
		result = append(result, d)
	}
	return result, nil
}

// lastAndNext picks the latest-starting finished booking and the earliest upcoming one.
// Rejected bookings never qualify.
func lastAndNext(bookings []*models.Booking, now time.Time) (last, next *models.Booking) {
	for _, b := range bookings {
		if b.Status == models.StatusRejected {
			continue
		}
		if b.FinishedBefore(now) && (last == nil || b.Start.After(last.Start)) {
			last = b
		}
		if b.StartsAfter(now) && (next == nil || b.Start.Before(next.Start)) {
			next = b
		}
	}
	return last, next
}
