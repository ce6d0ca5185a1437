package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
)

type RequestService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

var _ domain.RequestService = (*RequestService)(nil)

func NewRequestService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *RequestService {
	return &RequestService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	req := &models.ItemRequest{
		Description: description,
		RequestorID: userID,
		Items:       []*models.Item{},
	}
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, userID); err != nil {
			return notFound(err, "User with id %d not found", userID)
		}
		req.CreatedAt = s.now()
		return repo.CreateItemRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.ItemRequestEventPayload{RequestID: req.ID, RequestorID: userID}
		if err := s.eventBus.PublishJSON(events.EventItemRequestCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("request_id", req.ID).Msg("publish event error")
		}
	}
	return req, nil
}

// ListOwn returns the user's requests, newest first, with the items offered for each.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "User with id %d not found", userID)
	}
	reqs, err := s.repo.GetItemRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reqs, s.attachItems(ctx, reqs)
}

func (s *RequestService) ListOthers(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "User with id %d not found", userID)
	}
	reqs, err := s.repo.GetItemRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return reqs, s.attachItems(ctx, reqs)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, notFound(err, "User with id %d not found", userID)
	}
	req, err := s.repo.GetItemRequest(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "Item request with id %d not found", requestID)
	}
	return req, s.attachItems(ctx, []*models.ItemRequest{req})
}

func (s *RequestService) attachItems(ctx context.Context, reqs []*models.ItemRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(reqs))
	byID := make(map[int64]*models.ItemRequest, len(reqs))
	for _, r := range reqs {
		r.Items = []*models.Item{}
		ids = append(ids, r.ID)
		byID[r.ID] = r
	}

	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		if r, ok := byID[*item.RequestID]; ok {
			r.Items = append(r.Items, item)
		}
	}
	return nil
}
