package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
)

func newTestBookingService(repo *mockRepo, bus *mockPublisher, now time.Time) *BookingService {
	var publisher domain.EventPublisher
	if bus != nil {
		publisher = bus
	}
	svc := NewBookingService(repo, publisher, 0, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	owner := &models.User{ID: 1, Name: "Owner", Email: "owner@example.com"}
	booker := &models.User{ID: 2, Name: "Booker", Email: "booker@example.com"}
	input := domain.BookingInput{ItemID: 10, Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)}

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockPublisher)
		svc := newTestBookingService(repo, bus, now)
		item := &models.Item{ID: 10, Name: "Drill", Available: true, OwnerID: owner.ID}

		repo.On("GetItemByID", ctx, int64(10)).Return(item, nil).Once()
		repo.On("GetUserByID", ctx, booker.ID).Return(booker, nil).Once()
		repo.On("CreateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.ItemID == 10 && b.BookerID == booker.ID && b.Status == models.StatusWaiting
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Booking).ID = 100
		}).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingCreated, mock.MatchedBy(func(p events.BookingEventPayload) bool {
			return p.BookingID == 100 && p.OwnerID == owner.ID && p.Status == "WAITING"
		})).Return(nil).Once()

		b, err := svc.Create(ctx, booker.ID, input)
		require.NoError(t, err)
		assert.Equal(t, int64(100), b.ID)
		assert.Equal(t, models.StatusWaiting, b.Status)
		assert.Equal(t, item, b.Item)
		assert.Equal(t, booker, b.Booker)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetItemByID", ctx, int64(10)).Return(nil, domain.NotFoundf("item not found")).Once()

		_, err := svc.Create(ctx, booker.ID, input)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, "Item with id 10 not found", err.Error())
	})

	t.Run("BookerNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, Available: true, OwnerID: owner.ID}, nil).Once()
		repo.On("GetUserByID", ctx, int64(99)).Return(nil, domain.NotFoundf("user not found")).Once()

		_, err := svc.Create(ctx, 99, input)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("OwnItem", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, Available: true, OwnerID: owner.ID}, nil).Once()
		repo.On("GetUserByID", ctx, owner.ID).Return(owner, nil).Once()

		_, err := svc.Create(ctx, owner.ID, input)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("Unavailable", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, Available: false, OwnerID: owner.ID}, nil).Once()
		repo.On("GetUserByID", ctx, booker.ID).Return(booker, nil).Once()

		_, err := svc.Create(ctx, booker.ID, input)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("BadDates", func(t *testing.T) {
		for name, in := range map[string]domain.BookingInput{
			"EndBeforeStart": {ItemID: 10, Start: now.Add(2 * time.Hour), End: now.Add(time.Hour)},
			"EndEqualsStart": {ItemID: 10, Start: now.Add(time.Hour), End: now.Add(time.Hour)},
		} {
			t.Run(name, func(t *testing.T) {
				repo := new(mockRepo)
				svc := newTestBookingService(repo, nil, now)
				repo.On("GetItemByID", ctx, int64(10)).Return(&models.Item{ID: 10, Available: true, OwnerID: owner.ID}, nil).Once()
				repo.On("GetUserByID", ctx, booker.ID).Return(booker, nil).Once()

				_, err := svc.Create(ctx, booker.ID, in)
				assert.ErrorIs(t, err, domain.ErrInvalidRequest)
				repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestBookingService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	waiting := func() *models.Booking {
		return &models.Booking{
			ID: 5, ItemID: 10, BookerID: 2, Status: models.StatusWaiting,
			Item:   &models.Item{ID: 10, OwnerID: 1},
			Booker: &models.User{ID: 2},
		}
	}

	t.Run("Approve", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockPublisher)
		svc := newTestBookingService(repo, bus, now)

		repo.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		repo.On("UpdateBookingStatus", ctx, int64(5), models.StatusWaiting, models.StatusApproved).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingApproved, mock.Anything).Return(nil).Once()

		b, err := svc.ChangeStatus(ctx, 1, 5, true)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, b.Status)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockPublisher)
		svc := newTestBookingService(repo, bus, now)

		repo.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		repo.On("UpdateBookingStatus", ctx, int64(5), models.StatusWaiting, models.StatusRejected).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingRejected, mock.Anything).Return(nil).Once()

		b, err := svc.ChangeStatus(ctx, 1, 5, false)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, b.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetBooking", ctx, int64(5)).Return(nil, domain.NotFoundf("booking not found")).Once()

		_, err := svc.ChangeStatus(ctx, 1, 5, true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()

		_, err := svc.ChangeStatus(ctx, 2, 5, true)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		for _, status := range []models.BookingStatus{models.StatusApproved, models.StatusRejected, models.StatusCanceled} {
			repo := new(mockRepo)
			svc := newTestBookingService(repo, nil, now)
			b := waiting()
			b.Status = status
			repo.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()

			_, err := svc.ChangeStatus(ctx, 1, 5, true)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "status %s", status)
		}
	})

	t.Run("DecidedByNonOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		b := waiting()
		b.Status = models.StatusApproved
		repo.On("GetBooking", ctx, int64(5)).Return(b, nil).Once()

		_, err := svc.ChangeStatus(ctx, 2, 5, true)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("LostRace", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		repo.On("UpdateBookingStatus", ctx, int64(5), models.StatusWaiting, models.StatusApproved).
			Return(domain.ErrConcurrentModification).Once()

		_, err := svc.ChangeStatus(ctx, 1, 5, true)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("PublishFailureIsNotFatal", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockPublisher)
		svc := newTestBookingService(repo, bus, now)

		repo.On("GetBooking", ctx, int64(5)).Return(waiting(), nil).Once()
		repo.On("UpdateBookingStatus", ctx, int64(5), models.StatusWaiting, models.StatusApproved).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingApproved, mock.Anything).Return(errors.New("bus down")).Once()

		_, err := svc.ChangeStatus(ctx, 1, 5, true)
		assert.NoError(t, err)
	})
}

func TestBookingService_GetInfo(t *testing.T) {
	ctx := context.Background()
	booking := &models.Booking{ID: 5, BookerID: 2, Item: &models.Item{ID: 10, OwnerID: 1}}

	repo := new(mockRepo)
	svc := newTestBookingService(repo, nil, time.Now())
	repo.On("GetBooking", ctx, int64(5)).Return(booking, nil)
	repo.On("GetBooking", ctx, int64(6)).Return(nil, domain.NotFoundf("booking not found"))

	got, err := svc.GetInfo(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, booking, got)

	got, err = svc.GetInfo(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, booking, got)

	_, err = svc.GetInfo(ctx, 3, 5)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.GetInfo(ctx, 2, 6)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	page := models.Page{Offset: 0, Limit: 20}

	t.Run("ByBookerResolvesState", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		want := []*models.Booking{{ID: 3}, {ID: 1}}

		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()
		repo.On("FindBookings", ctx, models.BookingQuery{
			Role: models.RoleBooker, UserID: 2, Page: page,
			StartAfter: now,
			Order:      []models.SortField{{Column: models.SortByStart, Desc: true}},
		}).Return(want, nil).Once()

		got, err := svc.ListByBooker(ctx, 2, "FUTURE", page)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		repo.AssertExpectations(t)
	})

	t.Run("ByOwnerUsesOwnerRole", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)

		repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
		repo.On("FindBookings", ctx, mock.MatchedBy(func(q models.BookingQuery) bool {
			return q.Role == models.RoleOwner && q.UserID == 1 && q.Status == models.StatusWaiting
		})).Return([]*models.Booking{}, nil).Once()

		got, err := svc.ListByOwner(ctx, 1, "WAITING", page)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetUserByID", ctx, int64(9)).Return(nil, domain.NotFoundf("user not found")).Once()

		_, err := svc.ListByBooker(ctx, 9, "ALL", page)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UnknownState", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestBookingService(repo, nil, now)
		repo.On("GetUserByID", ctx, int64(2)).Return(&models.User{ID: 2}, nil).Once()

		_, err := svc.ListByBooker(ctx, 2, "UNSUPPORTED_STATUS", page)
		assert.ErrorIs(t, err, domain.ErrUnsupportedState)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Error())
		repo.AssertNotCalled(t, "FindBookings", mock.Anything, mock.Anything)
	})
}

func TestBookingService_ExportForOwner(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := new(mockRepo)
	svc := NewBookingService(repo, nil, 50, testLogger())
	svc.now = func() time.Time { return now }

	repo.On("GetUserByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil).Once()
	repo.On("FindBookings", ctx, mock.MatchedBy(func(q models.BookingQuery) bool {
		return q.Role == models.RoleOwner && q.Page == models.Page{Limit: 50}
	})).Return([]*models.Booking{
		{ID: 7, Start: now, End: now.Add(time.Hour), Status: models.StatusApproved,
			Item: &models.Item{Name: "Drill"}, Booker: &models.User{Name: "Bob"}},
	}, nil).Once()

	var buf bytes.Buffer
	require.NoError(t, svc.ExportForOwner(ctx, 1, "ALL", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "7", rows[2][0])
	assert.Equal(t, "Drill", rows[2][1])
}
