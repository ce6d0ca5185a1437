package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
)

type scenario struct {
	repo     *database.DB
	bus      *events.EventBus
	users    *UserService
	items    *ItemService
	bookings *BookingService
	requests *RequestService
	clock    time.Time
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	db, err := database.NewDB(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	bus := events.NewEventBus()
	sc := &scenario{
		repo:     db,
		bus:      bus,
		users:    NewUserService(db, testLogger()),
		items:    NewItemService(db, bus, testLogger()),
		bookings: NewBookingService(db, bus, 0, testLogger()),
		requests: NewRequestService(db, bus, testLogger()),
		clock:    time.Now().Truncate(time.Second),
	}
	now := func() time.Time { return sc.clock }
	sc.items.now = now
	sc.bookings.now = now
	sc.requests.now = now
	return sc
}

func (sc *scenario) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := sc.users.Create(context.Background(), &models.User{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func TestScenario_BookApproveComment(t *testing.T) {
	ctx := context.Background()
	sc := newScenario(t)

	var published []string
	sc.bus.Subscribe(events.AllEvents, func(e *events.Event) error {
		published = append(published, e.Type)
		return nil
	})

	a := sc.user(t, "a")
	b := sc.user(t, "b")
	c := sc.user(t, "c")

	item, err := sc.items.Create(ctx, a.ID, &models.Item{Name: "Drill", Description: "Cordless drill", Available: true})
	require.NoError(t, err)

	booking, err := sc.bookings.Create(ctx, b.ID, domain.BookingInput{
		ItemID: item.ID,
		Start:  sc.clock.Add(time.Hour),
		End:    sc.clock.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, booking.Status)

	approved, err := sc.bookings.ChangeStatus(ctx, a.ID, booking.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	_, err = sc.bookings.ChangeStatus(ctx, b.ID, booking.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = sc.bookings.ChangeStatus(ctx, a.ID, booking.ID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = sc.items.AddComment(ctx, b.ID, item.ID, "Too early")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	sc.clock = sc.clock.Add(3 * time.Hour)

	comment, err := sc.items.AddComment(ctx, b.ID, item.ID, "Worked great")
	require.NoError(t, err)
	assert.Equal(t, "b", comment.AuthorName)

	_, err = sc.items.AddComment(ctx, c.ID, item.ID, "Never used it")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	details, err := sc.items.GetOne(ctx, a.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, details.LastBooking)
	assert.Equal(t, booking.ID, details.LastBooking.ID)
	assert.Nil(t, details.NextBooking)
	require.Len(t, details.Comments, 1)

	stranger, err := sc.items.GetOne(ctx, c.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, stranger.LastBooking)
	assert.Len(t, stranger.Comments, 1)

	got, err := sc.bookings.GetInfo(ctx, b.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	_, err = sc.bookings.GetInfo(ctx, c.ID, booking.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, []string{
		events.EventBookingCreated,
		events.EventBookingApproved,
		events.EventCommentAdded,
	}, published)
}

func TestScenario_CreateRules(t *testing.T) {
	ctx := context.Background()
	sc := newScenario(t)
	owner := sc.user(t, "owner")
	booker := sc.user(t, "booker")

	available, err := sc.items.Create(ctx, owner.ID, &models.Item{Name: "Kayak", Description: "Single", Available: true})
	require.NoError(t, err)
	hidden, err := sc.items.Create(ctx, owner.ID, &models.Item{Name: "Canoe", Description: "Double", Available: false})
	require.NoError(t, err)

	start := sc.clock.Add(time.Hour)

	_, err = sc.bookings.Create(ctx, owner.ID, domain.BookingInput{ItemID: available.ID, Start: start, End: start.Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = sc.bookings.Create(ctx, booker.ID, domain.BookingInput{ItemID: hidden.ID, Start: start, End: start.Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = sc.bookings.Create(ctx, booker.ID, domain.BookingInput{ItemID: available.ID, Start: start, End: start})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = sc.bookings.Create(ctx, booker.ID, domain.BookingInput{
		ItemID: available.ID,
		Start:  start.Add(100 * time.Millisecond),
		End:    start.Add(700 * time.Millisecond),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = sc.bookings.Create(ctx, booker.ID, domain.BookingInput{ItemID: 999, Start: start, End: start.Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = sc.bookings.Create(ctx, booker.ID, domain.BookingInput{ItemID: available.ID, Start: start, End: start.Add(time.Hour)})
	assert.NoError(t, err)
}

func TestScenario_StatesPartitionAroundNow(t *testing.T) {
	ctx := context.Background()
	sc := newScenario(t)
	owner := sc.user(t, "owner")
	booker := sc.user(t, "booker")
	item, err := sc.items.Create(ctx, owner.ID, &models.Item{Name: "Tent", Description: "Two person", Available: true})
	require.NoError(t, err)

	book := func(startH, endH int) *models.Booking {
		b, err := sc.bookings.Create(ctx, booker.ID, domain.BookingInput{
			ItemID: item.ID,
			Start:  sc.clock.Add(time.Duration(startH) * time.Hour),
			End:    sc.clock.Add(time.Duration(endH) * time.Hour),
		})
		require.NoError(t, err)
		return b
	}
	past1 := book(-72, -48)
	past2 := book(-30, -24)
	current1 := book(-2, 2)
	current2 := book(-1, 1)
	future1 := book(24, 30)
	future2 := book(48, 72)

	_, err = sc.bookings.ChangeStatus(ctx, owner.ID, future2.ID, false)
	require.NoError(t, err)

	page := models.Page{Limit: 20}
	list := func(state string) []int64 {
		got, err := sc.bookings.ListByBooker(ctx, booker.ID, state, page)
		require.NoError(t, err)
		out := make([]int64, 0, len(got))
		for _, b := range got {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []int64{current1.ID, current2.ID}, list("CURRENT"))
	assert.Equal(t, []int64{past2.ID, past1.ID}, list("PAST"))
	assert.Equal(t, []int64{future2.ID, future1.ID}, list("FUTURE"))
	assert.Equal(t, []int64{future2.ID}, list("REJECTED"))
	assert.Len(t, list("WAITING"), 5)
	assert.Len(t, list("ALL"), 6)

	owned, err := sc.bookings.ListByOwner(ctx, owner.ID, "PAST", page)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	asBooker, err := sc.bookings.ListByBooker(ctx, owner.ID, "ALL", page)
	require.NoError(t, err)
	assert.Empty(t, asBooker)

	_, err = sc.bookings.ListByBooker(ctx, booker.ID, "current", page)
	assert.ErrorIs(t, err, domain.ErrUnsupportedState)
}

func TestScenario_ItemRequests(t *testing.T) {
	ctx := context.Background()
	sc := newScenario(t)
	asker := sc.user(t, "asker")
	owner := sc.user(t, "owner")

	req, err := sc.requests.Create(ctx, asker.ID, "Need a ladder")
	require.NoError(t, err)

	reqID := req.ID
	_, err = sc.items.Create(ctx, owner.ID, &models.Item{Name: "Ladder", Description: "3m", Available: true, RequestID: &reqID})
	require.NoError(t, err)

	missing := int64(999)
	_, err = sc.items.Create(ctx, owner.ID, &models.Item{Name: "Rope", Description: "10m", Available: true, RequestID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	own, err := sc.requests.ListOwn(ctx, asker.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, "Ladder", own[0].Items[0].Name)

	others, err := sc.requests.ListOthers(ctx, owner.ID, models.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, others, 1)

	others, err = sc.requests.ListOthers(ctx, asker.ID, models.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, others)
}
