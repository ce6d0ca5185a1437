package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestToBookingDto_Denormalizes(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
	b := &models.Booking{
		ID: 7, Start: start, End: start.Add(time.Hour), ItemID: 3, BookerID: 2, Status: models.StatusWaiting,
		Item:   &models.Item{ID: 3, Name: "Drill", Description: "Cordless", Available: true, OwnerID: 1},
		Booker: &models.User{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}

	got := ToBookingDto(b)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, models.StatusWaiting, got.Status)
	require.NotNil(t, got.Item)
	assert.Equal(t, "Drill", got.Item.Name)
	require.NotNil(t, got.Booker)
	assert.Equal(t, "bob@example.com", got.Booker.Email)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"start":"2026-06-01T09:00:00"`)
	assert.Contains(t, string(data), `"status":"WAITING"`)
}

func TestToBookingDtos_KeepsOrder(t *testing.T) {
	in := []*models.Booking{{ID: 3}, {ID: 1}, {ID: 2}}
	out := ToBookingDtos(in)
	require.Len(t, out, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{out[0].ID, out[1].ID, out[2].ID})
	assert.Nil(t, out[0].Item)
}

func TestToItemDetailsDto(t *testing.T) {
	now := time.Now()
	d := &models.ItemDetails{
		Item:        &models.Item{ID: 1, Name: "Tent", OwnerID: 4},
		LastBooking: &models.Booking{ID: 10, BookerID: 5, Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour)},
		Comments:    []*models.Comment{{ID: 2, Text: "Dry", AuthorName: "Eve", CreatedAt: now}},
	}

	got := ToItemDetailsDto(d)
	assert.Equal(t, int64(1), got.ID)
	require.NotNil(t, got.LastBooking)
	assert.Equal(t, int64(5), got.LastBooking.BookerID)
	assert.Nil(t, got.NextBooking)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Eve", got.Comments[0].AuthorName)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nextBooking":null`)
	assert.Contains(t, string(data), `"name":"Tent"`)
}

func TestToItemRequestDto_EmptyItemsIsArray(t *testing.T) {
	got := ToItemRequestDto(&models.ItemRequest{ID: 1, Description: "Ladder", RequestorID: 2})
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
}

func TestRequestsToModels(t *testing.T) {
	avail := true
	reqID := int64(9)
	item := ItemCreateRequest{Name: "Saw", Description: "Hand saw", Available: &avail, RequestID: &reqID}.ToModel()
	assert.True(t, item.Available)
	assert.Equal(t, &reqID, item.RequestID)

	name := "New"
	patch := ItemUpdateRequest{Name: &name}.Patch()
	target := &models.Item{Name: "Old", Description: "Keep", Available: true}
	patch.Apply(target)
	assert.Equal(t, "New", target.Name)
	assert.Equal(t, "Keep", target.Description)
	assert.True(t, target.Available)

	user := UserCreateRequest{Name: "Ann", Email: "ann@example.com"}.ToModel()
	assert.Equal(t, "ann@example.com", user.Email)
}
