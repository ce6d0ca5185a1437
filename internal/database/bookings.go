package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// bookingRow is a booking joined with its item and booker.
type bookingRow struct {
	models.Booking

	ItemName        string `db:"item_name"`
	ItemDescription string `db:"item_description"`
	ItemAvailable   bool   `db:"item_available"`
	ItemOwnerID     int64  `db:"item_owner_id"`
	ItemRequestID   *int64 `db:"item_request_id"`
	BookerName      string `db:"booker_name"`
	BookerEmail     string `db:"booker_email"`
}

func (r *bookingRow) toModel() *models.Booking {
	b := r.Booking
	b.Item = &models.Item{
		ID:          r.ItemID,
		Name:        r.ItemName,
		Description: r.ItemDescription,
		Available:   r.ItemAvailable,
		OwnerID:     r.ItemOwnerID,
		RequestID:   r.ItemRequestID,
	}
	b.Booker = &models.User{
		ID:    r.BookerID,
		Name:  r.BookerName,
		Email: r.BookerEmail,
	}
	return &b
}

func toBookings(rows []bookingRow) []*models.Booking {
	bookings := make([]*models.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, rows[i].toModel())
	}
	return bookings
}

func (db *DB) bookingSelect() *goqu.SelectDataset {
	return db.dialect.From(goqu.T(tableBookings).As("b")).
		Join(goqu.T(tableItems).As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id").As("id"),
			goqu.I("b.start_date").As("start_date"),
			goqu.I("b.end_date").As("end_date"),
			goqu.I("b.item_id").As("item_id"),
			goqu.I("b.booker_id").As("booker_id"),
			goqu.I("b.status").As("status"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.description").As("item_description"),
			goqu.I("i.available").As("item_available"),
			goqu.I("i.owner_id").As("item_owner_id"),
			goqu.I("i.request_id").As("item_request_id"),
			goqu.I("u.name").As("booker_name"),
			goqu.I("u.email").As("booker_email"),
		)
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	booking.Start = storedTime(booking.Start)
	booking.End = storedTime(booking.End)
	if booking.Status == "" {
		booking.Status = models.StatusWaiting
	}

	id, err := db.insert(ctx, db.dialect.Insert(tableBookings).Rows(goqu.Record{
		"start_date": booking.Start,
		"end_date":   booking.End,
		"item_id":    booking.ItemID,
		"booker_id":  booking.BookerID,
		"status":     string(booking.Status),
	}), "booking")
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = id
	return nil
}

// GetBooking returns the booking with its item and booker filled in.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var row bookingRow
	if err := db.get(ctx, &row, db.bookingSelect().Where(goqu.I("b.id").Eq(id)), "booking"); err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// UpdateBookingStatus moves a booking from one status to another. It returns
// domain.ErrConcurrentModification if the booking is no longer in the from status.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, from, to models.BookingStatus) error {
	query, args, err := db.dialect.Update(tableBookings).
		Set(goqu.Record{"status": string(to)}).
		Where(goqu.C("id").Eq(id), goqu.C("status").Eq(string(from))).
		Prepared(true).
		ToSQL()
	rows, err := db.exec(ctx, query, args, err, "booking")
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if rows == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

// FindBookings executes a storage-neutral booking query.
func (db *DB) FindBookings(ctx context.Context, q models.BookingQuery) ([]*models.Booking, error) {
	ds := db.bookingSelect().Where(bookingFilter(q)...)
	for _, o := range q.Order {
		col := goqu.I("b." + o.Column)
		if o.Desc {
			ds = ds.OrderAppend(col.Desc())
		} else {
			ds = ds.OrderAppend(col.Asc())
		}
	}
	ds = ds.OrderAppend(goqu.I("b.id").Desc())

	var rows []bookingRow
	if err := db.selectAll(ctx, &rows, paginate(ds, q.Page.Offset, q.Page.Limit), "bookings"); err != nil {
		return nil, err
	}
	return toBookings(rows), nil
}

func bookingFilter(q models.BookingQuery) []exp.Expression {
	var where []exp.Expression
	if q.Role == models.RoleOwner {
		where = append(where, goqu.I("i.owner_id").Eq(q.UserID))
	} else {
		where = append(where, goqu.I("b.booker_id").Eq(q.UserID))
	}
	if q.Status != "" {
		where = append(where, goqu.I("b.status").Eq(string(q.Status)))
	}
	if !q.StartBefore.IsZero() {
		where = append(where, goqu.I("b.start_date").Lt(upperBound(q.StartBefore)))
	}
	if !q.StartAfter.IsZero() {
		where = append(where, goqu.I("b.start_date").Gt(storedTime(q.StartAfter)))
	}
	if !q.EndBefore.IsZero() {
		where = append(where, goqu.I("b.end_date").Lt(upperBound(q.EndBefore)))
	}
	if !q.EndAfter.IsZero() {
		where = append(where, goqu.I("b.end_date").Gt(storedTime(q.EndAfter)))
	}
	return where
}

// GetItemBookings returns all non-rejected bookings of the given items ordered by start.
func (db *DB) GetItemBookings(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	ds := db.bookingSelect().
		Where(
			goqu.I("b.item_id").In(itemIDs),
			goqu.I("b.status").Neq(string(models.StatusRejected)),
		).
		Order(goqu.I("b.start_date").Asc(), goqu.I("b.id").Asc())

	var rows []bookingRow
	if err := db.selectAll(ctx, &rows, ds, "bookings"); err != nil {
		return nil, err
	}
	return toBookings(rows), nil
}

// HasFinishedBooking reports whether the booker has any booking of the item that ended before the given instant.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, before time.Time) (bool, error) {
	var count int64
	ds := db.dialect.From(tableBookings).
		Select(goqu.COUNT("*")).
		Where(
			goqu.C("booker_id").Eq(bookerID),
			goqu.C("item_id").Eq(itemID),
			goqu.C("end_date").Lt(upperBound(before)),
		)
	if err := db.get(ctx, &count, ds, "booking"); err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}
