package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"shareit/internal/models"
)

var requestColumns = []interface{}{"id", "description", "requestor_id", "created_at"}

func (db *DB) CreateItemRequest(ctx context.Context, req *models.ItemRequest) error {
	req.CreatedAt = storedTime(req.CreatedAt)
	id, err := db.insert(ctx, db.dialect.Insert(tableRequests).Rows(goqu.Record{
		"description":  req.Description,
		"requestor_id": req.RequestorID,
		"created_at":   req.CreatedAt,
	}), "item request")
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var req models.ItemRequest
	ds := db.dialect.From(tableRequests).Select(requestColumns...).Where(goqu.C("id").Eq(id))
	if err := db.get(ctx, &req, ds, "item request"); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetItemRequestsByRequestor returns the user's requests, newest first.
func (db *DB) GetItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	reqs := []*models.ItemRequest{}
	ds := db.dialect.From(tableRequests).
		Select(requestColumns...).
		Where(goqu.C("requestor_id").Eq(requestorID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if err := db.selectAll(ctx, &reqs, ds, "item requests"); err != nil {
		return nil, err
	}
	return reqs, nil
}

// GetItemRequestsExcept returns other users' requests, newest first.
func (db *DB) GetItemRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	reqs := []*models.ItemRequest{}
	ds := db.dialect.From(tableRequests).
		Select(requestColumns...).
		Where(goqu.C("requestor_id").Neq(userID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if err := db.selectAll(ctx, &reqs, paginate(ds, page.Offset, page.Limit), "item requests"); err != nil {
		return nil, err
	}
	return reqs, nil
}
