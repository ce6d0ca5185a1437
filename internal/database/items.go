package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"shareit/internal/models"
)

var itemColumns = []interface{}{"id", "name", "description", "available", "owner_id", "request_id"}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableItems).Rows(goqu.Record{
		"name":        item.Name,
		"description": item.Description,
		"available":   item.Available,
		"owner_id":    item.OwnerID,
		"request_id":  nullableID(item.RequestID),
	}), "item")
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	ds := db.dialect.From(tableItems).Select(itemColumns...).Where(goqu.C("id").Eq(id))
	if err := db.get(ctx, &item, ds, "item"); err != nil {
		return nil, err
	}
	return &item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query, args, err := db.dialect.Update(tableItems).
		Set(goqu.Record{
			"name":        item.Name,
			"description": item.Description,
			"available":   item.Available,
		}).
		Where(goqu.C("id").Eq(item.ID)).
		Prepared(true).
		ToSQL()
	rows, err := db.exec(ctx, query, args, err, "item")
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if rows == 0 {
		return mapNoRows("item")
	}
	return nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error) {
	items := []*models.Item{}
	ds := db.dialect.From(tableItems).
		Select(itemColumns...).
		Where(goqu.C("owner_id").Eq(ownerID)).
		Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &items, paginate(ds, page.Offset, page.Limit), "items"); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItems matches text case-insensitively against name and description of available items.
func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	items := []*models.Item{}
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	ds := db.dialect.From(tableItems).
		Select(itemColumns...).
		Where(
			goqu.C("available").IsTrue(),
			goqu.Or(
				goqu.L(`LOWER("name") LIKE ? ESCAPE '\'`, pattern),
				goqu.L(`LOWER("description") LIKE ? ESCAPE '\'`, pattern),
			),
		).
		Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &items, paginate(ds, page.Offset, page.Limit), "items"); err != nil {
		return nil, err
	}
	return items, nil
}

func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	items := []*models.Item{}
	if len(requestIDs) == 0 {
		return items, nil
	}
	ds := db.dialect.From(tableItems).
		Select(itemColumns...).
		Where(goqu.C("request_id").In(requestIDs)).
		Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &items, ds, "items"); err != nil {
		return nil, err
	}
	return items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
