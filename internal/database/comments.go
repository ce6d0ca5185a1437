package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.CreatedAt = storedTime(comment.CreatedAt)
	id, err := db.insert(ctx, db.dialect.Insert(tableComments).Rows(goqu.Record{
		"text":       comment.Text,
		"item_id":    comment.ItemID,
		"author_id":  comment.AuthorID,
		"created_at": comment.CreatedAt,
	}), "comment")
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	comment.ID = id
	return nil
}

// GetCommentsByItemIDs returns comments of the given items, oldest first, with author names.
func (db *DB) GetCommentsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if len(itemIDs) == 0 {
		return comments, nil
	}
	ds := db.dialect.From(goqu.T(tableComments).As("c")).
		Join(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.author_id")))).
		Select(
			goqu.I("c.id").As("id"),
			goqu.I("c.text").As("text"),
			goqu.I("c.item_id").As("item_id"),
			goqu.I("c.author_id").As("author_id"),
			goqu.I("u.name").As("author_name"),
			goqu.I("c.created_at").As("created_at"),
		).
		Where(goqu.I("c.item_id").In(itemIDs)).
		Order(goqu.I("c.created_at").Asc(), goqu.I("c.id").Asc())
	if err := db.selectAll(ctx, &comments, ds, "comments"); err != nil {
		return nil, err
	}
	return comments, nil
}
