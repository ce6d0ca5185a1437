package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"shareit/internal/models"
)

var userColumns = []interface{}{"id", "name", "email"}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	id, err := db.insert(ctx, db.dialect.Insert(tableUsers).Rows(goqu.Record{
		"name":  user.Name,
		"email": user.Email,
	}), "user")
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	ds := db.dialect.From(tableUsers).Select(userColumns...).Where(goqu.C("id").Eq(id))
	if err := db.get(ctx, &user, ds, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	ds := db.dialect.From(tableUsers).Select(userColumns...).Order(goqu.C("id").Asc())
	if err := db.selectAll(ctx, &users, ds, "users"); err != nil {
		return nil, err
	}
	return users, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query, args, err := db.dialect.Update(tableUsers).
		Set(goqu.Record{"name": user.Name, "email": user.Email}).
		Where(goqu.C("id").Eq(user.ID)).
		Prepared(true).
		ToSQL()
	rows, err := db.exec(ctx, query, args, err, "user")
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows == 0 {
		return mapNoRows("user")
	}
	return nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	query, args, err := db.dialect.Delete(tableUsers).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	rows, err := db.exec(ctx, query, args, err, "user")
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if rows == 0 {
		return mapNoRows("user")
	}
	return nil
}
