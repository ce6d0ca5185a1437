package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"shareit/internal/domain"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// mapError translates driver errors into domain error kinds. Unknown errors pass through.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("%s not found", what)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return domain.Conflictf("%s already exists", what)
		case sqlite3.ErrConstraintForeignKey:
			return domain.Conflictf("%s references a missing entity", what)
		case sqlite3.ErrConstraintCheck:
			return domain.InvalidRequestf("%s violates a check constraint", what)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return domain.Conflictf("%s already exists", what)
		case pgerrcode.ForeignKeyViolation:
			return domain.Conflictf("%s references a missing entity", what)
		case pgerrcode.CheckViolation:
			return domain.InvalidRequestf("%s violates a check constraint", what)
		}
	}

	return err
}

func mapNoRows(what string) error {
	return mapError(sql.ErrNoRows, what)
}
