package repository

import (
	"event-ticketing/internal/infra"

	"github.com/jackc/pgx/v5/pgconn"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// guardHeld reports whether a conditional statement touched exactly one row.
func guardHeld(tag pgconn.CommandTag) bool {
	return tag.RowsAffected() == 1
}

// mustAffect turns a conditional update that matched nothing into a conflict.
func mustAffect(tag pgconn.CommandTag, msg string) error {
	if !guardHeld(tag) {
		return infra.WrapRepoErr(msg, nil, infra.KindConflict)
	}
	return nil
}
