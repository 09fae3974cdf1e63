//go:build unit

package repository_test

import (
	"reflect"
	"testing"

	"event-ticketing/internal/infra"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeRow hands fixed values to Scan in column order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.values) {
			break
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

// anyArgs matches n positional query arguments.
func anyArgs(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = gomock.Any()
	}
	return out
}

func tag(s string) pgconn.CommandTag {
	return pgconn.NewCommandTag(s)
}

func pgErr(code string) error {
	return &pgconn.PgError{Code: code}
}

func assertRepoErr(t *testing.T, err error, expectedError bool, kind infra.RepositoryErrorKind) {
	t.Helper()
	if !expectedError {
		assert.NoError(t, err)
		return
	}
	require.Error(t, err)
	if kind != "" {
		assert.True(t, infra.IsKind(err, kind), "expected kind [%v] but got [%T] (%v)", kind, err, err)
	}
}
