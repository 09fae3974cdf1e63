//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"event-ticketing/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("sentinel")

func TestMark(t *testing.T) {
	t.Run("keeps the original message and matches the mark", func(t *testing.T) {
		base := errors.New("db exploded")
		marked := errs.Mark(base, errSentinel)

		assert.True(t, errors.Is(marked, errSentinel))
		assert.True(t, errors.Is(marked, base))
		assert.Equal(t, "db exploded", marked.Error())
	})

	t.Run("nil error returns the mark itself", func(t *testing.T) {
		assert.Equal(t, errSentinel, errs.Mark(nil, errSentinel))
	})
}

func TestWrap(t *testing.T) {
	assert.NoError(t, errs.Wrap(nil, "ignored"))

	wrapped := errs.Wrapf(errSentinel, "reserve %d units", 3)
	assert.True(t, errs.Is(wrapped, errSentinel))
	assert.Contains(t, wrapped.Error(), "reserve 3 units")
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 5))

	lines := errs.ExtractStackLines(errs.New("boom"), 2)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "boom")
}
