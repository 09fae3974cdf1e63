package response

import (
	"log/slog"

	"github.com/jinzhu/copier"
)

// copyAs maps a read model onto a response type by field name. Pointers are shared, not cloned.
func copyAs[T any](src any) *T {
	var dst T
	if err := copier.Copy(&dst, src); err != nil {
		slog.Error("response mapping failed", "error", err.Error())
	}
	return &dst
}

func copyAll[T any, S any](src []*S) []*T {
	out := make([]*T, len(src))
	for i, s := range src {
		out[i] = copyAs[T](s)
	}
	return out
}
