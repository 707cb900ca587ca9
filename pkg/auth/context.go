package auth

import (
	"context"
	"errors"
)

type contextKey string

const personIDKey contextKey = "person_id"

// ErrPersonIDNotFound is returned when the request carries no authenticated
// person. Handlers answer 401.
var ErrPersonIDNotFound = errors.New("person_id not found in context")

// PersonIDFromCtx returns the id of the authenticated brigade member, the
// person recorded as responsible for every stock movement of the request.
func PersonIDFromCtx(ctx context.Context) (int64, error) {
	id, ok := ctx.Value(personIDKey).(int64)
	if !ok || id <= 0 {
		return 0, ErrPersonIDNotFound
	}
	return id, nil
}

// WithPersonID attaches the authenticated person id to ctx.
func WithPersonID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, personIDKey, id)
}
