package api

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced by the HTTP layer.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("queue backpressure")
	ErrNotFound     = errors.New("not found")
)

// WrapKind wraps an underlying error with an operation and error kind so
// callers can use errors.Is against the sentinels.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind creates an error carrying just an operation and kind.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
