package model

import "errors"

// Sentinel kinds for event boundary errors.
var (
	ErrUnknownKind    = errors.New("unknown event kind")
	ErrMissingPayload = errors.New("missing event payload")
	ErrMalformedEvent = errors.New("malformed event")
)
