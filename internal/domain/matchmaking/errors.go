package matchmaking

import "errors"

var (
	// ErrUnknownMode indicates a game mode no queue exists for. This is a
	// caller contract violation, not adversarial input.
	ErrUnknownMode = errors.New("unknown game mode")

	// ErrSelfMatch indicates a match result naming the same player twice.
	ErrSelfMatch = errors.New("winner and loser are the same player")
)
