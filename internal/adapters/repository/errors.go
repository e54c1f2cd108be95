package repository

import "errors"

// ErrNotFound indicates a player with no rating record. Disconnect races
// make this an expected condition, not a fault.
var ErrNotFound = errors.New("rating record not found")
