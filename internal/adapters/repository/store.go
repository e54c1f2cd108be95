// Package repository stores player rating records behind the read/write
// interface matchmaking consumes.
package repository

import (
	"context"

	"github.com/vityaz/arena/internal/domain/model"
)

// Store provides read/write access to rating records.
//
// Ordering for ranked reads: rating DESC, then playerID ASC
// (deterministic).
type Store interface {
	// Get returns the record for a player, false if none exists.
	Get(ctx context.Context, playerID string) (model.RatingRecord, bool)

	// Seed creates a record at the given rating if absent and returns the
	// current record either way.
	Seed(ctx context.Context, playerID string, rating float64) model.RatingRecord

	// Put stores a record, replacing any existing one.
	Put(ctx context.Context, rec model.RatingRecord)

	// TopN returns up to n records ordered by rating desc.
	TopN(ctx context.Context, n int) []model.RatingRecord

	// Rank returns the 1-based rank for a player, ties sharing the best
	// rank. Returns ErrNotFound for an unknown player.
	Rank(ctx context.Context, playerID string) (int, model.RatingRecord, error)

	// Count returns the number of tracked players.
	Count(ctx context.Context) int
}
