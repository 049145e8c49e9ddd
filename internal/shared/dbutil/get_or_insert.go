package dbutil

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a GetOrInsert finder when the row does not exist
var ErrNotFound = errors.New("dbutil: row not found")

// InsertOutcome tells GetOrInsert what happened to an insert attempt.
type InsertOutcome int

const (
	// Inserted means this caller created the row.
	Inserted InsertOutcome = iota
	// Conflicted means another writer owns the key; the row must be re-read.
	Conflicted
)

// GetOrInsert returns the row owned by a unique key, creating it when absent.
//
//   - find is the fast path and must return ErrNotFound on a miss.
//   - build prepares the new row; it only runs on a miss and may fail with a
//     business error that is returned untouched.
//   - insert writes the row. It reports Conflicted either through the outcome
//     (ON CONFLICT DO NOTHING affected zero rows) or by returning an error for
//     which isConflict is true. Both make GetOrInsert re-read the winner.
//
// The returned bool is true when this call created the row.
func GetOrInsert[T any](
	ctx context.Context,
	find func(ctx context.Context) (T, error),
	build func(ctx context.Context) (T, error),
	insert func(ctx context.Context, row T) (InsertOutcome, error),
	isConflict func(err error) bool,
) (T, bool, error) {
	var zero T

	existing, err := find(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return zero, false, err
	}

	row, err := build(ctx)
	if err != nil {
		return zero, false, err
	}

	outcome, err := insert(ctx, row)
	if err != nil {
		if isConflict == nil || !isConflict(err) {
			return zero, false, err
		}
		outcome = Conflicted
	}
	if outcome == Inserted {
		return row, true, nil
	}

	winner, err := find(ctx)
	if err != nil {
		return zero, false, err
	}
	return winner, false, nil
}
