package watermark

import (
	"context"
	"errors"
)

var (
	// ErrCursorRegression indicates a Save that would move a cursor backwards.
	ErrCursorRegression = errors.New("cursor regression")

	// ErrSerializationFailed indicates a cursor could not be decoded.
	ErrSerializationFailed = errors.New("cursor serialization failed")
)

// Store persists one cursor per pipeline.
type Store interface {
	// Load retrieves the cursor for a pipeline. The second return value is
	// false when no cursor has been stored yet; callers supply their own
	// bootstrap default in that case.
	Load(ctx context.Context, pipeline string) (Cursor, bool, error)

	// Save persists a cursor. Returns ErrCursorRegression if the new value is
	// behind the stored one; cursors only ever move forward through Save.
	Save(ctx context.Context, pipeline string, cursor Cursor) error

	// Reset overwrites the cursor unconditionally. This is the manual
	// bootstrap escape hatch and the only way a cursor may move backwards.
	Reset(ctx context.Context, pipeline string, cursor Cursor) error

	// Close releases the underlying storage.
	Close() error
}
