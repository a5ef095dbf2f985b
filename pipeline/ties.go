package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// maxTieWiden caps how far a batch limit is widened to swallow a single
// timestamp tie group before giving up.
const maxTieWiden = 16

// tieBoundary returns how many leading rows of a batch can be kept so that
// no group sharing the final row's modification time is split across the
// batch border. Zero means every row shares one timestamp.
func tieBoundary[T any](rows []T, updatedAt func(T) time.Time) int {
	last := updatedAt(rows[len(rows)-1])
	i := len(rows)
	for i > 0 && updatedAt(rows[i-1]).Equal(last) {
		i--
	}
	return i
}

// fetchPastTies reads rows past the cursor so that no timestamp tie group is
// split across a batch border. The cursor records only a timestamp, so a
// split group would be half-skipped by the strict > read of the next batch.
// A full batch is trimmed back to the last complete group, deferring the tie
// group to the next read; when the whole batch shares one timestamp the read
// is retried with a widened limit until the group ends. full reports whether
// the caller should keep draining.
func fetchPastTies[T any](ctx context.Context, limit int, pipeline string,
	read func(context.Context, int) ([]T, error),
	updatedAt func(T) time.Time) (rows []T, full bool, err error) {

	width := limit
	for {
		rows, err = read(ctx, width)
		if err != nil {
			return nil, false, err
		}
		if len(rows) < width {
			// End of data; nothing beyond the last row can share its
			// timestamp, so the whole batch is safe to emit.
			return rows, len(rows) >= limit, nil
		}
		if i := tieBoundary(rows, updatedAt); i > 0 {
			return rows[:i], true, nil
		}
		if width >= limit*maxTieWiden {
			slog.Warn("timestamp tie group exceeds the widened batch limit, rows sharing it may be skipped",
				"pipeline", pipeline, "rows", len(rows), "updatedAt", updatedAt(rows[0]))
			return rows, true, nil
		}
		width *= 2
	}
}
