package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTieBoundary(t *testing.T) {
	at := func(ts time.Time) time.Time { return ts }

	cases := []struct {
		name string
		rows []time.Time
		want int
	}{
		{"distinct timestamps", []time.Time{day(1), day(2), day(3)}, 2},
		{"trailing pair tied", []time.Time{day(1), day(2), day(2)}, 1},
		{"all tied", []time.Time{day(2), day(2), day(2)}, 0},
		{"single row", []time.Time{day(1)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tieBoundary(tc.rows, at))
		})
	}
}

func TestFetchPastTies_GivesUpOnUnboundedTieGroup(t *testing.T) {
	// The source always fills whatever width it is asked for, all rows on
	// one timestamp, so widening can never find the group's end.
	read := func(ctx context.Context, n int) ([]time.Time, error) {
		rows := make([]time.Time, n)
		for i := range rows {
			rows[i] = day(1)
		}
		return rows, nil
	}
	at := func(ts time.Time) time.Time { return ts }

	rows, full, err := fetchPastTies(context.Background(), 2, "posts", read, at)
	require.NoError(t, err)
	assert.True(t, full)
	assert.Len(t, rows, 2*maxTieWiden, "widening stops at the cap instead of looping forever")
}
