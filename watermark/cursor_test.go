package watermark

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_JSONRoundTrip(t *testing.T) {
	c := Cursor{
		Mode:          ModeUpdatedAt,
		LastUpdatedAt: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		LastID:        42,
	}

	data, err := MarshalCursor(c)
	require.NoError(t, err)

	got, err := UnmarshalCursor(data)
	require.NoError(t, err)
	assert.Equal(t, c.Mode, got.Mode)
	assert.True(t, c.LastUpdatedAt.Equal(got.LastUpdatedAt))
	assert.Equal(t, c.LastID, got.LastID)
}

func TestCursor_WireShape(t *testing.T) {
	data, err := MarshalCursor(FromID(1000))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "monotonic_id", raw["mode"])
	assert.EqualValues(t, 1000, raw["lastId"])
	assert.Contains(t, raw, "lastUpdatedAt")
}

func TestCursor_Regresses(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		current   Cursor
		next      Cursor
		regresses bool
	}{
		{
			name:      "time moves forward",
			current:   Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base},
			next:      Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base.Add(time.Minute)},
			regresses: false,
		},
		{
			name:      "same time is allowed",
			current:   Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base},
			next:      Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base},
			regresses: false,
		},
		{
			name:      "time moves backwards",
			current:   Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base},
			next:      Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base.Add(-time.Second)},
			regresses: true,
		},
		{
			name:      "id moves forward",
			current:   FromID(100),
			next:      FromID(250),
			regresses: false,
		},
		{
			name:      "id moves backwards",
			current:   FromID(250),
			next:      FromID(100),
			regresses: true,
		},
		{
			name:      "backfill handoff to steady state",
			current:   Cursor{Mode: ModeMonotonicID, LastID: 500, LastUpdatedAt: base},
			next:      Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base},
			regresses: false,
		},
		{
			name:      "steady state back to backfill",
			current:   Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: base},
			next:      Cursor{Mode: ModeMonotonicID, LastID: 500},
			regresses: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.regresses, tt.current.Regresses(tt.next))
		})
	}
}
