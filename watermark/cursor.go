package watermark

import (
	"encoding/json"
	"time"
)

// Mode selects the field a cursor tracks.
type Mode string

const (
	// ModeUpdatedAt orders extraction by modification time. This is the
	// steady-state mode for every pipeline.
	ModeUpdatedAt Mode = "updated_at"

	// ModeMonotonicID orders extraction by a monotonically increasing record
	// id. Used for one-time historical backfills that seed a fresh index from
	// a known starting id.
	ModeMonotonicID Mode = "monotonic_id"
)

// Cursor is the last successfully replicated position for one pipeline.
//
// In ModeMonotonicID runs LastUpdatedAt tracks the newest modification time
// seen so far, so that the handoff to ModeUpdatedAt does not revisit
// backfilled records.
type Cursor struct {
	Mode          Mode      `json:"mode"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastID        int64     `json:"lastId,omitempty"`
}

// Epoch returns the steady-state bootstrap cursor: everything ever modified
// is considered new.
func Epoch() Cursor {
	return Cursor{Mode: ModeUpdatedAt, LastUpdatedAt: time.Unix(0, 0).UTC()}
}

// FromID returns a backfill cursor starting after the given record id.
func FromID(id int64) Cursor {
	return Cursor{Mode: ModeMonotonicID, LastID: id, LastUpdatedAt: time.Unix(0, 0).UTC()}
}

// Regresses reports whether persisting next after c would move the cursor
// backwards on its tracked field. Switching from ModeMonotonicID to
// ModeUpdatedAt is the backfill handoff and is always forward; the reverse
// switch is a regression.
func (c Cursor) Regresses(next Cursor) bool {
	if c.Mode == next.Mode {
		if c.Mode == ModeMonotonicID {
			return next.LastID < c.LastID
		}
		return next.LastUpdatedAt.Before(c.LastUpdatedAt)
	}
	return c.Mode == ModeUpdatedAt && next.Mode == ModeMonotonicID
}

// MarshalCursor serializes a cursor to its on-disk JSON form.
func MarshalCursor(c Cursor) ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalCursor deserializes a cursor from its on-disk JSON form.
func UnmarshalCursor(data []byte) (Cursor, error) {
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, err
	}
	return c, nil
}
