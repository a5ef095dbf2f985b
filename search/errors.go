package search

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyChunkSize indicates a loader configured with a non-positive
	// chunk size.
	ErrEmptyChunkSize = errors.New("chunk size must be positive")
)

// ItemFailure describes one document the index rejected inside a bulk write.
type ItemFailure struct {
	Index  string
	DocID  string
	Status int
	Reason string
}

// BulkError aggregates every item failure of one batch. The presence of any
// failure fails the whole batch so the caller's cursor never advances past a
// record that is not actually in the index.
type BulkError struct {
	Failures []ItemFailure
}

func (e *BulkError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bulk load failed for %d item(s):", len(e.Failures))
	for i, f := range e.Failures {
		if i == 5 {
			fmt.Fprintf(&sb, " and %d more", len(e.Failures)-i)
			break
		}
		fmt.Fprintf(&sb, " [%s/%s status=%d %s]", f.Index, f.DocID, f.Status, f.Reason)
	}
	return sb.String()
}
