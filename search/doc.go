// Package search writes replicated documents into the search index.
//
// Writes go through the bulk endpoint in fixed-size chunks issued
// concurrently. Every operation is idempotent: full-document upserts are
// keyed by the entity's stable id, and partial merges run named server-side
// scripts that de-duplicate contributed sub-items by id and recompute derived
// aggregates. A batch either loads completely or reports an aggregate error
// listing every rejected item; callers never checkpoint past a partial load.
package search
