// Package pipeline drives incremental replication from the relational store
// into the search index. Each pipeline extracts rows past its watermark
// cursor, transforms them into index operations, and hands batches to a bulk
// loader; the cursor advances only after a batch loads in full, so a crashed
// or failed run replays from the last durable position without losing data.
package pipeline
