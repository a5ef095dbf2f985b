// Package watermark persists per-pipeline sync cursors.
//
// A cursor records the last position a pipeline has fully replicated into the
// search index. It is saved only after a batch has been completely and
// successfully loaded, so a crash mid-batch re-extracts the same batch on the
// next run. Re-delivery is safe because all index writes are idempotent.
package watermark
