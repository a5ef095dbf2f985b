// Package source defines the read contracts against the relational store the
// scraping layer populates. Every read is an ordered range scan: rows
// strictly past a cursor value, ascending on the cursor field, bounded by a
// limit, so the last row of a batch is always a valid next cursor.
//
// The store is external and read-only from the sync engine's perspective;
// the write helpers in the sqlite implementation exist for tests and local
// seeding only.
package source
