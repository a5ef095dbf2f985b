// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package sqlite implements the source contracts on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/poiesic/forumsync/source"
)

// Store implements the source contracts plus the seed/test write helpers.
type Store struct {
	db *sql.DB
}

var _ source.Store = (*Store)(nil)

// Open opens a SQLite database with WAL mode enabled and the forum schema
// initialized.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS posts (
	post_id INTEGER PRIMARY KEY,
	topic_id INTEGER NOT NULL,
	board_id INTEGER NOT NULL,
	author_uid INTEGER NOT NULL,
	author TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	posted_at INTEGER NOT NULL,
	archived INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_updated_at ON posts(updated_at);

CREATE TABLE IF NOT EXISTS posts_history (
	version_id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	edited_at INTEGER NOT NULL,
	deleted INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY(post_id) REFERENCES posts(post_id)
);

CREATE INDEX IF NOT EXISTS idx_posts_history_updated_at ON posts_history(updated_at);

CREATE TABLE IF NOT EXISTS merits (
	merit_id INTEGER PRIMARY KEY,
	post_id INTEGER NOT NULL,
	topic_id INTEGER NOT NULL,
	amount INTEGER NOT NULL,
	sender_uid INTEGER NOT NULL,
	receiver_uid INTEGER NOT NULL,
	awarded_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_merits_updated_at ON merits(updated_at);

CREATE TABLE IF NOT EXISTS topics (
	topic_id INTEGER PRIMARY KEY,
	first_post_id INTEGER NOT NULL,
	board_id INTEGER NOT NULL,
	author_uid INTEGER NOT NULL,
	author TEXT NOT NULL,
	title TEXT NOT NULL,
	posted_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_topics_updated_at ON topics(updated_at);

CREATE TABLE IF NOT EXISTS boards (
	board_id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	parent_id INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_boards_updated_at ON boards(updated_at);

CREATE TABLE IF NOT EXISTS posts_addresses (
	address TEXT NOT NULL,
	coin TEXT NOT NULL,
	post_id INTEGER NOT NULL,
	topic_id INTEGER NOT NULL,
	board_id INTEGER NOT NULL,
	author_uid INTEGER NOT NULL,
	author TEXT NOT NULL,
	mentioned_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY(address, post_id)
);

CREATE INDEX IF NOT EXISTS idx_posts_addresses_updated_at ON posts_addresses(updated_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Timestamps are stored as microseconds since the Unix epoch so range scans
// compare numerically.
func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}
