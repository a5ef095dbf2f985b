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


package watermark

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// BadgerStore implements Store on a BadgerDB database.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ Store = (*BadgerStore)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBadger opens a cursor store at the specified directory, creating it if
// needed. With inMemory set, the store lives entirely in memory; used by
// tests.
func OpenBadger(filePath string, inMemory bool) (*BadgerStore, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// makeCursorKey generates the key holding a pipeline's cursor.
func makeCursorKey(pipeline string) []byte {
	return []byte(fmt.Sprintf("wm:%s", pipeline))
}

// Load retrieves the cursor for a pipeline.
func (s *BadgerStore) Load(ctx context.Context, pipeline string) (Cursor, bool, error) {
	var (
		cursor Cursor
		found  bool
	)
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCursorKey(pipeline))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			c, err := UnmarshalCursor(val)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
			}
			cursor = c
			found = true
			return nil
		})
	})
	return cursor, found, err
}

// Save persists a cursor, refusing to move it backwards.
func (s *BadgerStore) Save(ctx context.Context, pipeline string, cursor Cursor) error {
	existing, found, err := s.Load(ctx, pipeline)
	if err != nil {
		return err
	}
	if found && existing.Regresses(cursor) {
		return fmt.Errorf("%w: pipeline %s", ErrCursorRegression, pipeline)
	}
	return s.put(pipeline, cursor)
}

// Reset overwrites the cursor unconditionally.
func (s *BadgerStore) Reset(ctx context.Context, pipeline string, cursor Cursor) error {
	s.logger.Info("resetting cursor", "pipeline", pipeline, "mode", cursor.Mode)
	return s.put(pipeline, cursor)
}

func (s *BadgerStore) put(pipeline string, cursor Cursor) error {
	value, err := MarshalCursor(cursor)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(makeCursorKey(pipeline), value)
	})
}
