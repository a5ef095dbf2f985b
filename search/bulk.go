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


package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultChunkSize bounds one bulk request's operation count.
	DefaultChunkSize = 100

	// DefaultChunkWorkers bounds how many chunks of a batch are in flight
	// at once.
	DefaultChunkWorkers = 4
)

// LoadResult summarizes one fully attempted batch.
type LoadResult struct {
	Succeeded int
	Failed    []ItemFailure
}

// BulkLoader chunks a batch of operations and issues the chunks concurrently
// against the bulk endpoint.
type BulkLoader struct {
	client    *Client
	chunkSize int
	pool      *ants.Pool
	logger    *slog.Logger
}

// NewBulkLoader creates a loader. chunkSize bounds each request's operation
// count; workers bounds in-flight chunks.
func NewBulkLoader(client *Client, chunkSize, workers int) (*BulkLoader, error) {
	if chunkSize <= 0 {
		return nil, ErrEmptyChunkSize
	}
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	return &BulkLoader{
		client:    client,
		chunkSize: chunkSize,
		pool:      pool,
		logger:    slog.Default(),
	}, nil
}

// Release frees the worker pool.
func (l *BulkLoader) Release() {
	l.pool.Release()
}

// Load writes all operations, waiting for every chunk before evaluating the
// outcome. If any single item was rejected the whole batch fails with a
// *BulkError carrying every rejected item; a transport failure on any chunk
// fails the batch with that error. Only a fully clean batch returns nil.
func (l *BulkLoader) Load(ctx context.Context, ops []Operation) (*LoadResult, error) {
	if len(ops) == 0 {
		return &LoadResult{}, nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []ItemFailure
		transport error
	)

	for start := 0; start < len(ops); start += l.chunkSize {
		end := start + l.chunkSize
		if end > len(ops) {
			end = len(ops)
		}
		chunk := ops[start:end]

		wg.Add(1)
		submitErr := l.pool.Submit(func() {
			defer wg.Done()
			ok, failed, err := l.loadChunk(ctx, chunk)

			mu.Lock()
			defer mu.Unlock()
			succeeded += ok
			failures = append(failures, failed...)
			if err != nil && transport == nil {
				transport = err
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if transport == nil {
				transport = submitErr
			}
			mu.Unlock()
		}
	}

	wg.Wait()

	result := &LoadResult{Succeeded: succeeded, Failed: failures}
	if transport != nil {
		return result, transport
	}
	if len(failures) > 0 {
		l.logger.Error("bulk load rejected items", "failed", len(failures), "succeeded", succeeded)
		return result, &BulkError{Failures: failures}
	}
	return result, nil
}

// loadChunk issues one bulk request and inspects every item of the response;
// a bulk write can partially succeed.
func (l *BulkLoader) loadChunk(ctx context.Context, chunk []Operation) (int, []ItemFailure, error) {
	bulk := l.client.es.Bulk()
	for _, op := range chunk {
		bulk.Add(op.request())
	}

	res, err := bulk.Do(ctx)
	if err != nil {
		return 0, nil, err
	}

	var failures []ItemFailure
	if res.Errors {
		for _, item := range res.Failed() {
			reason := ""
			if item.Error != nil {
				reason = item.Error.Type + ": " + item.Error.Reason
			}
			failures = append(failures, ItemFailure{
				Index:  item.Index,
				DocID:  item.Id,
				Status: item.Status,
				Reason: reason,
			})
		}
	}

	return len(chunk) - len(failures), failures, nil
}
