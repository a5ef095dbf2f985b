package search

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/olivere/elastic/v7"
	"github.com/stretchr/testify/require"
)

// fakeIndex is a minimal in-process stand-in for the search engine's HTTP
// surface: the bulk endpoint plus the schema endpoints EnsureSchema touches.
// Bulk items are applied to an in-memory document map, including the
// semantics of the three stored merge scripts, so tests can observe the
// converged documents and not just the request traffic.
type fakeIndex struct {
	mu           sync.Mutex
	bulkRequests int
	docIDs       []string
	failIDs      map[string]bool
	indices      map[string]bool
	templates    map[string]bool
	scripts      map[string]bool
	docs         map[string]map[string]any
}

func newFakeIndex(t *testing.T) (*fakeIndex, *Client) {
	t.Helper()

	f := &fakeIndex{
		failIDs:   make(map[string]bool),
		indices:   make(map[string]bool),
		templates: make(map[string]bool),
		scripts:   make(map[string]bool),
		docs:      make(map[string]map[string]any),
	}

	server := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(server.Close)

	es, err := elastic.NewSimpleClient(elastic.SetURL(server.URL))
	require.NoError(t, err)

	return f, NewClientWithElastic(es)
}

func (f *fakeIndex) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/_bulk":
		f.handleBulk(w, r)
	case strings.HasPrefix(r.URL.Path, "/_template/"):
		f.mu.Lock()
		f.templates[strings.TrimPrefix(r.URL.Path, "/_template/")] = true
		f.mu.Unlock()
		fmt.Fprint(w, `{"acknowledged":true}`)
	case strings.HasPrefix(r.URL.Path, "/_scripts/"):
		f.mu.Lock()
		f.scripts[strings.TrimPrefix(r.URL.Path, "/_scripts/")] = true
		f.mu.Unlock()
		fmt.Fprint(w, `{"acknowledged":true}`)
	case r.Method == http.MethodHead:
		f.mu.Lock()
		exists := f.indices[strings.Trim(r.URL.Path, "/")]
		f.mu.Unlock()
		if exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut:
		f.mu.Lock()
		f.indices[strings.Trim(r.URL.Path, "/")] = true
		f.mu.Unlock()
		fmt.Fprintf(w, `{"acknowledged":true,"index":%q}`, strings.Trim(r.URL.Path, "/"))
	default:
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{}`)
	}
}

// handleBulk parses the interleaved header/payload line stream and reports
// per-item results, rejecting any doc id registered in failIDs.
func (f *fakeIndex) handleBulk(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.bulkRequests++
	f.mu.Unlock()

	var items []map[string]any
	hadErrors := false

	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var header map[string]map[string]any
		if err := json.Unmarshal([]byte(line), &header); err != nil {
			continue
		}

		var action string
		for _, candidate := range []string{"index", "create", "update", "delete"} {
			if _, ok := header[candidate]; ok {
				action = candidate
				break
			}
		}
		if action == "" {
			// Payload line, not a header.
			continue
		}

		docID, _ := header[action]["_id"].(string)
		index, _ := header[action]["_index"].(string)
		f.mu.Lock()
		f.docIDs = append(f.docIDs, docID)
		fail := f.failIDs[docID]
		f.mu.Unlock()

		result := map[string]any{"_index": index, "_id": docID, "status": 200}
		if fail {
			hadErrors = true
			result["status"] = 400
			result["error"] = map[string]any{
				"type":   "mapper_parsing_exception",
				"reason": "synthetic failure",
			}
		}
		items = append(items, map[string]any{action: result})

		// Every action except delete is followed by a payload line.
		var payload map[string]any
		if action != "delete" {
			if scanner.Scan() {
				json.Unmarshal([]byte(scanner.Text()), &payload)
			}
		}
		if !fail {
			f.apply(action, index, docID, payload)
		}
	}

	resp := map[string]any{"took": 1, "errors": hadErrors, "items": items}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeIndex) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bulkRequests
}

func (f *fakeIndex) seenDocIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.docIDs...)
}

// document returns the current state of one stored document, or nil.
func (f *fakeIndex) document(index, id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[index+"/"+id]
}

// apply mutates the document map the way the engine would.
func (f *fakeIndex) apply(action, index, id string, payload map[string]any) {
	key := index + "/" + id

	f.mu.Lock()
	defer f.mu.Unlock()

	switch action {
	case "index", "create":
		f.docs[key] = payload
	case "delete":
		delete(f.docs, key)
	case "update":
		doc := f.docs[key]
		if doc == nil {
			// Absent target: a plain upsert indexes the seed (or the
			// partial doc) verbatim; the script does not run.
			if seed, ok := payload["upsert"].(map[string]any); ok {
				f.docs[key] = seed
			} else if partial, ok := payload["doc"].(map[string]any); ok {
				f.docs[key] = partial
			}
			return
		}
		if partial, ok := payload["doc"].(map[string]any); ok {
			for field, value := range partial {
				doc[field] = value
			}
			return
		}
		if script, ok := payload["script"].(map[string]any); ok {
			scriptID, _ := script["id"].(string)
			params, _ := script["params"].(map[string]any)
			applyScript(doc, scriptID, params)
		}
	}
}

// applyScript mirrors the stored painless sources for the three merge
// scripts: dedup-append sub-items by their id field and recompute the
// aggregate from the merged set.
func applyScript(doc map[string]any, scriptID string, params map[string]any) {
	switch scriptID {
	case ScriptPostMeritsMerge:
		merged := mergeByID(asSlice(doc["merits"]), asSlice(params["merits"]), "merit_id")
		doc["merits"] = merged
		sum := 0.0
		for _, item := range merged {
			if entry, ok := item.(map[string]any); ok {
				if amount, ok := entry["amount"].(float64); ok {
					sum += amount
				}
			}
		}
		doc["merit_sum"] = sum
	case ScriptPostVersionsMerge:
		merged := mergeByID(asSlice(doc["versions"]), asSlice(params["versions"]), "version_id")
		doc["versions"] = merged
		doc["edit_count"] = float64(len(merged))
		deleted := false
		for _, item := range merged {
			if entry, ok := item.(map[string]any); ok {
				if entry["deleted"] == true {
					deleted = true
				}
			}
		}
		doc["deleted"] = deleted
	case ScriptPostStarterMerge:
		doc["topic_starter"] = true
	}
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// mergeByID appends only items whose id field value is not already present.
func mergeByID(existing, add []any, idField string) []any {
	seen := make(map[any]bool, len(existing))
	for _, item := range existing {
		if entry, ok := item.(map[string]any); ok {
			seen[entry[idField]] = true
		}
	}
	for _, item := range add {
		entry, ok := item.(map[string]any)
		if ok && seen[entry[idField]] {
			continue
		}
		existing = append(existing, item)
		if ok {
			seen[entry[idField]] = true
		}
	}
	return existing
}
