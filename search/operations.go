package search

import (
	"github.com/olivere/elastic/v7"
)

const (
	// mergeRetryOnConflict absorbs version conflicts between pipelines that
	// merge into the same document concurrently.
	mergeRetryOnConflict = 3
)

// Operation is one idempotent index write: either a full-document upsert for
// a document the pipeline owns, or a scripted partial merge contributing
// sub-items to a document owned by another pipeline.
type Operation struct {
	Index string
	DocID string

	// Upsert form.
	Doc any

	// Merge form.
	ScriptID string
	Params   map[string]any
	// Seed is indexed as-is when the target document does not exist yet, so
	// merges arriving before the owning pipeline still land somewhere
	// idempotent.
	Seed any
}

// UpsertOp builds a full-document upsert keyed by the entity's stable id.
func UpsertOp(index, docID string, doc any) Operation {
	return Operation{Index: index, DocID: docID, Doc: doc}
}

// MergeOp builds a scripted partial merge running the named stored script.
func MergeOp(index, docID, scriptID string, params map[string]any, seed any) Operation {
	return Operation{Index: index, DocID: docID, ScriptID: scriptID, Params: params, Seed: seed}
}

// IsMerge reports whether the operation is a scripted partial merge.
func (op Operation) IsMerge() bool {
	return op.ScriptID != ""
}

// request converts the operation into its bulk-endpoint form. Owner upserts
// use a partial-document update with doc-as-upsert so refreshing an edited
// record does not wipe sub-arrays contributed by sibling pipelines.
func (op Operation) request() elastic.BulkableRequest {
	if op.IsMerge() {
		return elastic.NewBulkUpdateRequest().
			Index(op.Index).
			Id(op.DocID).
			Script(elastic.NewScriptStored(op.ScriptID).Params(op.Params)).
			Upsert(op.Seed).
			RetryOnConflict(mergeRetryOnConflict)
	}
	return elastic.NewBulkUpdateRequest().
		Index(op.Index).
		Id(op.DocID).
		Doc(op.Doc).
		DocAsUpsert(true).
		RetryOnConflict(mergeRetryOnConflict)
}
