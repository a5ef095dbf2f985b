package search

// Index, template and stored-script names. Script names carry a version
// suffix; changing merge semantics means a new script id, not an in-place
// edit.
const (
	PostsIndex     = "posts"
	TopicsIndex    = "topics"
	HistoryIndex   = "posts_history"
	AddressesIndex = "addresses"
	BoardsIndex    = "boards"

	ScriptPostMeritsMerge   = "post-merits-merge-v1"
	ScriptPostVersionsMerge = "post-versions-merge-v1"
	ScriptPostStarterMerge  = "post-starter-merge-v1"
)

// postMeritsMergeSource appends only merits whose id is not already present,
// then recomputes the merit sum from the merged set, so re-applying the same
// contribution is a no-op.
const postMeritsMergeSource = `
if (ctx._source.merits == null) { ctx._source.merits = []; }
for (item in params.merits) {
  boolean exists = false;
  for (cur in ctx._source.merits) {
    if (cur.merit_id == item.merit_id) { exists = true; break; }
  }
  if (!exists) { ctx._source.merits.add(item); }
}
int sum = 0;
for (cur in ctx._source.merits) { sum += cur.amount; }
ctx._source.merit_sum = sum;
`

// postVersionsMergeSource appends only unseen versions and recomputes the
// edit count and deleted flag from the merged set.
const postVersionsMergeSource = `
if (ctx._source.versions == null) { ctx._source.versions = []; }
for (item in params.versions) {
  boolean exists = false;
  for (cur in ctx._source.versions) {
    if (cur.version_id == item.version_id) { exists = true; break; }
  }
  if (!exists) { ctx._source.versions.add(item); }
}
ctx._source.edit_count = ctx._source.versions.size();
boolean deleted = false;
for (cur in ctx._source.versions) { if (cur.deleted == true) { deleted = true; } }
ctx._source.deleted = deleted;
`

// postStarterMergeSource marks a post as its topic's first post. Setting a
// flag is trivially idempotent.
const postStarterMergeSource = `
ctx._source.topic_starter = true;
`

const postsTemplateBody = `{
	"index_patterns": ["posts"],
	"settings": {"number_of_shards": 1},
	"mappings": {
		"properties": {
			"post_id": {"type": "long"},
			"topic_id": {"type": "long"},
			"board_id": {"type": "long"},
			"author": {"type": "keyword"},
			"author_uid": {"type": "long"},
			"title": {"type": "text"},
			"content": {"type": "text"},
			"content_without_quotes": {"type": "text"},
			"quotes": {
				"type": "nested",
				"properties": {
					"author": {"type": "keyword"},
					"content": {"type": "text"},
					"topic_id": {"type": "long"},
					"post_id": {"type": "long"}
				}
			},
			"urls": {"type": "keyword"},
			"image_urls": {"type": "keyword"},
			"date": {"type": "date"},
			"archived": {"type": "boolean"},
			"topic_starter": {"type": "boolean"},
			"merits": {
				"type": "nested",
				"properties": {
					"merit_id": {"type": "long"},
					"amount": {"type": "integer"},
					"sender_uid": {"type": "long"},
					"date": {"type": "date"}
				}
			},
			"merit_sum": {"type": "integer"},
			"versions": {
				"type": "nested",
				"properties": {
					"version_id": {"type": "long"},
					"title": {"type": "text"},
					"content": {"type": "text"},
					"date": {"type": "date"},
					"deleted": {"type": "boolean"}
				}
			},
			"edit_count": {"type": "integer"},
			"deleted": {"type": "boolean"}
		}
	}
}`

const topicsTemplateBody = `{
	"index_patterns": ["topics"],
	"settings": {"number_of_shards": 1},
	"mappings": {
		"properties": {
			"topic_id": {"type": "long"},
			"first_post_id": {"type": "long"},
			"board_id": {"type": "long"},
			"author": {"type": "keyword"},
			"author_uid": {"type": "long"},
			"title": {"type": "text"},
			"date": {"type": "date"}
		}
	}
}`

const historyTemplateBody = `{
	"index_patterns": ["posts_history"],
	"settings": {"number_of_shards": 1},
	"mappings": {
		"properties": {
			"version_id": {"type": "long"},
			"post_id": {"type": "long"},
			"topic_id": {"type": "long"},
			"board_id": {"type": "long"},
			"author": {"type": "keyword"},
			"author_uid": {"type": "long"},
			"title": {"type": "text"},
			"content": {"type": "text"},
			"content_without_quotes": {"type": "text"},
			"date": {"type": "date"},
			"deleted": {"type": "boolean"}
		}
	}
}`

const addressesTemplateBody = `{
	"index_patterns": ["addresses"],
	"settings": {"number_of_shards": 1},
	"mappings": {
		"properties": {
			"address": {"type": "keyword"},
			"coin": {"type": "keyword"},
			"post_id": {"type": "long"},
			"topic_id": {"type": "long"},
			"board_id": {"type": "long"},
			"author": {"type": "keyword"},
			"author_uid": {"type": "long"},
			"date": {"type": "date"}
		}
	}
}`

const boardsTemplateBody = `{
	"index_patterns": ["boards"],
	"settings": {"number_of_shards": 1},
	"mappings": {
		"properties": {
			"board_id": {"type": "long"},
			"name": {"type": "keyword"},
			"parent_id": {"type": "long"}
		}
	}
}`

// PostsSchema is the posts index family, including every merge script other
// pipelines use to contribute into post documents.
func PostsSchema() Schema {
	return Schema{
		Index:    PostsIndex,
		Template: "posts-template",
		Body:     postsTemplateBody,
		Scripts: map[string]string{
			ScriptPostMeritsMerge:   postMeritsMergeSource,
			ScriptPostVersionsMerge: postVersionsMergeSource,
			ScriptPostStarterMerge:  postStarterMergeSource,
		},
	}
}

// TopicsSchema is the topics index family.
func TopicsSchema() Schema {
	return Schema{Index: TopicsIndex, Template: "topics-template", Body: topicsTemplateBody}
}

// HistorySchema is the edit-history index family.
func HistorySchema() Schema {
	return Schema{Index: HistoryIndex, Template: "posts-history-template", Body: historyTemplateBody}
}

// AddressesSchema is the address-mentions index family.
func AddressesSchema() Schema {
	return Schema{Index: AddressesIndex, Template: "addresses-template", Body: addressesTemplateBody}
}

// BoardsSchema is the boards index family.
func BoardsSchema() Schema {
	return Schema{Index: BoardsIndex, Template: "boards-template", Body: boardsTemplateBody}
}
