package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema_CreatesEverything(t *testing.T) {
	fake, client := newFakeIndex(t)

	require.NoError(t, client.EnsureSchema(context.Background(), PostsSchema()))

	assert.True(t, fake.indices[PostsIndex], "index created when absent")
	assert.True(t, fake.templates["posts-template"], "template put unconditionally")
	assert.True(t, fake.scripts[ScriptPostMeritsMerge])
	assert.True(t, fake.scripts[ScriptPostVersionsMerge])
	assert.True(t, fake.scripts[ScriptPostStarterMerge])
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	fake, client := newFakeIndex(t)
	ctx := context.Background()

	require.NoError(t, client.EnsureSchema(ctx, TopicsSchema()))
	require.NoError(t, client.EnsureSchema(ctx, TopicsSchema()), "re-running must not fail")
	assert.True(t, fake.indices[TopicsIndex])
}

func TestSchemas_CoverEveryIndexFamily(t *testing.T) {
	schemas := []Schema{
		PostsSchema(), TopicsSchema(), HistorySchema(), AddressesSchema(), BoardsSchema(),
	}

	seen := make(map[string]bool)
	for _, s := range schemas {
		assert.NotEmpty(t, s.Index)
		assert.NotEmpty(t, s.Template)
		assert.NotEmpty(t, s.Body)
		assert.False(t, seen[s.Index], "index names must be distinct")
		seen[s.Index] = true
	}
}
