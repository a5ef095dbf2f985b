package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteExample = `<div class="quoteheader"><a href="https://forum.example/index.php?topic=10.msg20#msg20">Quote from: alice on January 01, 2024, 10:15:03 AM</a></div><div class="quote">hello</div>hi alice`

func TestTransform_QuoteExtraction(t *testing.T) {
	result := NewTransformer().Transform(quoteExample)

	require.Len(t, result.Quotes, 1)
	q := result.Quotes[0]
	assert.Equal(t, "alice", q.Author)
	assert.Equal(t, "hello", q.Content)
	require.NotNil(t, q.TopicID)
	require.NotNil(t, q.PostID)
	assert.EqualValues(t, 10, *q.TopicID)
	assert.EqualValues(t, 20, *q.PostID)

	assert.Contains(t, result.ContentWithoutQuotes, "hi alice")
	assert.NotContains(t, result.ContentWithoutQuotes, "hello")
	assert.NotContains(t, result.ContentWithoutQuotes, "Quote from")
}

func TestTransform_MalformedLinkTolerated(t *testing.T) {
	raw := `<div class="quoteheader"><a href="https://elsewhere.example/page">Quote from: bob on March 02, 2023, 01:00:00 PM</a></div><div class="quote">borrowed words</div>my reply`

	result := NewTransformer().Transform(raw)

	require.Len(t, result.Quotes, 1, "off-platform quote link must still yield a quote")
	q := result.Quotes[0]
	assert.Equal(t, "bob", q.Author)
	assert.Equal(t, "borrowed words", q.Content)
	assert.Nil(t, q.TopicID)
	assert.Nil(t, q.PostID)
	assert.Contains(t, result.ContentWithoutQuotes, "my reply")
}

func TestTransform_HeaderWithoutLinkSkipped(t *testing.T) {
	raw := `<div class="quoteheader">Quote</div><div class="quote">unattributed</div>own prose`

	result := NewTransformer().Transform(raw)

	assert.Empty(t, result.Quotes, "headers that reference no post are skipped")
	assert.Contains(t, result.ContentWithoutQuotes, "own prose")
	assert.NotContains(t, result.ContentWithoutQuotes, "unattributed",
		"the quoted span is still stripped from the author's prose")
}

func TestTransform_NestedQuotesDoNotDuplicate(t *testing.T) {
	raw := `<div class="quoteheader"><a href="?topic=5.msg8#msg8">Quote from: carol on June 10, 2022, 09:00:00 AM</a></div>` +
		`<div class="quote">outer before` +
		`<div class="quoteheader"><a href="?topic=5.msg3#msg3">Quote from: dave on June 09, 2022, 08:00:00 AM</a></div>` +
		`<div class="quote">inner text</div>` +
		`outer after</div>closing prose`

	result := NewTransformer().Transform(raw)

	require.Len(t, result.Quotes, 2, "outer and nested quote each get their own entry")

	outer, inner := result.Quotes[0], result.Quotes[1]
	assert.Equal(t, "carol", outer.Author)
	assert.Contains(t, outer.Content, "outer before")
	assert.Contains(t, outer.Content, "outer after")
	assert.NotContains(t, outer.Content, "inner text", "nested text must not leak into the outer quote")

	assert.Equal(t, "dave", inner.Author)
	assert.Equal(t, "inner text", inner.Content)
	require.NotNil(t, inner.PostID)
	assert.EqualValues(t, 3, *inner.PostID)

	assert.Equal(t, "closing prose", result.ContentWithoutQuotes)
}

func TestTransform_LineBreaksNormalized(t *testing.T) {
	raw := `<div class="quoteheader"><a href="?topic=9.msg9#msg9">Quote from: erin on May 05, 2021, 05:00:00 AM</a></div><div class="quote">line one<br>line two<br/>line three</div>after`

	result := NewTransformer().Transform(raw)

	require.Len(t, result.Quotes, 1)
	assert.Equal(t, "line one line two line three", result.Quotes[0].Content)
}

func TestTransform_HeaderWithoutBody(t *testing.T) {
	raw := `<div class="quoteheader"><a href="?topic=4.msg7#msg7">Quote from: frank on April 04, 2020, 04:00:00 AM</a></div>no block followed`

	result := NewTransformer().Transform(raw)

	require.Len(t, result.Quotes, 1)
	assert.Equal(t, "", result.Quotes[0].Content)
}

func TestParseQuoteAuthor(t *testing.T) {
	tests := []struct {
		label  string
		author string
		ok     bool
	}{
		{"Quote from: alice on January 01, 2024, 10:15:03 AM", "alice", true},
		{"Quote from: the man on the moon on May 01, 2023, 11:00:00 PM", "the man on the moon", true},
		{"Quote from: bob", "bob", true},
		{"Quote", "", false},
		{"Quote from: ", "", false},
		{"something else entirely", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			author, ok := parseQuoteAuthor(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.author, author)
		})
	}
}

func TestParseQuoteTarget(t *testing.T) {
	t.Run("full target", func(t *testing.T) {
		topicID, postID := parseQuoteTarget("https://forum.example/index.php?topic=123.msg456#msg456")
		require.NotNil(t, topicID)
		require.NotNil(t, postID)
		assert.EqualValues(t, 123, *topicID)
		assert.EqualValues(t, 456, *postID)
	})

	t.Run("topic without fragment", func(t *testing.T) {
		topicID, postID := parseQuoteTarget("?topic=123.0")
		require.NotNil(t, topicID)
		assert.EqualValues(t, 123, *topicID)
		assert.Nil(t, postID)
	})

	t.Run("no topic parameter", func(t *testing.T) {
		topicID, postID := parseQuoteTarget("https://elsewhere.example/thing#msgnotanumber")
		assert.Nil(t, topicID)
		assert.Nil(t, postID)
	})

	t.Run("unparseable href", func(t *testing.T) {
		topicID, postID := parseQuoteTarget("://bad")
		assert.Nil(t, topicID)
		assert.Nil(t, postID)
	})
}
