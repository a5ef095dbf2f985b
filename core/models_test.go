package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent("1abcDEF:12345")
	id2 := IDFromContent("1abcDEF:12345")
	id3 := IDFromContent("1abcDEF:12346")

	assert.Equal(t, id1, id2, "same content should produce the same ID")
	assert.NotEqual(t, id1, id3, "different content should produce different IDs")
	assert.NotEmpty(t, id1.String())
}

func TestAddressMention_DocID(t *testing.T) {
	m1 := &AddressMention{Address: "1abcDEF", PostID: 12345, MentionedAt: time.Now()}
	m2 := &AddressMention{Address: "1abcDEF", PostID: 12345, MentionedAt: time.Now().Add(time.Hour)}
	m3 := &AddressMention{Address: "1abcDEF", PostID: 12346}

	assert.Equal(t, m1.DocID(), m2.DocID(), "doc id must depend only on (address, post)")
	assert.NotEqual(t, m1.DocID(), m3.DocID())
}
