package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanContent(t *testing.T) {
	policy := bluemonday.StrictPolicy()

	got := CleanContent(policy, "<p>Hello</p><p>world &amp; <b>friends</b></p><script>alert(1)</script>")
	assert.Equal(t, "Hello world & friends", got)

	assert.Equal(t, "line one line two", CleanContent(policy, "line one<br>line two"))
	assert.Equal(t, "", CleanContent(policy, "   "))
}

func TestDecodeHitIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	hits := []map[string]any{
		{"id": a.String()},
		{"id": "garbage"},
		{"id": b.String(), "title": "ignored"},
	}

	ids, err := decodeHitIDs(hits)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}
