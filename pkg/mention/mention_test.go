package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Run("collapses duplicates", func(t *testing.T) {
		got := Set("hello @alice and @bob, @alice again")
		assert.Equal(t, map[string]struct{}{"alice": {}, "bob": {}}, got)
	})

	t.Run("keeps first occurrence order", func(t *testing.T) {
		assert.Equal(t, []string{"bob", "alice"}, Extract("@bob @alice @bob"))
	})

	t.Run("case sensitive", func(t *testing.T) {
		assert.Equal(t, []string{"Alice", "alice"}, Extract("@Alice @alice"))
	})

	t.Run("word characters only", func(t *testing.T) {
		assert.Equal(t, []string{"user_1", "dev"}, Extract("ping @user_1! cc @dev-team"))
	})

	t.Run("no mentions", func(t *testing.T) {
		assert.Empty(t, Extract("no one here, just an email-ish a@ b"))
		assert.Empty(t, Set(""))
	})

	t.Run("email address counts as a mention of the domain part", func(t *testing.T) {
		assert.Equal(t, []string{"example"}, Extract("mail me at me@example.com"))
	})
}
