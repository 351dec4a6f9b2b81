package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContentSafety(t *testing.T) {
	t.Run("clean input passes", func(t *testing.T) {
		issues := ValidateContentSafety("Jane Doe", "Login trouble", "Hello world, I cannot sign in.")
		assert.Empty(t, issues)
	})

	t.Run("script tag flagged", func(t *testing.T) {
		issues := ValidateContentSafety("Jane", "Help", "<script>alert(1)</script>")
		require.Len(t, issues, 1)
		assert.Equal(t, "Potential script injection detected.", issues[0])
	})

	t.Run("inline event handler flagged", func(t *testing.T) {
		issues := ValidateContentSafety("Jane", "Help", `<img src=x onerror=alert(1)>`)
		require.NotEmpty(t, issues)
		assert.Equal(t, "Potential script injection detected.", issues[0])
	})

	t.Run("sql keyword flagged", func(t *testing.T) {
		issues := ValidateContentSafety("Jane", "Help", "DROP TABLE users")
		require.Len(t, issues, 1)
		assert.Equal(t, "Potential SQL injection pattern detected.", issues[0])
	})

	t.Run("sql keyword must be whole word", func(t *testing.T) {
		issues := ValidateContentSafety("Jane", "Help", "I updated my dropdown selection")
		assert.Empty(t, issues)
	})

	t.Run("sql comment marker flagged", func(t *testing.T) {
		issues := ValidateContentSafety("Jane", "Help", "something -- or other")
		require.Len(t, issues, 1)
		assert.Equal(t, "Potential SQL injection pattern detected.", issues[0])
	})

	t.Run("emoji only flagged", func(t *testing.T) {
		issues := ValidateContentSafety("😀😀", "🎉", "😀😀")
		require.Len(t, issues, 1)
		assert.Equal(t, "Emoji-only content is not allowed.", issues[0])
	})

	t.Run("one alphanumeric field clears emoji check", func(t *testing.T) {
		issues := ValidateContentSafety("😀😀", "Help", "😀😀")
		assert.Empty(t, issues)
	})

	t.Run("issue ordering is script then sql then emoji", func(t *testing.T) {
		issues := ValidateContentSafety("<script>", "SELECT", "x")
		require.Len(t, issues, 2)
		assert.Equal(t, "Potential script injection detected.", issues[0])
		assert.Equal(t, "Potential SQL injection pattern detected.", issues[1])
	})
}
