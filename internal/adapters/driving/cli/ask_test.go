package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

func TestAskCmd_RequiresSessionAndQuestion(t *testing.T) {
	_, err := execute("ask", "sess-123")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestAskCmd_JoinsQuestionWords(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "sess-123", "what", "do", "people", "like?")

	require.NoError(t, err)
	assert.Equal(t, "sess-123", testSvc.analysis.lastSession)
	assert.Equal(t, "what do people like?", testSvc.analysis.lastQuestion)
	assert.Contains(t, out, "They like the topic.")
	assert.Contains(t, out, "Based on:")
	assert.Contains(t, out, "(0.87) Best video")
}

func TestAskCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "--json", "sess-123", "why?")

	require.NoError(t, err)
	var got domain.Answer
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "They like the topic.", got.Text)
	require.Len(t, got.Sources, 1)
}

func TestAskCmd_SessionNotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testSvc.analysis.err = domain.ErrSessionNotFound

	_, err := execute("ask", "missing", "why?")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
