package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

func TestAnalyzeCmd_Use(t *testing.T) {
	assert.Equal(t, "analyze [url]", analyzeCmd.Use)
	assert.Equal(t, "Analyse the comments of a YouTube video", analyzeCmd.Short)
}

func TestAnalyzeCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute("analyze")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAnalyzeCmd_HasJSONFlag(t *testing.T) {
	flag := analyzeCmd.Flags().Lookup("json")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestAnalyzeCmd_PrintsResult(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("analyze", "https://youtu.be/dQw4w9WgXcQ")

	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", testSvc.analysis.lastURL)
	assert.Contains(t, out, "Test Video")
	assert.Contains(t, out, "Test Channel · 1000 views")
	assert.Contains(t, out, "Comments analysed: 2")
	assert.Contains(t, out, "50.0% positive, 50.0% neutral, 0.0% negative")
	assert.Contains(t, out, "Viewers enjoyed the video.")
	assert.Contains(t, out, "[1] 42 likes, positive, alice")
	assert.Contains(t, out, "Best video on the topic")
	assert.Contains(t, out, "Session: sess-123")
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("analyze", "--json", "dQw4w9WgXcQ")

	require.NoError(t, err)
	var got struct {
		SessionID string                `json:"session_id"`
		Result    domain.AnalysisResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "sess-123", got.SessionID)
	assert.Equal(t, "Test Video", got.Result.Video.Title)
	assert.Len(t, got.Result.Comments, 2)
}

func TestAnalyzeCmd_Error(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testSvc.analysis.err = domain.ErrInvalidURL

	_, err := execute("analyze", "not a url")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.Contains(t, err.Error(), "analysis failed")
}

func TestAnalyzeCmd_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	SetServices(nil)

	_, err := execute("analyze", "dQw4w9WgXcQ")

	assert.ErrorIs(t, err, errNoAnalysisService)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "a b c", flatten("  a\n\nb\t c "))
}
