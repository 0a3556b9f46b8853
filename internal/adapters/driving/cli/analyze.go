package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyse the comments of a YouTube video",
	Long: `Fetches the top-level comments of a video, scores their sentiment,
summarises the discussion and indexes the comments for follow-up questions.

The URL may be a watch, short, embed or youtu.be link, or a bare video ID.
The printed session ID can be passed to 'threadsense ask'.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput is the JSON shape of an analysis.
type analyzeOutput struct {
	SessionID string                 `json:"session_id"`
	Result    *domain.AnalysisResult `json:"result"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errNoAnalysisService
	}

	result, sessionID, err := analysisService.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return outputJSON(cmd, analyzeOutput{SessionID: sessionID, Result: result})
	}

	printResult(cmd, result, sessionID)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printResult(cmd *cobra.Command, result *domain.AnalysisResult, sessionID string) {
	video := result.Video
	cmd.Println(video.Title)
	if video.Channel != "" {
		cmd.Printf("%s · %d views\n", video.Channel, video.ViewCount)
	}
	if video.URL != "" {
		cmd.Println(video.URL)
	}
	cmd.Println()

	stats := result.SentimentStats
	cmd.Printf("Comments analysed: %d\n", stats.Total)
	cmd.Printf("Sentiment: %.1f%% positive, %.1f%% neutral, %.1f%% negative (average %.2f)\n",
		stats.Positive, stats.Neutral, stats.Negative, stats.AverageCompound)
	cmd.Println()

	cmd.Println("Summary:")
	cmd.Println(strings.TrimSpace(result.Summary))

	if len(result.TopComments) > 0 {
		cmd.Println()
		cmd.Println("Top comments:")
		for i, c := range result.TopComments {
			cmd.Printf("  [%d] %d likes, %s, %s\n", i+1, c.LikeCount, c.Sentiment.Label(), c.Author)
			cmd.Printf("      %s\n", truncate(flatten(c.Text), 200))
		}
	}

	if sessionID != "" {
		cmd.Println()
		cmd.Printf("Session: %s\n", sessionID)
		cmd.Printf("Ask a question with: threadsense ask %s \"your question\"\n", sessionID)
	}
}

// flatten collapses runs of whitespace, including newlines, to one space.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
