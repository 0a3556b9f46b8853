package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [session] [question]",
	Short: "Ask a question about an analysed video",
	Long: `Answers a question from the video summary and the comments most similar
to it. The session must still be live in the session store.

Sessions held in memory only live as long as the process that created them,
so use the valkey session backend to ask from a separate invocation.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errNoAnalysisService
	}

	sessionID := args[0]
	question := strings.Join(args[1:], " ")

	answer, err := analysisService.Answer(cmd.Context(), sessionID, question)
	if err != nil {
		return fmt.Errorf("question failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(strings.TrimSpace(answer.Text))
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Based on:")
		for _, src := range answer.Sources {
			cmd.Printf("  (%.2f) %s\n", src.Similarity, truncate(flatten(src.Comment.Text), 160))
		}
	}
	return nil
}
