package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses",
	Long: `Lists recent analyses recorded in the local history database, newest first.
Records keep the summary and sentiment breakdown but not the comments.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of records")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output records as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history is disabled")
	}

	records, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if historyJSON {
		if records == nil {
			records = []domain.AnalysisRecord{}
		}
		return outputJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No analyses recorded yet.")
		return nil
	}

	cmd.Println(historyTable(records))
	return nil
}

func historyTable(records []domain.AnalysisRecord) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "VIDEO", "TITLE", "COMMENTS", "POSITIVE", "NEGATIVE")

	for i := range records {
		r := &records[i]
		t.Row(
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.VideoID,
			truncate(r.Title, 40),
			strconv.Itoa(r.CommentCount),
			fmt.Sprintf("%.1f%%", r.SentimentStats.Positive),
			fmt.Sprintf("%.1f%%", r.SentimentStats.Negative),
		)
	}

	return t.String()
}
