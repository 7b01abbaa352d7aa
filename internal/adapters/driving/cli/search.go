package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed fragments",
	Long: `Ranks indexed fragments by term-frequency cosine similarity to the query.
Only fragments sharing at least one word with the query are returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	results, err := retrievalService.Search(cmd.Context(), strings.Join(args, " "), searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}

	outputSearchTable(cmd, results)
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RankedFragment) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		// Format: [N] source#sequence (score)
		cmd.Printf("  [%d] %s#%d (%.2f)\n", i+1, r.Fragment.SourceID, r.Fragment.Sequence, r.Score)
		cmd.Printf("      %s\n", snippet(r.Fragment.Text, 160))
		cmd.Println()
	}
}

// snippet collapses whitespace and truncates text to n characters.
func snippet(text string, n int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
