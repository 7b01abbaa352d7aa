package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

var (
	composeQuery string
	composeTone  string
	composeTopK  int
	composeModel string
	composeJSON  bool
)

var composeCmd = &cobra.Command{
	Use:   "compose [task]",
	Short: "Draft cited content grounded in indexed notes",
	Long: `Retrieves the fragments most relevant to --query (or the task itself),
numbers them as context blocks and asks the provider chain to draft the task.
A Sources section listing the cited documents is appended when missing.

Examples:
  drafter compose "Write a LinkedIn post" --query "energy for remote teams"
  drafter compose "Short update on onboarding" --tone friendly --top-k 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeQuery, "query", "q", "", "retrieval query (default: the task)")
	composeCmd.Flags().StringVar(&composeTone, "tone", "", "tone of voice")
	composeCmd.Flags().IntVarP(&composeTopK, "top-k", "k", 0, "number of grounding fragments (default from settings)")
	composeCmd.Flags().StringVarP(&composeModel, "model", "m", "", "override the provider's model")
	composeCmd.Flags().BoolVar(&composeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	req := domain.ContentRequest{
		Task:    strings.Join(args, " "),
		Query:   composeQuery,
		Tone:    composeTone,
		TopK:    composeTopK,
		Options: domain.GenerationOptions{Model: composeModel},
	}

	result, err := contextService.Compose(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("compose failed: %w", err)
	}

	if composeJSON {
		return printJSON(cmd, result)
	}

	cmd.Println(result.Text)
	if !result.Grounded {
		cmd.PrintErrln("\nWarning: no indexed fragment matched; the draft is not grounded. Run 'drafter index <path>' first.")
	}
	printFooter(cmd, &result.GenerationResult)
	return nil
}
