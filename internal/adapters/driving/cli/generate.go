package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/logger"
)

var (
	generateSystem      string
	generateModel       string
	generateTemperature float64
	generateJSON        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate text from a raw prompt",
	Long: `Sends a prompt through the provider chain and prints the first successful result.
Reads the prompt from stdin when no argument is given or the argument is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateSystem, "system", "s", domain.DefaultSystemPrompt, "system prompt")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "override the provider's model")
	generateCmd.Flags().Float64VarP(&generateTemperature, "temperature", "t", 0, "sampling temperature (0-2)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generationService == nil {
		return errors.New("generation service not configured")
	}

	prompt, err := promptArg(cmd, args)
	if err != nil {
		return err
	}

	opts := domain.GenerationOptions{
		SystemPrompt: generateSystem,
		Model:        generateModel,
	}
	if cmd.Flags().Changed("temperature") {
		t := generateTemperature
		opts.Temperature = &t
	}

	result, err := generationService.Generate(cmd.Context(), prompt, opts)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if generateJSON {
		return printJSON(cmd, result)
	}

	cmd.Println(result.Text)
	printFooter(cmd, result)
	return nil
}

// promptArg returns the prompt argument, reading stdin for "-" or no argument.
func promptArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}
	return prompt, nil
}

func printFooter(cmd *cobra.Command, r *domain.GenerationResult) {
	cmd.PrintErrf("\n-- %s/%s, %d attempt(s), %d tokens, $%.6f, %s\n",
		r.ProviderName, r.ModelName, r.Attempts, r.TotalTokens(), r.CostEstimate, r.Latency.Round(time.Millisecond))
	if logger.IsVerbose() && r.ID != "" {
		cmd.PrintErrf("-- request %s\n", r.ID)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
