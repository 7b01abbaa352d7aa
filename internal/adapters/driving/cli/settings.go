package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

var (
	providerAPIKey    string
	providerPromptKey bool
	providerModel     string
	providerBaseURL   string
	providerRPS       float64
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure LLM providers, the fallback chain and retrieval options.

Settings live in ~/.drafter/config.toml. OPENAI_API_KEY, ANTHROPIC_API_KEY,
OLLAMA_HOST, LLM_PRIMARY, LLM_TIMEOUT, LLM_MAX_RETRIES and
LLM_CIRCUIT_BREAKER_THRESHOLD override stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to choose and configure the primary provider.`,
	RunE:  runSettingsWizard,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [openai|anthropic|ollama]",
	Short: "Configure a provider",
	Long: `Configure one provider's connection.

Examples:
  drafter settings provider openai --prompt-key
  drafter settings provider ollama --base-url http://gpu-box:11434 --model mistral`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsProvider,
}

var settingsPrimaryCmd = &cobra.Command{
	Use:   "primary [provider]",
	Short: "Select the provider tried first",
	Long:  `Select the provider tried first. Pass "none" to use registration order.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsPrimary,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate [provider]",
	Short: "Validate settings and ping providers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsValidate,
}

func init() {
	settingsProviderCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "API key (hosted providers)")
	settingsProviderCmd.Flags().BoolVar(&providerPromptKey, "prompt-key", false, "read the API key from the terminal without echo")
	settingsProviderCmd.Flags().StringVar(&providerModel, "model", "", "model name (default: provider default)")
	settingsProviderCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "API base URL, or host address for ollama")
	settingsProviderCmd.Flags().Float64Var(&providerRPS, "rps", 0, "requests per second limit (0 = unlimited)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsPrimaryCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	o := settings.Orchestrator
	cmd.Println("[Orchestrator]")
	primary := "(registration order)"
	if o.Primary != "" {
		primary = o.Primary.Description()
	}
	cmd.Printf("  Primary: %s\n", primary)
	cmd.Printf("  Max retries: %d\n", o.MaxRetries)
	cmd.Printf("  Backoff unit: %s\n", o.BackoffUnit)
	cmd.Printf("  Timeout: %s\n", o.Timeout)
	cmd.Printf("  Breaker: %d failures, cooldown %s\n", o.BreakerThreshold, o.BreakerCooldown)
	cmd.Println()

	for _, kind := range domain.AllProviders() {
		p := settings.Provider(kind)
		cmd.Printf("[%s]\n", kind.Description())
		cmd.Printf("  Model: %s\n", p.Model)
		if kind.IsLocal() {
			cmd.Printf("  Host: %s\n", p.BaseURL)
		} else if p.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", p.BaseURL)
		}
		if kind.RequiresAPIKey() {
			if p.APIKey != "" {
				cmd.Printf("  API Key: %s\n", maskAPIKey(p.APIKey))
			} else {
				cmd.Printf("  API Key: (not set)\n")
			}
		}
		if p.RequestsPerSecond > 0 {
			cmd.Printf("  Rate limit: %g req/s\n", p.RequestsPerSecond)
		}
		status := "configured"
		if !settings.IsConfigured(kind) {
			status = "not configured (skipped)"
		}
		cmd.Printf("  Status: %s\n", status)
		cmd.Println()
	}

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", r.TopK)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", r.ChunkSize, r.ChunkOverlap)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'drafter settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	kind, err := parseProviderArg(args[0])
	if err != nil {
		return err
	}
	if kind == domain.ProviderOffline {
		return errors.New("the offline provider needs no configuration")
	}

	apiKey := providerAPIKey
	if providerPromptKey {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin())
		cmd.Println()
	}

	provider := domain.ProviderSettings{
		Model:             providerModel,
		BaseURL:           providerBaseURL,
		APIKey:            apiKey,
		RequestsPerSecond: providerRPS,
	}
	if err := settingsService.SetProvider(kind, provider); err != nil {
		return fmt.Errorf("failed to configure %s: %w", kind, err)
	}

	cmd.Printf("%s configured.\n", kind.Description())
	return nil
}

func runSettingsPrimary(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var kind domain.ProviderKind
	if !strings.EqualFold(args[0], "none") {
		k, err := parseProviderArg(args[0])
		if err != nil {
			return err
		}
		kind = k
	}

	if err := settingsService.SetPrimary(kind); err != nil {
		return fmt.Errorf("failed to set primary provider: %w", err)
	}

	if kind == "" {
		cmd.Println("Primary provider cleared; providers are tried in registration order.")
	} else {
		cmd.Printf("Primary provider set to: %s\n", kind.Description())
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	kinds := domain.AllProviders()
	if len(args) == 1 {
		kind, err := parseProviderArg(args[0])
		if err != nil {
			return err
		}
		kinds = []domain.ProviderKind{kind}
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	failed := 0
	for _, kind := range kinds {
		cmd.Printf("  %-10s ", kind)
		if !settings.IsConfigured(kind) {
			cmd.Println("skipped (not configured)")
			continue
		}
		if err := settingsService.ValidateProviderConfig(kind); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			failed++
			continue
		}
		cmd.Println("OK")
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d provider(s) failed validation", failed)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Drafter Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	// Step 1: Primary provider
	cmd.Println("Step 1: Select Primary Provider")
	cmd.Println("-------------------------------")
	providers := domain.AllProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	// Step 2: Connection
	if selected != domain.ProviderOffline {
		cmd.Println()
		cmd.Println("Step 2: Configure Provider")
		cmd.Println("--------------------------")
		if err := configureProvider(cmd, reader, selected); err != nil {
			return err
		}
	}

	if err := settingsService.SetPrimary(selected); err != nil {
		return fmt.Errorf("failed to set primary provider: %w", err)
	}
	cmd.Printf("Primary provider set to: %s\n", selected.Description())
	return nil
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, kind domain.ProviderKind) error {
	defaultModel := domain.DefaultModels()[kind]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)

	var provider domain.ProviderSettings
	provider.Model = model

	if kind.IsLocal() {
		cmd.Printf("Enter host [%s]: ", domain.DefaultOllamaHost)
		provider.BaseURL = readLine(reader)
	}
	if kind.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		provider.APIKey = readSecret(reader)
		cmd.Println()
		if provider.APIKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetProvider(kind, provider); err != nil {
		return fmt.Errorf("failed to configure %s: %w", kind, err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateProviderConfig(kind); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		cmd.Println("The provider will be skipped until it is reachable; calls fall back to the next provider.")
		return nil
	}
	cmd.Println("OK")
	return nil
}

// Helper functions.

func parseProviderArg(s string) (domain.ProviderKind, error) {
	kind, err := domain.ParseProviderKind(strings.ToLower(s))
	if err != nil || kind == "" {
		return "", fmt.Errorf("unknown provider %q (want openai, anthropic, ollama or offline)", s)
	}
	return kind, nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when stdin is a terminal, else from reader.
func readSecret(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func readPassword(in io.Reader) string {
	return readSecret(bufio.NewReader(in))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
