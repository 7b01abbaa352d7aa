// Package cli provides the drafter command line interface.
package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drafter/internal/core/ports/driving"
	"github.com/custodia-labs/drafter/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services injected by the composition root.
var (
	generationService driving.GenerationService
	contextService    driving.ContextService
	retrievalService  driving.RetrievalService
	settingsService   driving.SettingsService
	metricsHandler    http.Handler
	providerWarnings  []string
)

// Services holds the driving ports the commands use.
// Any field may be nil; commands that need a missing service fail with an error.
type Services struct {
	Generation driving.GenerationService
	Context    driving.ContextService
	Retrieval  driving.RetrievalService
	Settings   driving.SettingsService

	// Metrics serves Prometheus metrics when the MCP server is started with --metrics-addr.
	Metrics http.Handler

	// ProviderWarnings describe unconfigured providers; logged when --verbose is set.
	ProviderWarnings []string
}

// SetServices injects the services used by every command.
func SetServices(s Services) {
	generationService = s.Generation
	contextService = s.Context
	retrievalService = s.Retrieval
	settingsService = s.Settings
	metricsHandler = s.Metrics
	providerWarnings = s.ProviderWarnings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var (
	verboseFlag bool
	logJSONFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "drafter",
	Short: "Grounded content drafting with resilient LLM fallback",
	Long: `drafter indexes your notes, retrieves the passages relevant to a request,
and drafts cited content with the first LLM provider that answers.

Providers are tried in order (primary first, offline last) with retries,
exponential backoff and a circuit breaker.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetJSON(logJSONFlag)
		logger.SetVerbose(verboseFlag)
		for _, w := range providerWarnings {
			logger.Debug(w)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log every provider attempt to stderr")
	rootCmd.PersistentFlags().BoolVar(&logJSONFlag, "log-json", false, "write logs as JSON")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
