package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/drafter/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/services"
	"github.com/custodia-labs/drafter/internal/logger"
)

// stubGeneration is a mock implementation of driving.GenerationService.
type stubGeneration struct {
	result     *domain.GenerationResult
	err        error
	lastPrompt string
	lastOpts   domain.GenerationOptions
	state      domain.BreakerState
}

func (s *stubGeneration) Generate(
	_ context.Context,
	prompt string,
	opts domain.GenerationOptions,
) (*domain.GenerationResult, error) {
	s.lastPrompt = prompt
	s.lastOpts = opts
	return s.result, s.err
}

func (s *stubGeneration) BreakerState() domain.BreakerState { return s.state }

func (s *stubGeneration) ResetBreaker() { s.state = domain.BreakerState{Status: domain.BreakerClosed} }

// stubContext is a mock implementation of driving.ContextService.
type stubContext struct {
	result      *domain.GroundedResult
	err         error
	lastRequest domain.ContentRequest
}

func (s *stubContext) Assemble(_ string, _ int) domain.ContextBundle {
	return domain.ContextBundle{}
}

func (s *stubContext) Compose(_ context.Context, req domain.ContentRequest) (*domain.GroundedResult, error) {
	s.lastRequest = req
	return s.result, s.err
}

// testServices holds the services injected for one test.
type testServices struct {
	generation *stubGeneration
	context    *stubContext
	retrieval  *services.RetrievalService
	settings   *services.SettingsService
}

func noEnv(string) (string, bool) { return "", false }

// setupTestServices injects mocks for generation and context, and real
// in-memory retrieval and settings services.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	ts := &testServices{
		generation: &stubGeneration{
			result: &domain.GenerationResult{
				ID:               "req-1",
				Text:             "generated text",
				ProviderName:     "offline",
				ModelName:        "offline-synthesiser",
				PromptTokens:     3,
				CompletionTokens: 2,
				Attempts:         1,
			},
		},
		context:   &stubContext{},
		retrieval: services.NewRetrievalService(memory.NewRetrievalIndex(), memory.NewFragmentStore()),
		settings:  services.NewSettingsService(memory.NewConfigStore(), nil, services.WithEnvLookup(noEnv)),
	}

	SetServices(Services{
		Generation: ts.generation,
		Context:    ts.context,
		Retrieval:  ts.retrieval,
		Settings:   ts.settings,
	})
	t.Cleanup(func() {
		SetServices(Services{})
		resetFlags(rootCmd)
	})

	return ts
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and stdin and returns
// what was written to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// captureLog redirects package-level log output to a buffer for one test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetJSON(false)
		logger.SetOutput(os.Stderr)
	})
	return buf
}
