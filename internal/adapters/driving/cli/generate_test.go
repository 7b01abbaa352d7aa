package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

func TestGenerateCmd_Flags(t *testing.T) {
	assert.Equal(t, "generate [prompt]", generateCmd.Use)

	flag := generateCmd.Flags().Lookup("system")
	require.NotNil(t, flag)
	assert.Equal(t, "s", flag.Shorthand)
	assert.Equal(t, domain.DefaultSystemPrompt, flag.DefValue)

	flag = generateCmd.Flags().Lookup("temperature")
	require.NotNil(t, flag)
	assert.Equal(t, "t", flag.Shorthand)
}

func TestGenerateCmd_PrintsTextAndFooter(t *testing.T) {
	ts := setupTestServices(t)

	stdout, stderr, err := executeCommand(t, "", "generate", "hello world")

	require.NoError(t, err)
	assert.Contains(t, stdout, "generated text")
	assert.Contains(t, stderr, "offline/offline-synthesiser, 1 attempt(s), 5 tokens")
	assert.NotContains(t, stderr, "-- request")
	assert.Equal(t, "hello world", ts.generation.lastPrompt)
	assert.Equal(t, domain.DefaultSystemPrompt, ts.generation.lastOpts.SystemPrompt)
	assert.Nil(t, ts.generation.lastOpts.Temperature)
}

func TestGenerateCmd_VerbosePrintsRequestID(t *testing.T) {
	setupTestServices(t)
	captureLog(t)

	_, stderr, err := executeCommand(t, "", "--verbose", "generate", "hello world")

	require.NoError(t, err)
	assert.Contains(t, stderr, "-- request req-1")
}

func TestGenerateCmd_ReadsStdin(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no argument", args: []string{"generate"}},
		{name: "dash argument", args: []string{"generate", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServices(t)

			_, _, err := executeCommand(t, "  prompt from stdin \n", tt.args...)

			require.NoError(t, err)
			assert.Equal(t, "prompt from stdin", ts.generation.lastPrompt)
		})
	}
}

func TestGenerateCmd_EmptyStdin(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "   \n", "generate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt is empty")
}

func TestGenerateCmd_PassesOptions(t *testing.T) {
	ts := setupTestServices(t)

	_, _, err := executeCommand(t, "",
		"generate", "--system", "Be terse.", "--model", "gpt-4o", "--temperature", "0.3", "hi")

	require.NoError(t, err)
	opts := ts.generation.lastOpts
	assert.Equal(t, "Be terse.", opts.SystemPrompt)
	assert.Equal(t, "gpt-4o", opts.Model)
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.3, *opts.Temperature, 1e-9)
}

func TestGenerateCmd_JSON(t *testing.T) {
	setupTestServices(t)

	stdout, _, err := executeCommand(t, "", "generate", "--json", "hi")

	require.NoError(t, err)
	var got domain.GenerationResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "req-1", got.ID)
	assert.Equal(t, "offline", got.ProviderName)
}

func TestGenerateCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.generation.err = domain.ErrCircuitOpen

	_, _, err := executeCommand(t, "", "generate", "hi")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.Contains(t, err.Error(), "generation failed")
}

func TestGenerateCmd_NotConfigured(t *testing.T) {
	setupTestServices(t)
	SetServices(Services{})

	_, _, err := executeCommand(t, "", "generate", "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation service not configured")
}
