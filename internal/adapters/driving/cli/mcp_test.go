package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)

	flag = mcpServeCmd.Flags().Lookup("metrics-addr")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
}

func TestMCPServeCmd_RequiresRetrieval(t *testing.T) {
	setupTestServices(t)
	SetServices(Services{})

	_, _, err := executeCommand(t, "", "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service")
}

func TestMCPServeCmd_MetricsNotConfigured(t *testing.T) {
	setupTestServices(t)

	_, _, err := executeCommand(t, "", "mcp", "serve", "--metrics-addr", "localhost:0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics not configured")
}
