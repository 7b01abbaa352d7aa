package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("llm.primary", "ollama"))
	require.NoError(t, store.Set("llm.max_retries", 4))
	require.NoError(t, store.Set("llm.openai.requests_per_second", 2.5))
	require.NoError(t, store.Set("logging.json", true))
	require.NoError(t, store.Set("index.paths", []string{"a.md", "b.md"}))

	assert.Equal(t, "ollama", store.GetString("llm.primary"))
	assert.Equal(t, 4, store.GetInt("llm.max_retries"))
	assert.InDelta(t, 2.5, store.GetFloat("llm.openai.requests_per_second"), 1e-9)
	assert.InDelta(t, 4.0, store.GetFloat("llm.max_retries"), 1e-9)
	assert.True(t, store.GetBool("logging.json"))
	assert.Equal(t, []string{"a.md", "b.md"}, store.GetStringSlice("index.paths"))

	// Wrong types read as zero values
	assert.Empty(t, store.GetString("llm.max_retries"))
	assert.Zero(t, store.GetInt("llm.primary"))
	assert.Zero(t, store.GetFloat("llm.primary"))
	assert.False(t, store.GetBool("llm.primary"))
	assert.Nil(t, store.GetStringSlice("llm.primary"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.openai.api_key", "sk-test"))
	require.NoError(t, store.Set("llm.openai.model", "gpt-4o-mini"))
	require.NoError(t, store.Set("llm.max_retries", int64(3)))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm.openai]")
	assert.NotContains(t, string(raw), `"llm.openai.api_key"`)

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", reloaded.GetString("llm.openai.api_key"))
	assert.Equal(t, "gpt-4o-mini", reloaded.GetString("llm.openai.model"))
	assert.Equal(t, 3, reloaded.GetInt("llm.max_retries"))
}

func TestConfigStore_ScalarTableCollision(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm", "scalar"))
	require.NoError(t, store.Set("llm.primary", "offline"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "scalar", reloaded.GetString("llm"))
	assert.Equal(t, "offline", reloaded.GetString("llm.primary"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.anthropic.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# comment only\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_Load_PicksUpExternalEdits(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("llm.primary", "openai"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[llm]\nprimary = \"anthropic\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "anthropic", store.GetString("llm.primary"))
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestConfigStore(t)
	require.NoError(t, store.Set("k", "v"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Save())
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newTestConfigStore(t)
	assert.Error(t, store.Set("channel", make(chan int)))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestConfigStore(t)
	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("llm.max_retries", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("llm.max_retries")
		}()
	}
	wg.Wait()
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a.b.c": 1,
		"a.d":   2,
		"e":     3,
	})

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": 2,
		},
		"e": 3,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": 2, "e": 3}, flattenMap(nested, ""))
}
