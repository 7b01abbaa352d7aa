package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

func TestExtensions(t *testing.T) {
	normaliser := New()
	assert.Equal(t, "markdown", normaliser.Name())
	assert.ElementsMatch(t, []string{".md", ".markdown"}, normaliser.Extensions())
}

func TestNormalise_StripsFormatting(t *testing.T) {
	input := "# Team Vitality\n\n" +
		"Remote teams need **energy** and *focus*.\n\n" +
		"- async rituals\n" +
		"1. weekly demos\n\n" +
		"> quoted insight\n\n" +
		"See [the guide](https://example.com/guide) and ![chart](chart.png).\n\n" +
		"---\n\n" +
		"```go\nfmt.Println(\"skip\")\n```\n" +
		"Use `drafter index` first."

	got, err := New().Normalise([]byte(input))

	require.NoError(t, err)
	assert.Contains(t, got, "Team Vitality")
	assert.Contains(t, got, "Remote teams need energy and focus.")
	assert.Contains(t, got, "async rituals")
	assert.Contains(t, got, "weekly demos")
	assert.Contains(t, got, "quoted insight")
	assert.Contains(t, got, "See the guide and .")
	assert.Contains(t, got, "Use drafter index first.")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "https://")
	assert.NotContains(t, got, "skip")
	assert.NotContains(t, got, "---")
}

func TestNormalise_CollapsesBlankLines(t *testing.T) {
	got, err := New().Normalise([]byte("one\n\n\n\n\ntwo"))

	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo", got)
}

func TestNormalise_RejectsBinary(t *testing.T) {
	_, err := New().Normalise([]byte{0xff, 0xfe})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
