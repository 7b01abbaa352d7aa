package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

func TestFragmentStore_ReplaceSource(t *testing.T) {
	store := NewFragmentStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceSource(ctx, "b", []domain.Fragment{frag("b", 1, "two"), frag("b", 0, "one")}))
	require.NoError(t, store.ReplaceSource(ctx, "a", []domain.Fragment{frag("a", 0, "first")}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].Text)
	assert.Equal(t, "two", list[1].Text)
	assert.Equal(t, "first", list[2].Text)

	require.NoError(t, store.ReplaceSource(ctx, "b", []domain.Fragment{frag("b", 0, "replaced")}))
	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "replaced", list[0].Text, "replaced source keeps its position")
	assert.Equal(t, "first", list[1].Text)

	require.NoError(t, store.DeleteSource(ctx, "b"))
	require.NoError(t, store.ReplaceSource(ctx, "b", []domain.Fragment{frag("b", 0, "again")}))
	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "again", list[1].Text, "a deleted source starts over at the end")
}

func TestFragmentStore_ReplaceSource_Empty(t *testing.T) {
	store := NewFragmentStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceSource(ctx, "a", []domain.Fragment{frag("a", 0, "x")}))
	require.NoError(t, store.ReplaceSource(ctx, "a", nil))

	sources, err := store.Sources(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)

	err = store.ReplaceSource(ctx, "", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFragmentStore_DeleteAndClear(t *testing.T) {
	store := NewFragmentStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceSource(ctx, "a", []domain.Fragment{frag("a", 0, "x")}))
	require.NoError(t, store.ReplaceSource(ctx, "b", []domain.Fragment{frag("b", 0, "y")}))

	require.NoError(t, store.DeleteSource(ctx, "a"))
	assert.True(t, errors.Is(store.DeleteSource(ctx, "a"), domain.ErrNotFound))

	sources, _ := store.Sources(ctx)
	assert.Equal(t, []string{"b"}, sources)

	require.NoError(t, store.Clear(ctx))
	list, _ := store.List(ctx)
	assert.Empty(t, list)
	assert.NoError(t, store.Close())
}
