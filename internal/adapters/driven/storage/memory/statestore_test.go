package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	require.NoError(t, s.Set(ctx, "projects", []string{"a"}))

	var got []string
	require.NoError(t, driven.GetAs(ctx, s, "projects", &got))
	assert.Equal(t, []string{"a"}, got)

	require.NoError(t, s.Delete(ctx, "projects"))
	_, err := s.Get(ctx, "projects")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRemovesDescendants(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	require.NoError(t, s.Set(ctx, "summaries.p1", "root"))
	require.NoError(t, s.Set(ctx, "summaries.p1.overall", "detail"))
	require.NoError(t, s.Set(ctx, "summaries.p2.overall", "other"))

	require.NoError(t, s.Delete(ctx, "summaries.p1"))

	_, err := s.Get(ctx, "summaries.p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(ctx, "summaries.p1.overall")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var kept string
	require.NoError(t, driven.GetAs(ctx, s, "summaries.p2.overall", &kept))
	assert.Equal(t, "other", kept)
}

func TestValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	value := map[string]int{"n": 1}
	require.NoError(t, s.Set(ctx, "k", value))
	value["n"] = 2

	var got map[string]int
	require.NoError(t, driven.GetAs(ctx, s, "k", &got))
	assert.Equal(t, 1, got["n"], "stored value must not alias the caller's map")
}
