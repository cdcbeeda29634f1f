package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosellea-backend/internal/repository"
)

func TestProductsSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryProducts(repository.NewMemoryStore())

	n, err := Products(ctx, repo, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(Catalogue()), n)

	total, err := repo.Count(ctx, repository.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, n, total)

	featured, err := repo.Count(ctx, repository.ProductFilter{ActiveOnly: true, Featured: true})
	require.NoError(t, err)
	assert.Positive(t, featured)

	// a second run leaves the catalogue alone
	n, err = Products(ctx, repo, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, n)
	again, err := repo.Count(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, total, again)
}

func TestCatalogueIsValid(t *testing.T) {
	titles := map[string]bool{}
	for _, p := range Catalogue() {
		assert.NoError(t, p.Normalize(), p.Title)
		assert.False(t, titles[p.Title], "duplicate %q", p.Title)
		titles[p.Title] = true
	}
}
