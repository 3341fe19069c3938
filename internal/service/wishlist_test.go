package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/repository"
)

func TestWishlistAddListRemove(t *testing.T) {
	db := newTestDB(t)
	svc := NewWishlistService(
		repository.NewWishlistRepository(db),
		repository.NewProductRepository(db),
	)
	seedProduct(t, db, 1, "24.00", 10)

	require.NoError(t, svc.Add(context.Background(), "alice", 1))
	assert.ErrorIs(t, svc.Add(context.Background(), "alice", 1), ErrWishlistLineExists)
	assert.ErrorIs(t, svc.Add(context.Background(), "alice", 99), ErrProductNotFound)

	products, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, uint(1), products[0].ID)

	require.NoError(t, svc.Remove(context.Background(), "alice", 1))
	assert.ErrorIs(t, svc.Remove(context.Background(), "alice", 1), ErrWishlistLineNotFound)

	products, err = svc.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, products)
}
