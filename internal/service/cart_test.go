package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/domain"
)

func TestCartAddMergesAndCaps(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, "Linen Top", 19.99, 10)
	user := primitive.NewObjectID()

	c, err := e.cart.AddItem(ctx, user, AddItemInput{ProductID: p.ID.Hex(), Quantity: 60, Size: "M", Color: "white"})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "/img/Linen Top.jpg", c.Items[0].Image)
	assert.Equal(t, 19.99, c.Items[0].Price)

	c, err = e.cart.AddItem(ctx, user, AddItemInput{ProductID: p.ID.Hex(), Quantity: 60, Size: "M", Color: "white"})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 99, c.Items[0].Quantity)

	c, err = e.cart.AddItem(ctx, user, AddItemInput{ProductID: p.ID.Hex(), Quantity: 1, Size: "S", Color: "white"})
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)

	view := NewCartView(c)
	assert.Equal(t, 100, view.ItemCount)
	assert.Equal(t, 1999.0, view.TotalAmount)

	// the stored cart matches what was returned
	stored, err := e.carts.FindByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, c.Items, stored.Items)
}

func TestCartAddRejects(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	user := primitive.NewObjectID()

	_, err := e.cart.AddItem(ctx, user, AddItemInput{Quantity: 1})
	requireKind(t, apperr.KindInvalidInput, err)

	p := e.product(t, "Tee", 10, 1)
	_, err = e.cart.AddItem(ctx, user, AddItemInput{ProductID: p.ID.Hex(), Quantity: 0})
	requireKind(t, apperr.KindInvalidInput, err)

	_, err = e.cart.AddItem(ctx, user, AddItemInput{ProductID: "xyz", Quantity: 1})
	requireKind(t, apperr.KindNotFound, err)
	_, err = e.cart.AddItem(ctx, user, AddItemInput{ProductID: primitive.NewObjectID().Hex(), Quantity: 1})
	requireKind(t, apperr.KindNotFound, err)

	hidden := &domain.Product{Title: "Gone", Price: 3, Category: "tops", Images: []string{"g.jpg"}}
	require.NoError(t, e.products.Create(ctx, hidden))
	_, err = e.cart.AddItem(ctx, user, AddItemInput{ProductID: hidden.ID.Hex(), Quantity: 1})
	requireKind(t, apperr.KindNotFound, err)
}

func TestCartUpdateItemClamps(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, "Tee", 10, 1)
	user := primitive.NewObjectID()

	_, err := e.cart.UpdateItem(ctx, user, primitive.NewObjectID().Hex(), 2)
	requireKind(t, apperr.KindNotFound, err)

	c, err := e.cart.AddItem(ctx, user, AddItemInput{ProductID: p.ID.Hex(), Quantity: 2})
	require.NoError(t, err)
	itemID := c.Items[0].ID.Hex()

	for in, want := range map[int]int{0: 1, -3: 1, 5: 5, 500: 99} {
		c, err = e.cart.UpdateItem(ctx, user, itemID, in)
		require.NoError(t, err)
		assert.Equal(t, want, c.Items[0].Quantity, "input %d", in)
	}

	_, err = e.cart.UpdateItem(ctx, user, primitive.NewObjectID().Hex(), 2)
	requireKind(t, apperr.KindNotFound, err)
}

func TestCartRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := e.product(t, "Tee", 10, 1)
	user := primitive.NewObjectID()

	_, err := e.cart.RemoveItem(ctx, user, primitive.NewObjectID().Hex())
	requireKind(t, apperr.KindNotFound, err)
	_, err = e.cart.Clear(ctx, user)
	requireKind(t, apperr.KindNotFound, err)

	c, err := e.cart.AddItem(ctx, user, AddItemInput{ProductID: p.ID.Hex(), Quantity: 1})
	require.NoError(t, err)

	c2, err := e.cart.RemoveItem(ctx, user, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Len(t, c2.Items, 1)

	c2, err = e.cart.RemoveItem(ctx, user, c.Items[0].ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, c2.Items)

	_, err = e.cart.AddItem(ctx, user, AddItemInput{ProductID: p.ID.Hex(), Quantity: 1})
	require.NoError(t, err)
	cleared, err := e.cart.Clear(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
	view := NewCartView(cleared)
	assert.Zero(t, view.ItemCount)
	assert.Zero(t, view.TotalAmount)
}
