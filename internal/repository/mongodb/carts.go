package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

type Carts struct {
	coll *mongo.Collection
}

func NewCarts(db *mongo.Database) *Carts {
	return &Carts{coll: db.Collection("carts")}
}

var _ repository.CartRepository = (*Carts)(nil)

func (r *Carts) FindByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	var c domain.Cart
	err := r.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &c, nil
}

// GetOrCreate upserts on the unique user index. Two racing upserts can both
// miss and one then fails with a duplicate key; that one re-reads.
func (r *Carts) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"user":      userID,
		"items":     bson.A{},
		"createdAt": now,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var c domain.Cart
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&c)
	if mongo.IsDuplicateKeyError(err) {
		return r.FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &c, nil
}

func (r *Carts) SaveItems(ctx context.Context, c *domain.Cart) error {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	now := time.Now().UTC()
	if err := r.setItems(ctx, c.User, items, now); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

func (r *Carts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	return r.setItems(ctx, userID, []domain.CartItem{}, time.Now().UTC())
}

func (r *Carts) setItems(ctx context.Context, userID primitive.ObjectID, items []domain.CartItem, now time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
