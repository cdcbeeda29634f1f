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

type Orders struct {
	coll *mongo.Collection
}

func NewOrders(db *mongo.Database) *Orders {
	return &Orders{coll: db.Collection("orders")}
}

var _ repository.OrderRepository = (*Orders)(nil)

func (r *Orders) Create(ctx context.Context, o *domain.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	_, err := r.coll.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *Orders) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *Orders) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user": userID})
}

func (r *Orders) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var o domain.Order
	err := r.coll.FindOne(ctx, filter).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *Orders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	out := make([]domain.Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return out, nil
}

func (r *Orders) SetStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus) (*domain.Order, error) {
	o, err := r.update(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}},
	)
	if !errors.Is(err, repository.ErrNotFound) {
		return o, err
	}
	// the filter missed: either the order is gone or its status moved on
	n, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, fmt.Errorf("set order status: %w", cerr)
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrConflict
}

func (r *Orders) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus) (*domain.Order, error) {
	return r.update(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now().UTC()}},
	)
}

func (r *Orders) update(ctx context.Context, filter, update bson.M) (*domain.Order, error) {
	var o domain.Order
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return &o, nil
}

func (r *Orders) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
