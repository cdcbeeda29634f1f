package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

type Products struct {
	coll *mongo.Collection
}

func NewProducts(db *mongo.Database) *Products {
	return &Products{coll: db.Collection("products")}
}

var _ repository.ProductRepository = (*Products)(nil)

func (r *Products) Create(ctx context.Context, p *domain.Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Products) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *Products) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	cur, err := r.coll.Find(ctx, productQuery(f), findOptions(f))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	out := make([]domain.Product, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return out, nil
}

func (r *Products) Count(ctx context.Context, f repository.ProductFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, productQuery(f))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// AdjustStock is a single conditional $inc; decrements only match while stock
// covers them.
func (r *Products) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrInsufficientStock
}

func productQuery(f repository.ProductFilter) bson.M {
	q := bson.M{}
	if f.ActiveOnly {
		q["isActive"] = true
	}
	if f.Category != "" {
		q["category"] = strings.ToLower(string(f.Category))
	}
	if f.NewArrivals {
		q["isNewArrival"] = true
	}
	if f.Featured {
		q["isFeatured"] = true
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q["$text"] = bson.M{"$search": s}
	}
	return q
}

func findOptions(f repository.ProductFilter) *options.FindOptions {
	opts := options.Find()
	if f.Search != "" && len(f.Sort) == 0 {
		score := bson.M{"$meta": "textScore"}
		opts.SetProjection(bson.M{"score": score})
		opts.SetSort(bson.D{{Key: "score", Value: score}, {Key: "_id", Value: 1}})
	} else {
		sort := bson.D{}
		for _, s := range f.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		sort = append(sort, bson.E{Key: "_id", Value: 1})
		opts.SetSort(sort)
	}
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return opts
}
