package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
)

// ErrMiss is returned by a Store when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is the small key/value surface the decorator needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStore adapts a go-redis client to Store.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Products is a cache-aside decorator for single product lookups. Listing and
// counting go straight to the wrapped repository. Cache errors never fail a
// request; they are logged and the store is used directly.
type Products struct {
	repository.ProductRepository
	cache Store
	ttl   time.Duration
	log   zerolog.Logger
}

func NewProducts(repo repository.ProductRepository, cache Store, ttl time.Duration, log zerolog.Logger) *Products {
	return &Products{ProductRepository: repo, cache: cache, ttl: ttl, log: log}
}

var _ repository.ProductRepository = (*Products)(nil)

func productKey(id primitive.ObjectID) string {
	return fmt.Sprintf("product:%s", id.Hex())
}

func (p *Products) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	key := productKey(id)
	b, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		var prod domain.Product
		if jerr := json.Unmarshal(b, &prod); jerr == nil {
			return &prod, nil
		}
		p.log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		_ = p.cache.Del(ctx, key)
	case !errors.Is(err, ErrMiss):
		p.log.Warn().Err(err).Str("key", key).Msg("product cache read failed")
	}

	prod, err := p.ProductRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(prod); err == nil {
		if err := p.cache.Set(ctx, key, b, p.ttl); err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("product cache write failed")
		}
	}
	return prod, nil
}

func (p *Products) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	if err := p.ProductRepository.AdjustStock(ctx, id, delta); err != nil {
		return err
	}
	p.invalidate(ctx, id)
	if pend, ok := ctx.Value(pendingKey{}).(*pending); ok {
		pend.add(id)
	}
	return nil
}

func (p *Products) Create(ctx context.Context, prod *domain.Product) error {
	if err := p.ProductRepository.Create(ctx, prod); err != nil {
		return err
	}
	p.invalidate(ctx, prod.ID)
	return nil
}

func (p *Products) invalidate(ctx context.Context, id primitive.ObjectID) {
	if err := p.cache.Del(ctx, productKey(id)); err != nil {
		p.log.Warn().Err(err).Str("product", id.Hex()).Msg("product cache invalidation failed")
	}
}

type pendingKey struct{}

// pending collects the products written inside one transaction.
type pending struct {
	mu  sync.Mutex
	ids []primitive.ObjectID
}

func (p *pending) add(id primitive.ObjectID) {
	p.mu.Lock()
	p.ids = append(p.ids, id)
	p.mu.Unlock()
}

func (p *pending) take() []primitive.ObjectID {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := p.ids
	p.ids = nil
	return ids
}

// Tx wraps tx so that products whose stock moved inside a transaction are
// dropped from the cache again after it finishes. A lookup between the write
// and the commit reads the old stock and may cache it.
func (p *Products) Tx(tx repository.TxManager) repository.TxManager {
	return &txInvalidator{products: p, inner: tx}
}

type txInvalidator struct {
	products *Products
	inner    repository.TxManager
}

func (t *txInvalidator) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(pendingKey{}).(*pending); nested {
		return t.inner.WithTransaction(ctx, fn)
	}
	pend := &pending{}
	err := t.inner.WithTransaction(context.WithValue(ctx, pendingKey{}, pend), fn)
	seen := map[primitive.ObjectID]bool{}
	for _, id := range pend.take() {
		if !seen[id] {
			seen[id] = true
			t.products.invalidate(ctx, id)
		}
	}
	return err
}
