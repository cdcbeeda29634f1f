package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	connectAttempts = 5
	connectBackoff  = 5 * time.Second
)

// ClientOptions returns the driver settings used for every deployment.
func ClientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetSocketTimeout(45 * time.Second).
		SetMaxPoolSize(10).
		SetMinPoolSize(0).
		SetMaxConnIdleTime(5 * time.Second).
		SetHeartbeatInterval(10 * time.Second).
		SetRetryWrites(true).
		SetWriteConcern(writeconcern.Majority())
}

// Connect dials MongoDB and pings the primary, retrying a few times before giving up.
func Connect(ctx context.Context, uri string, log zerolog.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("MONGODB_URI is not set")
	}
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := dial(ctx, uri)
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("mongodb connected")
			return client, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("of", connectAttempts).Msg("mongodb connection failed")
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("connect mongodb after %d attempts: %w", connectAttempts, lastErr)
}

func dial(ctx context.Context, uri string) (*mongo.Client, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, ClientOptions(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Store owns the client handle and hands out repositories bound to one database.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

func NewStore(client *mongo.Client, database string, transactions bool) *Store {
	return &Store{client: client, db: client.Database(database), transactions: transactions}
}

func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Products() *Products { return NewProducts(s.db) }
func (s *Store) Carts() *Carts       { return NewCarts(s.db) }
func (s *Store) Orders() *Orders     { return NewOrders(s.db) }
func (s *Store) Users() *Users       { return NewUsers(s.db) }
func (s *Store) Contacts() *Contacts { return NewContacts(s.db) }
func (s *Store) Tx() *TxManager      { return NewTxManager(s.client, s.transactions) }
