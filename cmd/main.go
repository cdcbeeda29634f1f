package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"rosellea-backend/internal/auth"
	"rosellea-backend/internal/config"
	"rosellea-backend/internal/httpapi"
	"rosellea-backend/internal/repository"
	"rosellea-backend/internal/repository/cache"
	"rosellea-backend/internal/repository/mongodb"
	"rosellea-backend/internal/seed"
	"rosellea-backend/internal/service"
)

// stores holds the repositories picked by STORE_DRIVER.
type stores struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	contacts repository.ContactRepository
	tx       repository.TxManager
	pinger   repository.Pinger
	close    func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := newLogger(cfg)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.LogPretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Str("service", "rosellea-backend").Logger()
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	products, tx := st.products, st.tx
	var (
		cachePing  repository.Pinger
		redisClose func() error
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rs := cache.NewRedisStore(rdb)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rs.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, product cache will fall through")
		}
		cancel()
		cached := cache.NewProducts(st.products, rs, cfg.ProductCacheTTL, log)
		products, tx = cached, cached.Tx(st.tx)
		cachePing = rs
		redisClose = rdb.Close
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.ProductCacheTTL).Msg("product cache enabled")
	}

	if cfg.SeedSampleProducts {
		if _, err := seed.Products(ctx, products, log); err != nil {
			return err
		}
	}

	tokens := auth.NewTokenMaker(cfg.JWTSecret, cfg.JWTExpire)
	svc := httpapi.Services{
		Catalog: service.NewCatalogService(products),
		Cart:    service.NewCartService(st.carts, products),
		Orders:  service.NewOrderService(st.carts, products, st.orders, tx, log),
		Users:   service.NewUserService(st.users, tokens),
		Contact: service.NewContactService(st.contacts),
		Guard:   auth.NewGuard(tokens, st.users),
		Store:   st.pinger,
		Cache:   cachePing,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	api := httpapi.NewServer(svc, httpapi.Options{
		Env:          cfg.AppEnv,
		Version:      cfg.Version,
		CORSOrigins:  cfg.Origins(),
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if redisClose != nil {
		if err := redisClose(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close")
	}
	log.Info().Msg("shutdown complete")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		mem := repository.NewMemoryStore()
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{
			products: repository.NewMemoryProducts(mem),
			carts:    repository.NewMemoryCarts(mem),
			orders:   repository.NewMemoryOrders(mem),
			users:    repository.NewMemoryUsers(mem),
			contacts: repository.NewMemoryContacts(mem),
			tx:       repository.NewMemoryTx(mem),
			pinger:   mem,
			close:    func(context.Context) error { return nil },
		}, nil

	default:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		store := mongodb.NewStore(client, cfg.MongoDatabase, cfg.MongoTransactions)

		ictx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := mongodb.EnsureIndexes(ictx, store.Database()); err != nil {
			_ = store.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		log.Info().Str("database", cfg.MongoDatabase).Bool("transactions", cfg.MongoTransactions).Msg("mongodb ready")
		return &stores{
			products: store.Products(),
			carts:    store.Carts(),
			orders:   store.Orders(),
			users:    store.Users(),
			contacts: store.Contacts(),
			tx:       store.Tx(),
			pinger:   store,
			close:    store.Disconnect,
		}, nil
	}
}
