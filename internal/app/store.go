package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/config"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/database"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/repository"
)

const storeConnectTimeout = 5 * time.Second

type closeFunc func(ctx context.Context) error

func noopClose(context.Context) error { return nil }

// openStore connects the configured backend. When a durable backend cannot
// be reached the in-memory store is used instead, unless
// STORE_REQUIRE_DURABLE is set. The choice is final for the process.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, closeFunc, error) {
	if cfg.StoreBackend == config.BackendMemory {
		slog.Warn("Using the in-memory conversation store. Data will not survive a restart.")
		return repository.NewMemoryRepository(), noopClose, nil
	}

	store, closer, err := openDurableStore(ctx, cfg)
	if err == nil {
		slog.Info("Conversation store ready", "backend", store.Name())
		return store, closer, nil
	}
	if cfg.StoreRequireDurable {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	slog.Warn("Durable store unavailable, falling back to the in-memory store. Data will not survive a restart.",
		"backend", cfg.StoreBackend, "error", err)
	return repository.NewMemoryRepository(), noopClose, nil
}

func openDurableStore(ctx context.Context, cfg *config.Config) (repository.Store, closeFunc, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		db, err := database.InitDB(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteRepository(db), func(context.Context) error { return db.Close() }, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return repository.NewRedisRepository(rdb), func(context.Context) error { return rdb.Close() }, nil

	case config.BackendMongo:
		if cfg.MongoURI == "" {
			return nil, nil, fmt.Errorf("MONGO_URI is not set")
		}
		connectCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect failed: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongo ping failed: %w", err)
		}
		store, err := repository.NewMongoRepository(connectCtx, client.Database(cfg.MongoDatabase))
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return store, client.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
