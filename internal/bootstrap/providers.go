package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/internal/domain/task"
	"github.com/yanqian/taskhub/internal/domain/token"
	"github.com/yanqian/taskhub/internal/infra/config"
	"github.com/yanqian/taskhub/internal/infra/events"
	"github.com/yanqian/taskhub/internal/infra/postgres"
	"github.com/yanqian/taskhub/internal/infra/sqlite"
	"github.com/yanqian/taskhub/internal/infra/taskrepo"
	"github.com/yanqian/taskhub/internal/infra/userrepo"
	"github.com/yanqian/taskhub/pkg/util"
)

// TokenSet provides the codec, issuer and verifier shared by both services.
var TokenSet = wire.NewSet(
	ProvideClock,
	ProvideTokenConfig,
	ProvideKeySource,
	token.NewCodec,
	token.NewIssuer,
	token.NewVerifier,
)

// ProvideClock returns the wall clock in UTC.
func ProvideClock() util.Clock {
	return util.NowUTC
}

// ProvideTokenConfig maps the auth config section.
func ProvideTokenConfig(cfg *config.Config) token.Config {
	return token.Config{
		TTL:          cfg.Auth.TokenTTL,
		RefreshGrace: cfg.Auth.RefreshGrace,
		Issuer:       cfg.Auth.Issuer,
	}
}

// ProvideKeySource wraps the shared secret.
func ProvideKeySource(cfg *config.Config) token.KeySource {
	return token.NewStaticKey(cfg.Auth.Secret)
}

// Storage holds whichever database handle the configured driver opened.
type Storage struct {
	Driver string
	Pool   *pgxpool.Pool
	DB     *sql.DB
}

// ProvideStorage opens the configured backend. The returned cleanup closes it.
func ProvideStorage(cfg *config.Config, logger *slog.Logger) (*Storage, func(), error) {
	driver := cfg.Storage.Driver
	switch driver {
	case config.DriverPostgres:
		pgCfg := cfg.Storage.Postgres
		if pgCfg.Migrate {
			if err := postgres.RunUp(pgCfg.DSN, logger); err != nil {
				return nil, nil, err
			}
		}
		pool, err := postgres.NewPool(context.Background(), postgres.PoolConfig{
			DSN:      pgCfg.DSN,
			MaxConns: pgCfg.MaxConns,
			MinConns: pgCfg.MinConns,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("postgres storage enabled")
		return &Storage{Driver: driver, Pool: pool}, pool.Close, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(context.Background(), cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite storage enabled", "path", cfg.Storage.SQLite.Path)
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Error("close sqlite failed", "error", err)
			}
		}
		return &Storage{Driver: driver, DB: db}, cleanup, nil
	case "", config.DriverMemory:
		logger.Info("memory storage enabled, data is lost on restart")
		return &Storage{Driver: config.DriverMemory}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// ProvideUserRepository picks the auth.Repository matching the storage driver.
func ProvideUserRepository(storage *Storage) auth.Repository {
	switch {
	case storage.Pool != nil:
		return userrepo.NewPostgresRepository(storage.Pool)
	case storage.DB != nil:
		return userrepo.NewSQLiteRepository(storage.DB)
	default:
		return userrepo.NewMemoryRepository()
	}
}

// ProvideTaskRepository picks the task.Repository matching the storage driver.
func ProvideTaskRepository(storage *Storage) task.Repository {
	switch {
	case storage.Pool != nil:
		return taskrepo.NewPostgresRepository(storage.Pool)
	case storage.DB != nil:
		return taskrepo.NewSQLiteRepository(storage.DB)
	default:
		return taskrepo.NewMemoryRepository()
	}
}

// ProvideEventPublisher records auth events in Valkey when enabled and
// reachable, and falls back to the process log otherwise.
func ProvideEventPublisher(cfg *config.Config, logger *slog.Logger) (auth.EventPublisher, func()) {
	fallback := events.NewLogPublisher(logger)
	vcfg := cfg.Events.Valkey
	if !vcfg.Enabled {
		return fallback, func() {}
	}
	opt, err := buildValkeyOptions(vcfg.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, logging auth events instead", "error", err)
		return fallback, func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, logging auth events instead", "error", err)
		return fallback, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, logging auth events instead", "error", err)
		client.Close()
		return fallback, func() {}
	}
	logger.Info("valkey auth event log enabled", "addr", vcfg.Addr, "key", vcfg.Key)
	return events.NewValkeyPublisher(client, vcfg.Key, vcfg.MaxLen), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	if strings.TrimSpace(addr) == "" {
		return valkey.ClientOption{}, fmt.Errorf("valkey addr is empty")
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
