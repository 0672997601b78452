package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yuefen/wearwise/internal/domain/auth"
	"github.com/yuefen/wearwise/internal/domain/closet"
	"github.com/yuefen/wearwise/internal/domain/packing"
	"github.com/yuefen/wearwise/internal/domain/rotation"
	"github.com/yuefen/wearwise/internal/domain/search"
	"github.com/yuefen/wearwise/internal/domain/stylist"
	"github.com/yuefen/wearwise/internal/infra/closetrepo"
	"github.com/yuefen/wearwise/internal/infra/config"
	"github.com/yuefen/wearwise/internal/infra/searchembed"
	"github.com/yuefen/wearwise/internal/infra/searchrepo"
	"github.com/yuefen/wearwise/internal/infra/storage"
	"github.com/yuefen/wearwise/internal/infra/suggestcache"
	"github.com/yuefen/wearwise/internal/infra/userrepo"
	"github.com/yuefen/wearwise/internal/infra/wearrepo"
	httpiface "github.com/yuefen/wearwise/internal/interface/http"
)

func provideStylistConfig(cfg *config.Config) stylist.Config {
	return stylist.Config{
		Weights: stylist.Weights{
			Weather:   cfg.Stylist.WeatherWeight,
			Formality: cfg.Stylist.FormalityWeight,
			Style:     cfg.Stylist.StyleWeight,
			Rotation:  cfg.Stylist.RotationWeight,
		},
		TopKPerSlot:   cfg.Stylist.TopKPerSlot,
		AccessoryCap:  cfg.Stylist.AccessoryCap,
		CacheTTL:      cfg.Stylist.CacheTTL,
		EventOverride: cfg.Stylist.EventFormality,
	}
}

func provideRotationConfig(cfg *config.Config) rotation.Config {
	return rotation.Config{
		WindowDays: cfg.Rotation.WindowDays,
		Floor:      cfg.Rotation.Floor,
	}
}

func providePackingConfig(cfg *config.Config) packing.Config {
	return packing.Config{
		MaxTripDays:      cfg.Packing.MaxTripDays,
		CandidatesPerDay: cfg.Packing.CandidatesPerDay,
	}
}

func provideSearchConfig(cfg *config.Config) search.Config {
	return search.Config{
		Dimensions: cfg.Search.Dimensions,
		MaxResults: cfg.Search.MaxResults,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

// providePgxPool returns a connected pool, or nil when Postgres is not
// configured or unreachable; callers fall back to memory adapters.
func providePgxPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideWearStore(pool *pgxpool.Pool) rotation.WearStore {
	if pool == nil {
		return wearrepo.NewMemoryRepository()
	}
	return wearrepo.NewPostgresRepository(pool)
}

func provideClosetRepository(pool *pgxpool.Pool) closet.Repository {
	if pool == nil {
		return closetrepo.NewMemoryRepository()
	}
	return closetrepo.NewPostgresRepository(pool)
}

func provideSearchIndex(pool *pgxpool.Pool) search.Index {
	if pool == nil {
		return searchrepo.NewMemoryIndex()
	}
	return searchrepo.NewPostgresIndex(pool)
}

func provideAuthRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideEmbedder(cfg *config.Config) search.Embedder {
	return searchembed.NewDeterministicEmbedder(cfg.Search.Dimensions)
}

func provideSuggestionCache(cfg *config.Config, logger *slog.Logger) stylist.SuggestionCache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return suggestcache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return suggestcache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey suggestion cache enabled", "addr", cfg.Cache.Addr)
			return suggestcache.NewValkeyStore(client, "wearwise")
		}
	}
	return suggestcache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// provideImageStore returns nil when object storage is disabled; image
// endpoints then answer storage_disabled.
func provideImageStore(cfg *config.Config, logger *slog.Logger) *storage.R2Images {
	if !cfg.Storage.Enabled {
		logger.Info("object storage disabled, item images unavailable")
		return nil
	}
	store, err := storage.NewR2Images(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.CDNBase,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize object storage, item images unavailable", "error", err)
		return nil
	}
	logger.Info("object storage enabled", "bucket", cfg.Storage.Bucket)
	return store
}

func provideClosetImageStorage(store *storage.R2Images) closet.ImageStorage {
	if store == nil {
		return nil
	}
	return store
}

func provideImageResolver(store *storage.R2Images) httpiface.ImageResolver {
	if store == nil {
		return nil
	}
	return store
}
