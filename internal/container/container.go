package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pokedex/catalog/internal/client"
	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/service"
	"pokedex/catalog/internal/state"
	"pokedex/catalog/internal/stream"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config    *config.Config
	Client    client.CatalogClient
	Store     state.Store
	Publisher stream.Publisher // Nil unless redis.enabled

	Service *service.Service

	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	return NewWithClient(cfg, client.NewCatalogClient(cfg.API))
}

// NewWithClient wires the container around an existing catalog client
func NewWithClient(cfg *config.Config, catalogClient client.CatalogClient) (*Container, error) {
	container := &Container{
		Config: cfg,
		Client: catalogClient,
		Store:  state.NewStore(state.Initial()),
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		container.redis = rdb
		container.Publisher = stream.NewRedisPublisher(rdb, container.Store, cfg.Redis)
	}

	container.Service = service.NewService(
		catalogClient,
		container.Store,
		cfg.Catalog,
		cfg.API,
	)

	return container, nil
}

// Run executes session against the service while the state feed, if any,
// publishes in the background. It returns once session has returned and every
// dispatched operation has settled.
func (c *Container) Run(ctx context.Context, session func(ctx context.Context, svc *service.Service) error) error {
	g, gctx := errgroup.WithContext(ctx)
	feedCtx, stopFeed := context.WithCancel(gctx)
	defer stopFeed()

	if c.Publisher != nil {
		g.Go(func() error {
			return c.Publisher.Run(feedCtx)
		})
	}

	g.Go(func() error {
		defer stopFeed()
		err := session(gctx, c.Service)
		c.Service.Wait()
		return err
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			log.Warnf("⚠️ Failed to close state feed publisher: %v", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}

	if err := c.Client.Close(); err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}

	log.Debug("Container shut down successfully")
	return nil
}
