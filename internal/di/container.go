package di

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backoffice/internal/auth"
	"backoffice/internal/catalog"
	"backoffice/internal/config"
	dashboardhttp "backoffice/internal/dashboard/adapter/http"
	dashboard "backoffice/internal/dashboard/usecase"
	"backoffice/internal/i18n"
	"backoffice/internal/realtime"
	"backoffice/internal/shared/eventbus"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/remote"
	"backoffice/internal/store"

	"github.com/gofiber/fiber/v2"
)

// Container owns every long-lived component of the back office.
type Container struct {
	mu     sync.Mutex
	closed bool

	Config *config.Config
	Logger logger.Logger
	Store  store.Store
	Bus    *eventbus.EventBus

	Auth      *auth.AuthModule
	Catalog   *catalog.Module
	Dashboard *dashboard.Aggregator
	Strings   *i18n.Catalog
	Language  *i18n.Preference
	Hub       *realtime.Hub

	i18nHandler      *i18n.Handler
	dashboardHandler *dashboardhttp.Handler
	realtimeHandler  *realtime.Handler
}

// Option overrides a collaborator the container would otherwise build.
type Option func(*options)

type options struct {
	store   store.Store
	fetcher remote.Fetcher
}

// WithStore uses s instead of opening cfg.Store.Backend.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithFetcher routes every seed and dashboard request through f.
func WithFetcher(f remote.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// NewContainer opens the cache store and builds the modules on top of it.
func NewContainer(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Container, error) {
	if log == nil {
		log = logger.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{Config: cfg, Logger: log}

	c.Store = o.store
	if c.Store == nil {
		st, err := store.Open(ctx, cfg.Store, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache store: %w", err)
		}
		c.Store = st
	}
	c.Bus = eventbus.NewEventBus(log.WithComponent("eventbus"))

	if err := c.build(cfg, o.fetcher); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) build(cfg *config.Config, fetcher remote.Fetcher) error {
	var err error
	log := c.Logger

	c.Auth, err = auth.NewAuthModule(cfg.Auth, c.Store, c.Bus, log)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.Catalog, err = catalog.New(cfg.Catalog, catalog.Deps{
		Store:   c.Store,
		Fetcher: fetcher,
		Bus:     c.Bus,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to create catalog module: %w", err)
	}

	if fetcher == nil {
		fetcher = remote.NewFiberFetcher(cfg.Dashboard.Timeout)
	}
	c.Dashboard, err = dashboard.NewAggregator(cfg.Dashboard, fetcher, log)
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}
	c.dashboardHandler = dashboardhttp.NewHandler(c.Dashboard, log)

	c.Strings, err = i18n.Load()
	if err != nil {
		return fmt.Errorf("failed to load string tables: %w", err)
	}
	c.Language = i18n.NewPreference(c.Strings, c.Store, c.Bus, cfg.I18n.DefaultLanguage, log)
	c.i18nHandler = i18n.NewHandler(c.Strings, c.Language, log)

	c.Hub = realtime.NewHub(c.Bus, 0, log)
	c.realtimeHandler = realtime.NewHandler(c.Hub, log)
	return nil
}

// LanguageMiddleware puts the persisted language into each request context.
func (c *Container) LanguageMiddleware() fiber.Handler {
	return c.i18nHandler.Middleware()
}

// RegisterRoutes mounts every module under router. Public routes come first;
// the catalog's /:entity group is mounted last so it cannot shadow them.
func (c *Container) RegisterRoutes(router fiber.Router) {
	c.Auth.RegisterRoutes(router)
	c.i18nHandler.RegisterRoutes(router)

	secured := router.Group("", c.Auth.Protect())
	c.realtimeHandler.RegisterRoutes(secured)
	c.dashboardHandler.RegisterRoutes(secured)
	c.Catalog.RegisterRoutes(secured)
}

// HealthCheck reports whether the cache store is reachable.
func (c *Container) HealthCheck(ctx context.Context) error {
	if err := c.Store.Ping(ctx); err != nil {
		return fmt.Errorf("%s store health check failed: %w", c.Config.Store.Backend, err)
	}
	return nil
}

// Close stops the modules before the store they write to. Safe to call twice.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.Catalog != nil {
		c.Catalog.Close()
	}

	var errs []error
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	c.Logger.Info("Container resources closed")
	return errors.Join(errs...)
}
