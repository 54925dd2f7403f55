// Package catalog wires the five back-office entity screens.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backoffice/internal/catalog/adapter/http"
	"backoffice/internal/catalog/adapter/seed"
	"backoffice/internal/catalog/domain/entity"
	"backoffice/internal/catalog/domain/model"
	"backoffice/internal/catalog/usecase"
	"backoffice/internal/config"
	"backoffice/internal/shared/eventbus"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/remote"
	"backoffice/internal/store"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// BasePath is where the entity routes are mounted.
const BasePath = "/api/v1"

// Deps are the collaborators shared by every screen.
type Deps struct {
	Store   store.Store
	Fetcher remote.Fetcher
	Bus     eventbus.Bus
	Logger  logger.Logger
	// Status assigns invoice statuses; nil picks at random.
	Status entity.StatusPicker
}

// Module owns the entity screens in display order.
type Module struct {
	screens []usecase.Screen
	byName  map[string]usecase.Screen
	handler *http.Handler
	log     logger.Logger
}

// New builds a controller and seed source per entity.
func New(cfg config.CatalogConfig, deps Deps) (*Module, error) {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Fetcher == nil {
		deps.Fetcher = remote.NewFiberFetcher(cfg.Seed.Timeout)
	}
	if deps.Status == nil {
		deps.Status = entity.RandomStatus
	}
	log := deps.Logger.WithComponent("catalog")

	opts := usecase.Options{
		PageSize:   cfg.PageSize,
		PagePolicy: usecase.ParsePagePolicy(cfg.PagePolicy),
		Bus:        deps.Bus,
		Logger:     log,
	}

	m := &Module{byName: make(map[string]usecase.Screen), log: log}
	var err error
	add := func(s usecase.Screen, e error) {
		if err != nil {
			return
		}
		if e != nil {
			err = e
			return
		}
		m.screens = append(m.screens, s)
		m.byName[s.Name()] = s
	}

	add(build(entity.ProductSchema(), cfg.Seed.ProductsURL, deps, opts))
	add(build(entity.ClientSchema(), cfg.Seed.ClientsURL, deps, opts))
	add(build(entity.OrderSchema(), cfg.Seed.OrdersURL, deps, opts))
	add(build(entity.InvoiceSchema(deps.Status), cfg.Seed.InvoicesURL, deps, opts))
	add(build(entity.UserSchema(), cfg.Seed.UsersURL, deps, opts))
	if err != nil {
		return nil, err
	}

	m.handler = http.NewHandler(m.screens, deps.Logger)
	return m, nil
}

func build[T any](schema model.Schema[T], url string, deps Deps, opts usecase.Options) (usecase.Screen, error) {
	src, err := seed.NewSource(url, schema.Seed, deps.Fetcher, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("%s seed source: %w", schema.Name, err)
	}
	c := usecase.NewController(schema, deps.Store, src, opts)
	return usecase.NewScreen(c, BasePath), nil
}

// Screens lists the screens in display order.
func (m *Module) Screens() []usecase.Screen {
	return append([]usecase.Screen(nil), m.screens...)
}

// Screen returns the screen for an entity name.
func (m *Module) Screen(name string) (usecase.Screen, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// LoadAll loads the named screens concurrently, or all of them when names
// is empty. One failed seed does not stop the others.
func (m *Module) LoadAll(ctx context.Context, names ...string) error {
	targets, err := m.pick(names)
	if err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	for _, s := range targets {
		g.Go(func() error {
			if err := s.Load(ctx); err != nil {
				m.log.WithFields(map[string]interface{}{
					"entity": s.Name(),
					"error":  err.Error(),
				}).Warn("Screen loaded without seed data")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Reset drops the cached collection of one entity and seeds it again.
func (m *Module) Reset(ctx context.Context, name string) error {
	s, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownEntity, name)
	}
	return s.Reset(ctx)
}

func (m *Module) pick(names []string) ([]usecase.Screen, error) {
	if len(names) == 0 {
		return m.screens, nil
	}
	out := make([]usecase.Screen, 0, len(names))
	for _, n := range names {
		s, ok := m.byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownEntity, n)
		}
		out = append(out, s)
	}
	return out, nil
}

// RegisterRoutes mounts the entity routes.
func (m *Module) RegisterRoutes(router fiber.Router) {
	m.handler.RegisterRoutes(router)
}

// Close detaches every screen; pending seeds are discarded.
func (m *Module) Close() {
	for _, s := range m.screens {
		s.Close()
	}
}
