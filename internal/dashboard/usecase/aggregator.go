// Package usecase computes the dashboard indicators from the demo APIs.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"backoffice/internal/config"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/shared/logger"
	"backoffice/internal/shared/remote"

	"golang.org/x/sync/errgroup"
)

// Order is the slice of a remote cart the dashboard uses.
type Order struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	Total         float64 `json:"total"`
	TotalProducts int64   `json:"totalProducts"`
}

// Product is the slice of a remote product the dashboard uses.
type Product struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Stock    float64 `json:"stock"`
}

type user struct {
	ID int64 `json:"id"`
}

// Point is one labelled value of a chart series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// XY is one scatter point.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series holds the chart data.
type Series struct {
	Categories     []Point `json:"categories"`
	Stock          []Point `json:"stock"`
	OrderRevenue   []Point `json:"orderRevenue"`
	DeliveredSplit []Point `json:"deliveredSplit"`
	RevenueScatter []XY    `json:"revenueScatter"`
}

// Stats is the full dashboard payload.
type Stats struct {
	TotalUsers      int       `json:"totalUsers"`
	TotalProducts   int       `json:"totalProducts"`
	TotalOrders     int       `json:"totalOrders"`
	PendingOrders   int       `json:"pendingOrders"`
	DeliveredOrders int       `json:"deliveredOrders"`
	TotalRevenue    float64   `json:"totalRevenue"`
	PendingRule     string    `json:"pendingRule"`
	Series          Series    `json:"series"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// Labels for the delivered-vs-pending split.
const (
	LabelDelivered = "Livré"
	LabelPending   = "En attente"
)

// Aggregator fetches the three sources concurrently and reduces them.
type Aggregator struct {
	cfg     config.DashboardConfig
	fetcher remote.Fetcher
	rule    *PendingRule
	log     logger.Logger
	now     func() time.Time
}

// NewAggregator compiles the pending rule from cfg.
func NewAggregator(cfg config.DashboardConfig, fetcher remote.Fetcher, log logger.Logger) (*Aggregator, error) {
	rule, err := NewPendingRule(cfg.PendingExpr, cfg.PendingThreshold)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid pending rule").WithCause(err)
	}
	if fetcher == nil {
		fetcher = remote.NewFiberFetcher(cfg.Timeout)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{
		cfg:     cfg,
		fetcher: fetcher,
		rule:    rule,
		log:     log.WithComponent("dashboard"),
		now:     time.Now,
	}, nil
}

// Compute builds the dashboard. Any failed source fails the whole result.
func (a *Aggregator) Compute(ctx context.Context) (*Stats, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	var (
		users    []user
		products []Product
		orders   []Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.fetch(gctx, a.cfg.UsersURL, "users", &users) })
	g.Go(func() error { return a.fetch(gctx, a.cfg.ProductsURL, "products", &products) })
	g.Go(func() error { return a.fetch(gctx, a.cfg.OrdersURL, "carts", &orders) })
	if err := g.Wait(); err != nil {
		a.log.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Dashboard sources unavailable")
		return nil, err
	}

	return a.reduce(users, products, orders)
}

func (a *Aggregator) fetch(ctx context.Context, url, envelope string, dst any) error {
	body, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return apperrors.NewSeedFetchError(url, err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperrors.NewSeedFetchError(url, fmt.Errorf("decode payload: %w", err))
	}
	items, ok := payload[envelope]
	if !ok {
		return apperrors.NewSeedFetchError(url, fmt.Errorf("payload has no %q array", envelope))
	}
	if err := json.Unmarshal(items, dst); err != nil {
		return apperrors.NewSeedFetchError(url, fmt.Errorf("decode %s: %w", envelope, err))
	}
	return nil
}

func (a *Aggregator) reduce(users []user, products []Product, orders []Order) (*Stats, error) {
	s := &Stats{
		TotalUsers:    len(users),
		TotalProducts: len(products),
		TotalOrders:   len(orders),
		PendingRule:   a.rule.Expr(),
		GeneratedAt:   a.now().UTC(),
		Series: Series{
			Categories:     []Point{},
			Stock:          make([]Point, 0, len(products)),
			OrderRevenue:   make([]Point, 0, len(orders)),
			RevenueScatter: make([]XY, 0, len(orders)),
		},
	}

	for _, o := range orders {
		pending, err := a.rule.Pending(o)
		if err != nil {
			return nil, apperrors.NewInternalError("pending rule failed").WithCause(err)
		}
		if pending {
			s.PendingOrders++
		}
		s.TotalRevenue += o.Total
		s.Series.OrderRevenue = append(s.Series.OrderRevenue, Point{Label: fmt.Sprintf("Commande %d", o.ID), Value: o.Total})
		s.Series.RevenueScatter = append(s.Series.RevenueScatter, XY{X: float64(o.ID), Y: o.Total})
	}
	s.DeliveredOrders = s.TotalOrders - s.PendingOrders
	s.Series.DeliveredSplit = []Point{
		{Label: LabelDelivered, Value: float64(s.DeliveredOrders)},
		{Label: LabelPending, Value: float64(s.PendingOrders)},
	}

	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
		s.Series.Stock = append(s.Series.Stock, Point{Label: p.Title, Value: p.Stock})
	}
	for cat, n := range counts {
		s.Series.Categories = append(s.Series.Categories, Point{Label: cat, Value: float64(n)})
	}
	sort.Slice(s.Series.Categories, func(i, j int) bool {
		ci, cj := s.Series.Categories[i], s.Series.Categories[j]
		if ci.Value != cj.Value {
			return ci.Value > cj.Value
		}
		return ci.Label < cj.Label
	})

	return s, nil
}
