package usecase

import (
	"context"

	"backoffice/internal/catalog/domain/model"
	"backoffice/internal/catalog/view"
	"backoffice/internal/shared/eventbus"
)

// Pagination is the cursor state sent alongside a table.
type Pagination struct {
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	Total   int  `json:"total"`
	HasPrev bool `json:"hasPrev"`
	HasNext bool `json:"hasNext"`
}

// Listing is everything a front end needs to draw one entity screen.
type Listing struct {
	Entity     string     `json:"entity"`
	Table      view.Table `json:"table"`
	Pagination Pagination `json:"pagination"`
	Form       FormState  `json:"form"`
	Loaded     bool       `json:"loaded"`
}

// Screen is the entity-agnostic view of a controller used by the HTTP
// handlers and the CLI.
type Screen interface {
	Name() string
	CacheKey() string
	Load(ctx context.Context) error
	Reload(ctx context.Context) error
	Reset(ctx context.Context) error
	Close()
	Len() int
	Loaded() bool

	List(page int) Listing
	NextPage() Listing
	PrevPage() Listing

	Get(id model.ID) (any, bool)
	Create(ctx context.Context, input model.Input) (any, error)
	Update(ctx context.Context, id model.ID, input model.Input) (any, bool, error)
	Delete(ctx context.Context, id model.ID) (bool, error)

	Form() FormState
	OpenCreate() FormState
	OpenEdit(id model.ID) (FormState, error)
	Cancel() FormState
	Submit(ctx context.Context, input model.Input) (SubmitResult[any], error)

	OnChange(fn func(eventbus.CollectionChange)) func()
}

type screen[T any] struct {
	*Controller[T]
	renderer *view.Renderer[T]
}

// NewScreen pairs a controller with the renderer for its rows.
func NewScreen[T any](c *Controller[T], basePath string) Screen {
	return &screen[T]{Controller: c, renderer: view.NewRenderer(c.Schema(), basePath)}
}

func (s *screen[T]) CacheKey() string { return s.schema.CacheKey }

func (s *screen[T]) listing(p Page[T]) Listing {
	return Listing{
		Entity: s.schema.Name,
		Table:  s.renderer.Render(p.Items),
		Pagination: Pagination{
			Page:    p.Page,
			Size:    p.Size,
			Total:   p.Total,
			HasPrev: p.HasPrev,
			HasNext: p.HasNext,
		},
		Form:   s.Controller.Form(),
		Loaded: s.Controller.Loaded(),
	}
}

// List renders the given page, or the current one when page is zero.
func (s *screen[T]) List(page int) Listing {
	if page > 0 {
		return s.listing(s.Controller.SetPage(page))
	}
	return s.listing(s.Controller.CurrentPage())
}

func (s *screen[T]) NextPage() Listing { return s.listing(s.Controller.NextPage()) }
func (s *screen[T]) PrevPage() Listing { return s.listing(s.Controller.PrevPage()) }

func (s *screen[T]) Get(id model.ID) (any, bool) {
	return s.Controller.Get(id)
}

func (s *screen[T]) Create(ctx context.Context, input model.Input) (any, error) {
	return s.Controller.Create(ctx, input)
}

func (s *screen[T]) Update(ctx context.Context, id model.ID, input model.Input) (any, bool, error) {
	return s.Controller.Update(ctx, id, input)
}

func (s *screen[T]) Submit(ctx context.Context, input model.Input) (SubmitResult[any], error) {
	res, err := s.Controller.Submit(ctx, input)
	return SubmitResult[any]{Record: res.Record, Created: res.Created, Found: res.Found}, err
}
