package usecase

import (
	"context"
	"slices"
	"sync"

	"backoffice/internal/catalog/domain/model"
	"backoffice/internal/shared/eventbus"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/shared/logger"
	"backoffice/internal/store"
)

// DefaultPageSize is the number of rows per table page.
const DefaultPageSize = 5

// Seeder produces the first-run collection.
type Seeder[T any] interface {
	Seed(ctx context.Context) ([]T, error)
}

// Mode is the form state of a screen.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

// FormState describes the add/edit form.
type FormState struct {
	Mode   Mode          `json:"mode"`
	EditID *model.ID     `json:"editId"`
	Values model.Input   `json:"values"`
	Fields []model.Field `json:"fields"`
}

// SubmitResult reports what a form submission did.
type SubmitResult[T any] struct {
	Record  T    `json:"record"`
	Created bool `json:"created"`
	Found   bool `json:"found"`
}

// Options tunes a controller.
type Options struct {
	PageSize   int
	PagePolicy PagePolicy
	Bus        eventbus.Bus
	Logger     logger.Logger
}

// Controller owns one entity collection: its records, page cursor and form
// state. Every operation runs under a single lock; a mutation and the cache
// write mirroring it complete together.
type Controller[T any] struct {
	mu     sync.Mutex
	schema model.Schema[T]
	cache  *store.Cache[T]
	seeder Seeder[T]
	bus    eventbus.Bus
	logger logger.Logger

	records    []T
	page       int
	size       int
	policy     PagePolicy
	mode       Mode
	editID     model.ID
	generation uint64
	loaded     bool
	closed     bool

	listeners    map[int]func(eventbus.CollectionChange)
	nextListener int
}

// NewController builds a controller; call Load before serving it.
func NewController[T any](schema model.Schema[T], s store.Store, seeder Seeder[T], opts Options) *Controller[T] {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	return &Controller[T]{
		schema:    schema,
		cache:     store.NewCache[T](s),
		seeder:    seeder,
		bus:       opts.Bus,
		logger:    opts.Logger.WithComponent("catalog").WithFields(map[string]interface{}{"entity": schema.Name}),
		records:   []T{},
		page:      1,
		size:      opts.PageSize,
		policy:    opts.PagePolicy,
		mode:      ModeIdle,
		listeners: make(map[int]func(eventbus.CollectionChange)),
	}
}

// Name returns the entity name.
func (c *Controller[T]) Name() string { return c.schema.Name }

// Schema returns the entity schema.
func (c *Controller[T]) Schema() model.Schema[T] { return c.schema }

// Load fills the collection from the cache when a value is persisted there,
// otherwise from the seeder. A failed seed leaves the collection empty and
// writes nothing so the next Load tries again.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	records, present, err := c.cache.Read(ctx, c.schema.CacheKey)
	if err != nil {
		c.mu.Unlock()
		c.logger.Errorf("Failed to read cache: %v", err)
		return apperrors.NewInfrastructureError("failed to read cached collection").WithCause(err).WithComponent(c.schema.Name)
	}
	if present {
		c.replace(records)
		change := c.change(ctx, eventbus.OpLoad, "")
		c.mu.Unlock()
		c.logger.Debugf("Loaded %d records from cache", len(records))
		c.notify(change)
		return nil
	}
	gen := c.generation
	c.mu.Unlock()

	return c.seed(ctx, gen, eventbus.OpLoad)
}

// Reload re-runs the load policy, retrying a seed that failed earlier.
func (c *Controller[T]) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Reset drops the cached collection and seeds it again.
func (c *Controller[T]) Reset(ctx context.Context) error {
	c.mu.Lock()
	if err := c.cache.Drop(ctx, c.schema.CacheKey); err != nil {
		c.mu.Unlock()
		return apperrors.NewPersistenceError(c.schema.CacheKey, err).WithComponent(c.schema.Name)
	}
	c.replace([]T{})
	c.page = 1
	c.resetForm()
	gen := c.generation
	c.mu.Unlock()

	return c.seed(ctx, gen, eventbus.OpReset)
}

// seed fetches without holding the lock and applies the result only if
// nothing else changed the collection in the meantime.
func (c *Controller[T]) seed(ctx context.Context, gen uint64, op string) error {
	if c.seeder == nil {
		c.mu.Lock()
		c.loaded = true
		c.mu.Unlock()
		return nil
	}

	records, err := c.seeder.Seed(ctx)

	c.mu.Lock()
	if c.closed || c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale seed result")
		return nil
	}
	if cerr := ctx.Err(); cerr != nil {
		c.mu.Unlock()
		c.logger.Debugf("Seed abandoned: %v", cerr)
		if err != nil {
			return err
		}
		return cerr
	}
	if err != nil {
		c.replace([]T{})
		c.mu.Unlock()
		c.logger.Warnf("Seed failed, collection left empty: %v", err)
		return err
	}

	if werr := c.cache.Write(ctx, c.schema.CacheKey, records); werr != nil {
		c.replace([]T{})
		c.mu.Unlock()
		c.logger.Errorf("Failed to persist seeded collection: %v", werr)
		return apperrors.NewPersistenceError(c.schema.CacheKey, werr).WithComponent(c.schema.Name)
	}
	c.replace(records)
	change := c.change(ctx, op, "")
	c.mu.Unlock()

	c.logger.Infof("Seeded %d records", len(records))
	c.notify(change)
	return nil
}

// replace swaps the collection and invalidates in-flight seeds. Caller holds mu.
func (c *Controller[T]) replace(records []T) {
	if records == nil {
		records = []T{}
	}
	c.records = records
	c.loaded = true
	c.generation++
}

// persist writes next to the cache and installs it only on success. Caller holds mu.
func (c *Controller[T]) persist(ctx context.Context, next []T) error {
	if err := c.cache.Write(ctx, c.schema.CacheKey, next); err != nil {
		c.logger.Errorf("Failed to persist collection: %v", err)
		return apperrors.NewPersistenceError(c.schema.CacheKey, err).WithComponent(c.schema.Name)
	}
	c.records = next
	c.generation++
	return nil
}

// Create validates input and appends a new record.
func (c *Controller[T]) Create(ctx context.Context, input model.Input) (T, error) {
	var zero T
	values, err := model.Validate(c.schema.Fields, input)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	id := c.schema.IDs.Next(model.IDsOf(c.schema, c.records))
	rec := c.schema.Build(id, values)
	next := append(slices.Clone(c.records), rec)
	if err := c.persist(ctx, next); err != nil {
		c.mu.Unlock()
		return zero, err
	}
	c.resetForm()
	change := c.change(ctx, eventbus.OpCreate, id)
	c.mu.Unlock()

	c.notify(change)
	return rec, nil
}

// Update validates input and rewrites the record with the given id in place.
// found is false, without error, when no such record exists.
func (c *Controller[T]) Update(ctx context.Context, id model.ID, input model.Input) (rec T, found bool, err error) {
	values, err := model.Validate(c.schema.Fields, input)
	if err != nil {
		return rec, false, err
	}

	c.mu.Lock()
	idx := model.IndexOf(c.schema, c.records, id)
	if idx < 0 {
		c.resetForm()
		c.mu.Unlock()
		return rec, false, nil
	}

	next := slices.Clone(c.records)
	next[idx] = c.schema.Apply(next[idx], values)
	if err := c.persist(ctx, next); err != nil {
		c.mu.Unlock()
		return rec, true, err
	}
	rec = next[idx]
	c.resetForm()
	change := c.change(ctx, eventbus.OpUpdate, id)
	c.mu.Unlock()

	c.notify(change)
	return rec, true, nil
}

// Delete removes the record with the given id. Confirmation is the caller's
// responsibility. found is false, and nothing is written, when it is absent.
func (c *Controller[T]) Delete(ctx context.Context, id model.ID) (found bool, err error) {
	c.mu.Lock()
	idx := model.IndexOf(c.schema, c.records, id)
	if idx < 0 {
		c.mu.Unlock()
		return false, nil
	}

	next := slices.Delete(slices.Clone(c.records), idx, idx+1)
	if err := c.persist(ctx, next); err != nil {
		c.mu.Unlock()
		return true, err
	}
	c.page = c.policy.apply(c.page, len(next), c.size)
	if c.mode == ModeEditing && c.editID == id {
		c.resetForm()
	}
	change := c.change(ctx, eventbus.OpDelete, id)
	c.mu.Unlock()

	c.notify(change)
	return true, nil
}

// Get returns the record with the given id.
func (c *Controller[T]) Get(id model.ID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if idx := model.IndexOf(c.schema, c.records, id); idx >= 0 {
		return c.records[idx], true
	}
	return zero, false
}

// Len returns the collection size.
func (c *Controller[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Loaded reports whether a load or seed attempt has completed.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Snapshot returns a copy of the collection.
func (c *Controller[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// CurrentPage returns the visible page at the cursor.
func (c *Controller[T]) CurrentPage() Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Slice(c.records, c.page, c.size)
}

// SetPage moves the cursor; values below one become one.
func (c *Controller[T]) SetPage(page int) Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = max(page, 1)
	return Slice(c.records, c.page, c.size)
}

// NextPage advances the cursor when a next page exists.
func (c *Controller[T]) NextPage() Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page*c.size < len(c.records) {
		c.page++
	}
	return Slice(c.records, c.page, c.size)
}

// PrevPage moves the cursor back when not on the first page.
func (c *Controller[T]) PrevPage() Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > 1 {
		c.page--
	}
	return Slice(c.records, c.page, c.size)
}

// OpenCreate opens an empty form in create mode.
func (c *Controller[T]) OpenCreate() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeCreating
	c.editID = ""
	return c.form(model.Input{})
}

// OpenEdit opens the form prefilled with the record's values.
func (c *Controller[T]) OpenEdit(id model.ID) (FormState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := model.IndexOf(c.schema, c.records, id)
	if idx < 0 {
		return FormState{}, apperrors.NewNotFoundError(c.schema.Name + " record").WithCause(apperrors.ErrRecordNotFound)
	}
	c.mode = ModeEditing
	c.editID = id
	return c.form(c.schema.FormOf(c.records[idx])), nil
}

// Cancel closes the form without changes.
func (c *Controller[T]) Cancel() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetForm()
	return c.form(model.Input{})
}

// Form returns the current form state.
func (c *Controller[T]) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := model.Input{}
	if c.mode == ModeEditing {
		if idx := model.IndexOf(c.schema, c.records, c.editID); idx >= 0 {
			values = c.schema.FormOf(c.records[idx])
		}
	}
	return c.form(values)
}

// Submit dispatches to Update when editing and to Create otherwise.
func (c *Controller[T]) Submit(ctx context.Context, input model.Input) (SubmitResult[T], error) {
	c.mu.Lock()
	editing, id := c.mode == ModeEditing, c.editID
	c.mu.Unlock()

	if editing {
		rec, found, err := c.Update(ctx, id, input)
		return SubmitResult[T]{Record: rec, Found: found}, err
	}
	rec, err := c.Create(ctx, input)
	return SubmitResult[T]{Record: rec, Created: err == nil, Found: err == nil}, err
}

// OnChange registers fn to run after every change; the returned func removes it.
func (c *Controller[T]) OnChange(fn func(eventbus.CollectionChange)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Close makes pending seed completions no-ops.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller[T]) resetForm() {
	c.mode = ModeIdle
	c.editID = ""
}

func (c *Controller[T]) form(values model.Input) FormState {
	st := FormState{Mode: c.mode, Values: values, Fields: c.schema.Fields}
	if c.mode == ModeEditing {
		id := c.editID
		st.EditID = &id
	}
	return st
}

type pendingChange struct {
	change    eventbus.CollectionChange
	listeners []func(eventbus.CollectionChange)
}

// change queues the bus event and captures the listeners to call once mu is
// released. Queuing under mu keeps bus order equal to mutation order.
func (c *Controller[T]) change(ctx context.Context, op string, id model.ID) pendingChange {
	ch := eventbus.CollectionChange{Entity: c.schema.Name, Operation: op, ID: id.String(), Count: len(c.records)}
	if c.bus != nil {
		c.bus.PublishAndForget(ctx, eventbus.NewEvent(eventbus.EventTypeCollectionChanged, ch, "catalog"))
	}
	ls := make([]func(eventbus.CollectionChange), 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	return pendingChange{change: ch, listeners: ls}
}

func (c *Controller[T]) notify(p pendingChange) {
	for _, l := range p.listeners {
		l(p.change)
	}
}
