package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backoffice/internal/catalog/domain/entity"
	"backoffice/internal/catalog/domain/model"
	"backoffice/internal/shared/eventbus"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockSeeder is a testify mock of Seeder.
type MockSeeder[T any] struct {
	mock.Mock
}

func (m *MockSeeder[T]) Seed(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]T)
	return records, args.Error(1)
}

// spyStore counts writes and can be told to fail them.
type spyStore struct {
	store.Store
	mu      sync.Mutex
	sets    int
	failSet error
}

func newSpyStore() *spyStore {
	return &spyStore{Store: store.NewMemoryStore()}
}

func (s *spyStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	s.sets++
	return s.Store.Set(ctx, key, value)
}

// blockingSeeder holds Seed until release is closed.
type blockingSeeder struct {
	records []entity.Client
	started chan struct{}
	release chan struct{}
}

func newBlockingSeeder(records []entity.Client) *blockingSeeder {
	return &blockingSeeder{records: records, started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingSeeder) Seed(ctx context.Context) ([]entity.Client, error) {
	close(b.started)
	<-b.release
	return b.records, nil
}

func (s *spyStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func cached[T any](t *testing.T, s store.Store, key string) ([]T, bool) {
	t.Helper()
	records, present, err := store.NewCache[T](s).Read(context.Background(), key)
	require.NoError(t, err)
	return records, present
}

func clientInput(name string) model.Input {
	return model.Input{"name": name, "email": name + "@aromefloral.ma", "phone": "0600000000"}
}

func newClients(t *testing.T, s store.Store, seeder Seeder[entity.Client], policy PagePolicy) *Controller[entity.Client] {
	t.Helper()
	return NewController(entity.ClientSchema(), s, seeder, Options{PageSize: 5, PagePolicy: policy})
}

func seededClients(n int) []entity.Client {
	out := make([]entity.Client, n)
	for i := range out {
		out[i] = entity.Client{ID: model.IntID(int64(i + 1)), Name: "Client", Email: "c@x.ma", Phone: "1"}
	}
	return out
}

func TestLoad_EmptyCacheSeedsAndPersists(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	seeder := &MockSeeder[entity.Client]{}
	seeder.On("Seed", mock.Anything).Return(seededClients(3), nil).Once()

	c := newClients(t, s, seeder, PageClamp)
	require.NoError(t, c.Load(ctx))

	assert.Equal(t, 3, c.Len())
	persisted, present := cached[entity.Client](t, s, entity.ClientsCacheKey)
	assert.True(t, present)
	assert.Equal(t, c.Snapshot(), persisted)
	seeder.AssertExpectations(t)
}

func TestLoad_PrefersCacheEvenWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	require.NoError(t, store.NewCache[entity.Client](s).Write(ctx, entity.ClientsCacheKey, []entity.Client{}))

	seeder := &MockSeeder[entity.Client]{}
	c := newClients(t, s, seeder, PageClamp)
	require.NoError(t, c.Load(ctx))

	assert.Zero(t, c.Len())
	assert.True(t, c.Loaded())
	seeder.AssertNotCalled(t, "Seed", mock.Anything)
}

func TestLoad_SeedFailureLeavesEmptyAndRetries(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	seeder := &MockSeeder[entity.Client]{}
	seedErr := apperrors.NewSeedFetchError("https://dummyjson.com/users", errors.New("offline"))
	seeder.On("Seed", mock.Anything).Return(nil, seedErr).Once()
	seeder.On("Seed", mock.Anything).Return(seededClients(2), nil).Once()

	c := newClients(t, s, seeder, PageClamp)
	err := c.Load(ctx)
	assert.True(t, apperrors.IsSeedFetch(err))
	assert.Zero(t, c.Len())
	assert.Zero(t, s.writes())
	_, present := cached[entity.Client](t, s, entity.ClientsCacheKey)
	assert.False(t, present)

	require.NoError(t, c.Reload(ctx))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, s.writes())
}

func TestLoad_CompletionAfterCloseIsNoop(t *testing.T) {
	s := newSpyStore()
	seeder := newBlockingSeeder(seededClients(3))

	c := newClients(t, s, seeder, PageClamp)
	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()

	<-seeder.started
	c.Close()
	close(seeder.release)

	require.NoError(t, <-done)
	assert.Zero(t, c.Len())
	assert.Zero(t, s.writes())
}

func TestLoad_CancelledDuringSeedReportsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newSpyStore()
	seeder := &MockSeeder[entity.Client]{}
	seeder.On("Seed", mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(seededClients(3), nil).Once()

	c := newClients(t, s, seeder, PageClamp)
	err := c.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.Loaded())
	assert.Zero(t, c.Len())
	assert.Zero(t, s.writes())

	seeder.On("Seed", mock.Anything).Return(seededClients(3), nil).Once()
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, 3, c.Len())
}

func TestLoad_SeedDiscardedAfterLocalMutation(t *testing.T) {
	s := newSpyStore()
	seeder := newBlockingSeeder(seededClients(3))

	c := newClients(t, s, seeder, PageClamp)
	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-seeder.started

	_, err := c.Create(context.Background(), clientInput("mina"))
	require.NoError(t, err)
	close(seeder.release)

	require.NoError(t, <-done)
	assert.Equal(t, 1, c.Len())
	persisted, _ := cached[entity.Client](t, s, entity.ClientsCacheKey)
	assert.Equal(t, c.Snapshot(), persisted)
}

func TestCreate_IdenticalInputsGetDistinctIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	c := newClients(t, newSpyStore(), nil, PageClamp)
	require.NoError(t, c.Load(ctx))

	first, err := c.Create(ctx, clientInput("same"))
	require.NoError(t, err)
	second, err := c.Create(ctx, clientInput("same"))
	require.NoError(t, err)

	a, _ := first.ID.Int()
	b, _ := second.ID.Int()
	assert.Equal(t, int64(1), a)
	assert.Greater(t, b, a)
}

func TestCreate_NamespacedProductIDs(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	require.NoError(t, store.NewCache[entity.Product](s).Write(ctx, entity.ProductsCacheKey,
		[]entity.Product{{ID: "1", Title: "a", Price: 1, Category: "x"}, {ID: "20", Title: "b", Price: 2, Category: "x"}}))

	c := NewController(entity.ProductSchema(), s, nil, Options{})
	require.NoError(t, c.Load(ctx))

	in := model.Input{"name": "Rose", "price": "99", "category": "parfum"}
	p1, err := c.Create(ctx, in)
	require.NoError(t, err)
	p2, err := c.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, model.ID("local-1"), p1.ID)
	assert.Equal(t, model.ID("local-2"), p2.ID)
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, p2, c.Snapshot()[3])
}

func TestCreate_EmptyNameRejectedWithoutWrite(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	c := newClients(t, s, nil, PageClamp)
	require.NoError(t, c.Load(ctx))

	_, err := c.Create(ctx, model.Input{"name": "  ", "email": "a@b.ma", "phone": "1"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, c.Len())
	assert.Zero(t, s.writes())
}

func TestCreate_PersistenceFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	c := newClients(t, s, nil, PageClamp)
	require.NoError(t, c.Load(ctx))
	_, err := c.Create(ctx, clientInput("kept"))
	require.NoError(t, err)

	s.failSet = errors.New("disk full")
	_, err = c.Create(ctx, clientInput("lost"))
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodePersistenceFailed, appErr.Code)

	s.failSet = nil
	assert.Equal(t, 1, c.Len())
	persisted, _ := cached[entity.Client](t, s, entity.ClientsCacheKey)
	assert.Equal(t, c.Snapshot(), persisted)
}

func TestUpdate_InvalidLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	c := newClients(t, s, nil, PageClamp)
	require.NoError(t, c.Load(ctx))
	orig, err := c.Create(ctx, clientInput("mina"))
	require.NoError(t, err)
	writes := s.writes()

	_, _, err = c.Update(ctx, orig.ID, model.Input{"name": "new", "email": "not-an-email", "phone": "1"})
	assert.True(t, apperrors.IsValidation(err))

	got, ok := c.Get(orig.ID)
	require.True(t, ok)
	assert.Equal(t, orig, got)
	assert.Equal(t, writes, s.writes())
}

func TestUpdate_InPlaceAndMissing(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	c := newClients(t, s, nil, PageClamp)
	require.NoError(t, c.Load(ctx))
	_, _ = c.Create(ctx, clientInput("a"))
	b, _ := c.Create(ctx, clientInput("b"))
	_, _ = c.Create(ctx, clientInput("c"))

	updated, found, err := c.Update(ctx, b.ID, clientInput("bee"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bee", updated.Name)
	assert.Equal(t, b.ID, c.Snapshot()[1].ID)

	writes := s.writes()
	_, found, err = c.Update(ctx, "404", clientInput("ghost"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, writes, s.writes())
}

func TestDelete_MissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	c := newClients(t, s, nil, PageClamp)
	require.NoError(t, c.Load(ctx))
	_, _ = c.Create(ctx, clientInput("a"))
	writes := s.writes()

	found, err := c.Delete(ctx, "999")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, writes, s.writes())
}

func TestPagination_SixRecords(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	require.NoError(t, store.NewCache[entity.Client](s).Write(ctx, entity.ClientsCacheKey, seededClients(6)))
	c := newClients(t, s, nil, PageClamp)
	require.NoError(t, c.Load(ctx))

	p := c.CurrentPage()
	assert.Len(t, p.Items, 5)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)

	p = c.NextPage()
	assert.Equal(t, 2, p.Page)
	assert.Len(t, p.Items, 1)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)

	p = c.NextPage()
	assert.Equal(t, 2, p.Page, "next past the end is ignored")

	c.PrevPage()
	p = c.PrevPage()
	assert.Equal(t, 1, p.Page)
}

func TestDelete_OnSecondPage(t *testing.T) {
	tests := []struct {
		name     string
		policy   PagePolicy
		wantPage int
		wantRows int
	}{
		{"clamp moves to last page", PageClamp, 1, 5},
		{"stale keeps empty page", PageStale, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newSpyStore()
			require.NoError(t, store.NewCache[entity.Client](s).Write(ctx, entity.ClientsCacheKey, seededClients(6)))
			c := newClients(t, s, nil, tt.policy)
			require.NoError(t, c.Load(ctx))
			c.NextPage()

			found, err := c.Delete(ctx, "6")
			require.NoError(t, err)
			require.True(t, found)

			p := c.CurrentPage()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Len(t, p.Items, tt.wantRows)
			assert.Equal(t, 5, p.Total)
		})
	}
}

func TestForm_StateMachine(t *testing.T) {
	ctx := context.Background()
	c := newClients(t, newSpyStore(), nil, PageClamp)
	require.NoError(t, c.Load(ctx))

	st := c.OpenCreate()
	assert.Equal(t, ModeCreating, st.Mode)
	assert.Nil(t, st.EditID)
	assert.Len(t, st.Fields, 3)

	res, err := c.Submit(ctx, clientInput("mina"))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, ModeIdle, c.Form().Mode)

	st, err = c.OpenEdit(res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, ModeEditing, st.Mode)
	require.NotNil(t, st.EditID)
	assert.Equal(t, res.Record.ID, *st.EditID)
	assert.Equal(t, "mina", st.Values["name"])

	res, err = c.Submit(ctx, clientInput("mina2"))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, res.Found)
	assert.Equal(t, "mina2", res.Record.Name)
	assert.Equal(t, 1, c.Len())

	_, err = c.OpenEdit("missing")
	assert.True(t, apperrors.IsNotFound(err))

	c.OpenCreate()
	assert.Equal(t, ModeIdle, c.Cancel().Mode)
}

func TestForm_ValidationKeepsFormOpen(t *testing.T) {
	ctx := context.Background()
	c := newClients(t, newSpyStore(), nil, PageClamp)
	require.NoError(t, c.Load(ctx))

	c.OpenCreate()
	_, err := c.Submit(ctx, model.Input{"name": "x"})
	assert.Error(t, err)
	assert.Equal(t, ModeCreating, c.Form().Mode)
}

func TestOnChange_AndBus(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.NewEventBus(nil)
	published := make(chan eventbus.CollectionChange, 4)
	bus.Subscribe(eventbus.EventTypeCollectionChanged, func(ctx context.Context, e eventbus.Event) error {
		published <- e.Data().(eventbus.CollectionChange)
		return nil
	})

	c := NewController(entity.ClientSchema(), newSpyStore(), nil, Options{Bus: bus})
	require.NoError(t, c.Load(ctx))

	var seen []eventbus.CollectionChange
	stop := c.OnChange(func(ch eventbus.CollectionChange) { seen = append(seen, ch) })

	rec, err := c.Create(ctx, clientInput("a"))
	require.NoError(t, err)
	stop()
	_, err = c.Delete(ctx, rec.ID)
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, eventbus.CollectionChange{Entity: entity.Clients, Operation: eventbus.OpCreate, ID: "1", Count: 1}, seen[0])

	for _, want := range []string{eventbus.OpCreate, eventbus.OpDelete} {
		select {
		case got := <-published:
			assert.Equal(t, want, got.Operation)
		case <-time.After(time.Second):
			t.Fatalf("no %s event published", want)
		}
	}
}

func TestReset_DropsAndReseeds(t *testing.T) {
	ctx := context.Background()
	s := newSpyStore()
	seeder := &MockSeeder[entity.Client]{}
	seeder.On("Seed", mock.Anything).Return(seededClients(4), nil)

	c := newClients(t, s, seeder, PageClamp)
	require.NoError(t, c.Load(ctx))
	_, _ = c.Create(ctx, clientInput("extra"))
	require.Equal(t, 5, c.Len())

	require.NoError(t, c.Reset(ctx))
	assert.Equal(t, 4, c.Len())
	seeder.AssertNumberOfCalls(t, "Seed", 2)
}
