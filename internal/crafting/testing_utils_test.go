package crafting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/forgelight/crucible/internal/clock"
	"github.com/forgelight/crucible/internal/concurrency"
	"github.com/forgelight/crucible/internal/config"
	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/hook"
	"github.com/forgelight/crucible/internal/notify"
	"github.com/forgelight/crucible/internal/repository"
)

// memStore is an in-memory actor, pending-craft and world-clock store used
// across the crafting tests.
type memStore struct {
	mu        sync.Mutex
	actors    map[string]*domain.Actor
	pending   map[string][]domain.PendingCraft
	worldTime int64
}

func newMemStore() *memStore {
	return &memStore{
		actors:  make(map[string]*domain.Actor),
		pending: make(map[string][]domain.PendingCraft),
	}
}

func copyActor(a *domain.Actor) *domain.Actor {
	out := *a
	out.Items = make([]domain.OwnedItem, len(a.Items))
	for i, item := range a.Items {
		out.Items[i] = item
		out.Items[i].Tags = append([]string(nil), item.Tags...)
	}
	out.Attributes = make(map[string]float64, len(a.Attributes))
	for k, v := range a.Attributes {
		out.Attributes[k] = v
	}
	return &out
}

func (m *memStore) GetActor(_ context.Context, actorID string) (*domain.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	actor, ok := m.actors[actorID]
	if !ok {
		return nil, nil
	}
	return copyActor(actor), nil
}

func (m *memStore) UpdateActor(_ context.Context, actor *domain.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actors[actor.ID] = copyActor(actor)
	return nil
}

func (m *memStore) BeginTx(_ context.Context) (repository.ActorTx, error) {
	return &memTx{store: m}, nil
}

func (m *memStore) ListPending(_ context.Context, actorID string) ([]domain.PendingCraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PendingCraft(nil), m.pending[actorID]...), nil
}

func (m *memStore) ListActorsWithPending(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, entries := range m.pending {
		if len(entries) > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memStore) AddPending(_ context.Context, actorID string, pending domain.PendingCraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[actorID] = append(m.pending[actorID], pending)
	return nil
}

func (m *memStore) RemovePending(_ context.Context, actorID, requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.pending[actorID]
	for idx, entry := range entries {
		if entry.RequestID == requestID {
			m.pending[actorID] = append(entries[:idx], entries[idx+1:]...)
			return nil
		}
	}
	return fmt.Errorf("pending craft not found: %s", requestID)
}

func (m *memStore) GetWorldTime(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.worldTime, nil
}

func (m *memStore) SetWorldTime(_ context.Context, worldTime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worldTime = worldTime
	return nil
}

// memTx stages mutations and applies them on Commit.
type memTx struct {
	store  *memStore
	closed bool

	stagedActor   *domain.Actor
	stagedAdds    []domain.PendingCraft
	stagedRemoves []string
	actorID       string
}

func (t *memTx) GetActorForUpdate(ctx context.Context, actorID string) (*domain.Actor, error) {
	return t.store.GetActor(ctx, actorID)
}

func (t *memTx) UpdateActor(_ context.Context, actor *domain.Actor) error {
	t.stagedActor = copyActor(actor)
	return nil
}

func (t *memTx) AddPending(_ context.Context, actorID string, pending domain.PendingCraft) error {
	t.actorID = actorID
	t.stagedAdds = append(t.stagedAdds, pending)
	return nil
}

func (t *memTx) RemovePending(_ context.Context, actorID, requestID string) error {
	t.actorID = actorID
	t.stagedRemoves = append(t.stagedRemoves, requestID)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.closed = true
	if t.stagedActor != nil {
		if err := t.store.UpdateActor(ctx, t.stagedActor); err != nil {
			return err
		}
	}
	for _, pending := range t.stagedAdds {
		if err := t.store.AddPending(ctx, t.actorID, pending); err != nil {
			return err
		}
	}
	for _, requestID := range t.stagedRemoves {
		if err := t.store.RemovePending(ctx, t.actorID, requestID); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.closed = true
	return nil
}

// stubBooks serves a fixed set of books.
type stubBooks struct {
	books map[string]*domain.RecipeBook
}

func (s *stubBooks) GetBook(_ context.Context, bookID string) (*domain.RecipeBook, error) {
	book, ok := s.books[bookID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBookNotFound, bookID)
	}
	return book, nil
}

// stubRunner returns a fixed hook verdict and records the last input.
type stubRunner struct {
	result    hook.Result
	lastInput hook.Input
}

func (s *stubRunner) Run(_ context.Context, _ string, input hook.Input) hook.Result {
	s.lastInput = input
	return s.result
}

// recordingSink captures posted notifications.
type recordingSink struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (r *recordingSink) Post(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingSink) last() *notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return nil
	}
	return &r.messages[len(r.messages)-1]
}

// stubResolver serves snapshots keyed by ref.
type stubResolver struct {
	byRef map[string]domain.ItemSnapshot
}

func (s stubResolver) Resolve(_ context.Context, ref, cachedName string) (*domain.ItemSnapshot, error) {
	if snap, ok := s.byRef[ref]; ok {
		return &snap, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, cachedName)
}

func (stubResolver) Invalidate(string) {}

// fixture bundles a fully wired crafting service over in-memory stores.
type fixture struct {
	store *memStore
	books *stubBooks
	sink  *recordingSink
	hook  *stubRunner
	svc   Service
}

func newFixture(mode config.ConsumeMode) *fixture {
	store := newMemStore()
	books := &stubBooks{books: make(map[string]*domain.RecipeBook)}
	sink := &recordingSink{}
	runner := &stubRunner{result: hook.DefaultResult()}

	svc := NewService(
		books,
		store,
		store,
		clock.NewService(store),
		runner,
		stubResolver{},
		sink,
		concurrency.NewLockManager(),
		mode,
		"assets/crafting.ogg",
	)
	return &fixture{store: store, books: books, sink: sink, hook: runner, svc: svc}
}
