// Package crafting implements the crafting transaction: tool checks,
// validation hook, staged consumption and immediate or delayed production,
// all under a per-actor lock.
package crafting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/forgelight/crucible/internal/availability"
	"github.com/forgelight/crucible/internal/clock"
	"github.com/forgelight/crucible/internal/concurrency"
	"github.com/forgelight/crucible/internal/config"
	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/hook"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/metrics"
	"github.com/forgelight/crucible/internal/notify"
	"github.com/forgelight/crucible/internal/repository"
	"github.com/forgelight/crucible/internal/resolver"
)

// BookSource provides the recipe lookups the transaction needs. The
// registry service satisfies it.
type BookSource interface {
	GetBook(ctx context.Context, bookID string) (*domain.RecipeBook, error)
}

// Request asks for one craft of one recipe by one actor.
type Request struct {
	BookID   string `json:"book_id" validate:"required"`
	RecipeID string `json:"recipe_id" validate:"required"`
	ActorID  string `json:"actor_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
	IsGM     bool   `json:"is_gm"`

	// Selection maps ingredient slot id to the chosen component id. Slots
	// left out fall back to the first satisfied component in slot order.
	Selection map[string]string `json:"selection,omitempty"`
	// ProductID picks the product slot; empty means the first one.
	ProductID string `json:"product_id,omitempty"`
	// Extra is passed through to the validation hook.
	Extra map[string]any `json:"extra,omitempty"`
}

// ConsumedItem reports one merged component spent by a craft.
type ConsumedItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// Outcome reports a finished or scheduled craft.
type Outcome struct {
	RecipeID   string               `json:"recipe_id"`
	RecipeName string               `json:"recipe_name"`
	Consumed   []ConsumedItem       `json:"consumed"`
	Produced   []domain.PendingItem `json:"produced,omitempty"`
	Delayed    bool                 `json:"delayed"`
	RequestID  string               `json:"request_id,omitempty"`
	ReadyAt    int64                `json:"ready_at,omitempty"`
	Sound      string               `json:"sound,omitempty"`
}

// Service defines the interface for crafting operations
type Service interface {
	// Availability computes the read-only craftability report.
	Availability(ctx context.Context, bookID, recipeID, actorID string) (*availability.Result, error)
	// Craft runs the full crafting transaction.
	Craft(ctx context.Context, req Request) (*Outcome, error)
	// ProcessDelayed delivers every pending craft that is ready, returning
	// the number of delivered entries.
	ProcessDelayed(ctx context.Context) (int, error)
}

type service struct {
	books   BookSource
	actors  repository.Actors
	pending repository.Pending
	clock   clock.Service
	hooks   hook.Runner
	items   resolver.Service
	sink    notify.Sink
	locks   *concurrency.LockManager

	mode         config.ConsumeMode
	defaultSound string
}

// NewService creates a new crafting service
func NewService(
	books BookSource,
	actors repository.Actors,
	pending repository.Pending,
	worldClock clock.Service,
	hooks hook.Runner,
	items resolver.Service,
	sink notify.Sink,
	locks *concurrency.LockManager,
	mode config.ConsumeMode,
	defaultSound string,
) Service {
	return &service{
		books:        books,
		actors:       actors,
		pending:      pending,
		clock:        worldClock,
		hooks:        hooks,
		items:        items,
		sink:         sink,
		locks:        locks,
		mode:         mode,
		defaultSound: defaultSound,
	}
}

func (s *service) loadRecipe(ctx context.Context, bookID, recipeID string) (*domain.RecipeBook, *domain.Recipe, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	recipe := book.Recipe(recipeID)
	if recipe == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrRecipeNotFound, recipeID)
	}
	return book, recipe, nil
}

func (s *service) Availability(ctx context.Context, bookID, recipeID, actorID string) (*availability.Result, error) {
	_, recipe, err := s.loadRecipe(ctx, bookID, recipeID)
	if err != nil {
		return nil, err
	}

	actor, err := s.actors.GetActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrActorNotFound, actorID)
	}

	result := availability.Compute(recipe, actor)
	return &result, nil
}

// Craft runs the crafting transaction for one recipe
func (s *service) Craft(ctx context.Context, req Request) (*Outcome, error) {
	log := logger.FromContext(ctx)
	log.Info("Craft called",
		"actor_id", req.ActorID, "recipe_id", req.RecipeID, "user_id", req.UserID)

	book, recipe, err := s.loadRecipe(ctx, req.BookID, req.RecipeID)
	if err != nil {
		return nil, err
	}

	if !recipe.IsOwner(book, req.UserID, req.IsGM) {
		return nil, fmt.Errorf("%w: recipe %s", domain.ErrNoPermission, recipe.Name)
	}

	var outcome *Outcome
	err = s.locks.WithLock(concurrency.ActorKey(req.ActorID), func() error {
		var craftErr error
		outcome, craftErr = s.craftLocked(ctx, book, recipe, req)
		return craftErr
	})
	if err != nil {
		s.notifyFailure(ctx, recipe, req.UserID, err)
		metrics.RecordCraft(metrics.CraftResult(err))
		return nil, err
	}

	metrics.RecordCraft(metrics.ResultSuccess)
	s.notifyOutcome(ctx, req.UserID, outcome)
	return outcome, nil
}

func (s *service) craftLocked(ctx context.Context, book *domain.RecipeBook, recipe *domain.Recipe, req Request) (*Outcome, error) {
	tx, err := s.actors.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	actor, err := tx.GetActorForUpdate(ctx, req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrActorNotFound, req.ActorID)
	}

	// Every tool from the recipe and its book must be present.
	for _, tool := range recipe.ToolList(book) {
		if !actor.HasItemNamed(tool) {
			return nil, fmt.Errorf("%w: %s", domain.ErrToolMissing, tool)
		}
	}

	product, err := selectProduct(recipe, req.ProductID)
	if err != nil {
		return nil, err
	}

	selected, err := buildConsumeSet(recipe, actor, req.Selection)
	if err != nil {
		return nil, err
	}
	merged := mergeComponents(selected)

	// Snapshot before the hook runs so the script sees what the craft
	// would deliver.
	produced := SnapshotProduct(ctx, s.items, product)

	verdict := s.hooks.Run(ctx, recipe.MacroHook, hook.Input{
		Actor:            actor,
		Components:       merged,
		Product:          product,
		ProductSnapshots: produced,
		Extra:            req.Extra,
	})

	if !verdict.Success && !verdict.Consume {
		return nil, domain.ErrCraftFailedNotConsumed
	}

	if err := s.consume(ctx, tx, actor, merged); err != nil {
		return nil, err
	}

	if !verdict.Success {
		// Consume-on-failure: the spend sticks, production is skipped.
		if err := tx.UpdateActor(ctx, actor); err != nil {
			return nil, fmt.Errorf("failed to update actor: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil, domain.ErrCraftFailedConsumed
	}

	outcome := &Outcome{
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Consumed:   consumedReport(merged),
		Sound:      recipe.CraftingSound(book, s.defaultSound),
	}

	if recipe.TimeMinutes != nil {
		now, err := s.clock.Now(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read world time: %w", err)
		}
		pending := domain.PendingCraft{
			RequestID: uuid.NewString(),
			ActorID:   actor.ID,
			ReadyAt:   now + int64(*recipe.TimeMinutes)*60,
			Items:     produced,
		}
		if err := tx.UpdateActor(ctx, actor); err != nil {
			return nil, fmt.Errorf("failed to update actor: %w", err)
		}
		if err := tx.AddPending(ctx, actor.ID, pending); err != nil {
			return nil, fmt.Errorf("failed to store pending craft: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}

		outcome.Delayed = true
		outcome.RequestID = pending.RequestID
		outcome.ReadyAt = pending.ReadyAt
		// The completion cue plays on delivery, not on scheduling.
		outcome.Sound = ""
		return outcome, nil
	}

	for _, item := range produced {
		produceItem(actor, item.Name, item.Img, item.Quantity, item.Tags, uuid.NewString())
	}
	if err := tx.UpdateActor(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update actor: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	outcome.Produced = produced
	return outcome, nil
}

// consume applies the merged components to the actor. In strict mode a
// short component aborts with nothing persisted; in legacy mode the partial
// spend is committed before the error surfaces.
func (s *service) consume(ctx context.Context, tx repository.ActorTx, actor *domain.Actor, merged []domain.Component) error {
	for idx := range merged {
		if err := consumeComponent(actor, &merged[idx]); err != nil {
			if s.mode == config.ConsumeModeLegacy && idx > 0 {
				if updateErr := tx.UpdateActor(ctx, actor); updateErr != nil {
					return fmt.Errorf("failed to persist partial consumption: %w", updateErr)
				}
				if commitErr := tx.Commit(ctx); commitErr != nil {
					return fmt.Errorf("failed to commit partial consumption: %w", commitErr)
				}
			}
			return err
		}
	}
	return nil
}

// SnapshotProduct snapshots a product slot's components into deliverable
// items, resolving refs best-effort for image data. The cauldron shares
// this path so brewed products land exactly like crafted ones.
func SnapshotProduct(ctx context.Context, items resolver.Service, product *domain.Product) []domain.PendingItem {
	out := make([]domain.PendingItem, 0, len(product.Components))
	for _, comp := range product.Components {
		item := domain.PendingItem{
			Name:     comp.Name,
			Quantity: comp.Quantity,
			Tags:     append([]string(nil), comp.Tags...),
		}
		if comp.Ref != "" {
			if snap, err := items.Resolve(ctx, comp.Ref, comp.Name); err == nil {
				item.Img = snap.Img
				if snap.Name != "" {
					item.Name = snap.Name
				}
			}
		}
		out = append(out, item)
	}
	return out
}

// Produce merges delivered items into the actor's inventory, incrementing
// existing same-named stacks and creating new ones otherwise.
func Produce(actor *domain.Actor, items []domain.PendingItem) {
	for _, item := range items {
		produceItem(actor, item.Name, item.Img, item.Quantity, item.Tags, uuid.NewString())
	}
}

func selectProduct(recipe *domain.Recipe, productID string) (*domain.Product, error) {
	if len(recipe.Products) == 0 {
		return nil, fmt.Errorf("%w: recipe %q has no products", domain.ErrInvalidInput, recipe.Name)
	}
	if productID == "" {
		return &recipe.Products[0], nil
	}
	product := recipe.Product(productID)
	if product == nil {
		return nil, fmt.Errorf("%w: product %s", domain.ErrInvalidInput, productID)
	}
	return product, nil
}

func consumedReport(merged []domain.Component) []ConsumedItem {
	out := make([]ConsumedItem, 0, len(merged))
	for _, comp := range merged {
		out = append(out, ConsumedItem{Name: comp.Name, Quantity: comp.Quantity})
	}
	return out
}

func (s *service) notifyOutcome(ctx context.Context, userID string, outcome *Outcome) {
	var content string
	if outcome.Delayed {
		content = fmt.Sprintf("Crafting %s started, ready at world time %d", outcome.RecipeName, outcome.ReadyAt)
	} else {
		names := make([]string, 0, len(outcome.Produced))
		for _, item := range outcome.Produced {
			names = append(names, fmt.Sprintf("%s x%g", item.Name, item.Quantity))
		}
		content = fmt.Sprintf("Crafted %s: %s", outcome.RecipeName, strings.Join(names, ", "))
	}

	msg := notify.Message{Content: content, Whisper: []string{userID}, Sound: outcome.Sound}
	if err := s.sink.Post(ctx, msg); err != nil {
		logger.FromContext(ctx).Warn("Failed to post craft notification", "error", err)
	}
}

func (s *service) notifyFailure(ctx context.Context, recipe *domain.Recipe, userID string, err error) {
	var content string
	switch {
	case errors.Is(err, domain.ErrToolMissing),
		errors.Is(err, domain.ErrInsufficientResource):
		content = fmt.Sprintf("Cannot craft %s: %v", recipe.Name, err)
	case errors.Is(err, domain.ErrCraftFailedNotConsumed):
		content = fmt.Sprintf("Crafting %s failed, nothing was consumed", recipe.Name)
	case errors.Is(err, domain.ErrCraftFailedConsumed):
		content = fmt.Sprintf("Crafting %s failed, components were consumed", recipe.Name)
	default:
		return
	}

	msg := notify.Message{Content: content, Whisper: []string{userID}}
	if postErr := s.sink.Post(ctx, msg); postErr != nil {
		logger.FromContext(ctx).Warn("Failed to post craft notification", "error", postErr)
	}
}
