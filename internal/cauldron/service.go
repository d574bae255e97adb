// Package cauldron implements the fuzzy-match brewing mini-game: dropped
// items are consumed up front, then scored against known recipes. The game
// is lossy by design; a failed match still costs the ingredients.
package cauldron

import (
	"context"
	"fmt"

	"github.com/forgelight/crucible/internal/concurrency"
	"github.com/forgelight/crucible/internal/crafting"
	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/metrics"
	"github.com/forgelight/crucible/internal/notify"
	"github.com/forgelight/crucible/internal/repository"
	"github.com/forgelight/crucible/internal/resolver"
)

// minDroppedItems is the smallest cauldron load that brews at all.
const minDroppedItems = 2

// BookSource provides the collection scan and the discovery grant. The
// registry service satisfies it.
type BookSource interface {
	Snapshot(ctx context.Context) ([]domain.RecipeBook, error)
	GrantDiscovery(ctx context.Context, bookID, recipeID, userID string) error
}

// Request asks for one brew.
type Request struct {
	ActorID string `json:"actor_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
	IsGM    bool   `json:"is_gm"`
	// ItemNames are the names of the actor-owned items dropped into the
	// cauldron, one consumed unit per entry.
	ItemNames []string `json:"item_names" validate:"required,min=2"`
}

// Result reports a brew.
type Result struct {
	Outcome OutcomeKind `json:"outcome"`
	// MessageKey identifies the partial-match hint shown to the player.
	MessageKey string `json:"message_key,omitempty"`
	// RecipeID and RecipeName are set on success only; a partial match
	// never reveals which recipe was close.
	RecipeID     string               `json:"recipe_id,omitempty"`
	RecipeName   string               `json:"recipe_name,omitempty"`
	ExtraCount   int                  `json:"extra_count"`
	MissingCount int                  `json:"missing_count"`
	Produced     []domain.PendingItem `json:"produced,omitempty"`
}

// Service defines the interface for cauldron operations
type Service interface {
	Brew(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	books  BookSource
	actors repository.Actors
	items  resolver.Service
	sink   notify.Sink
	locks  *concurrency.LockManager
}

// NewService creates a new cauldron service
func NewService(
	books BookSource,
	actors repository.Actors,
	items resolver.Service,
	sink notify.Sink,
	locks *concurrency.LockManager,
) Service {
	return &service{books: books, actors: actors, items: items, sink: sink, locks: locks}
}

// Brew consumes the dropped items, then matches them against recipes the
// user has not discovered yet.
func (s *service) Brew(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromContext(ctx)
	log.Info("Brew called",
		"actor_id", req.ActorID, "user_id", req.UserID, "items", len(req.ItemNames))

	if len(req.ItemNames) < minDroppedItems {
		return nil, domain.ErrNotEnoughIngredients
	}

	var result *Result
	err := s.locks.WithLock(concurrency.ActorKey(req.ActorID), func() error {
		var brewErr error
		result, brewErr = s.brewLocked(ctx, req)
		return brewErr
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBrew(string(result.Outcome))
	s.notifyResult(ctx, req.UserID, result)
	return result, nil
}

func (s *service) brewLocked(ctx context.Context, req Request) (*Result, error) {
	// Consumption happens first and unconditionally; the match is computed
	// afterwards against what was thrown in.
	if err := s.consumeDropped(ctx, req.ActorID, req.ItemNames); err != nil {
		return nil, err
	}

	books, err := s.books.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book collection: %w", err)
	}

	dropped := toNameSet(req.ItemNames)
	book, recipe := bestCandidate(books, dropped, req.UserID, req.IsGM)
	if recipe == nil {
		return &Result{Outcome: OutcomeFail}, nil
	}

	extra, missing := scoreMatch(recipe, dropped)
	score := extra + missing

	switch {
	case score == 0:
		return s.deliverSuccess(ctx, req, book, recipe)
	case score > maxPartialScore:
		return &Result{Outcome: OutcomeFail, ExtraCount: extra, MissingCount: missing}, nil
	default:
		return &Result{
			Outcome:      OutcomePartial,
			MessageKey:   partialKey(extra, missing),
			ExtraCount:   extra,
			MissingCount: missing,
		}, nil
	}
}

// consumeDropped removes one unit of each dropped item from the actor.
func (s *service) consumeDropped(ctx context.Context, actorID string, itemNames []string) error {
	tx, err := s.actors.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	actor, err := tx.GetActorForUpdate(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to get actor: %w", err)
	}
	if actor == nil {
		return fmt.Errorf("%w: %s", domain.ErrActorNotFound, actorID)
	}

	for _, name := range itemNames {
		item := actor.ItemByName(name)
		if item == nil || item.Quantity <= 0 {
			return fmt.Errorf("%w: %s", domain.ErrInsufficientResource, name)
		}
		item.Quantity--
		if item.Quantity <= 0 {
			removeOwnedItem(actor, item.ID)
		}
	}

	if err := tx.UpdateActor(ctx, actor); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}
	return tx.Commit(ctx)
}

// deliverSuccess grants discovery of the matched recipe and delivers its
// first product. Ingredients were already consumed, so only the production
// half of the crafting path runs.
func (s *service) deliverSuccess(ctx context.Context, req Request, book *domain.RecipeBook, recipe *domain.Recipe) (*Result, error) {
	if err := s.books.GrantDiscovery(ctx, book.ID, recipe.ID, req.UserID); err != nil {
		return nil, fmt.Errorf("failed to grant discovery: %w", err)
	}

	result := &Result{
		Outcome:    OutcomeSuccess,
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
	}
	if len(recipe.Products) == 0 {
		return result, nil
	}

	produced := crafting.SnapshotProduct(ctx, s.items, &recipe.Products[0])

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
	crafting.Produce(actor, produced)
	if err := tx.UpdateActor(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to update actor: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.Produced = produced
	return result, nil
}

func (s *service) notifyResult(ctx context.Context, userID string, result *Result) {
	var content string
	switch result.Outcome {
	case OutcomeSuccess:
		content = fmt.Sprintf("The cauldron bubbles... you discovered %s!", result.RecipeName)
	case OutcomePartial:
		content = fmt.Sprintf("The brew almost took (%s)", result.MessageKey)
	default:
		content = "The cauldron spits out a foul sludge"
	}

	msg := notify.Message{Content: content, Whisper: []string{userID}}
	if err := s.sink.Post(ctx, msg); err != nil {
		logger.FromContext(ctx).Warn("Failed to post brew notification", "error", err)
	}
}

func removeOwnedItem(actor *domain.Actor, itemID string) {
	for idx := range actor.Items {
		if actor.Items[idx].ID == itemID {
			actor.Items = append(actor.Items[:idx], actor.Items[idx+1:]...)
			return
		}
	}
}
