package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/repository"
)

// ActorsRepository implements the actor repository for PostgreSQL.
// Actor documents are stored in the host's shape, with each item's stack
// quantity at the configured dotted attribute path (QUANTITY_PATH).
type ActorsRepository struct {
	db           *pgxpool.Pool
	quantityPath string
}

// NewActorsRepository creates a new ActorsRepository
func NewActorsRepository(db *pgxpool.Pool, quantityPath string) *ActorsRepository {
	return &ActorsRepository{db: db, quantityPath: quantityPath}
}

// rawActor is the stored, host-shaped form of an actor document.
type rawActor struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Items      []map[string]any   `json:"items"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

func scanActor(row pgx.Row, quantityPath string) (*domain.Actor, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query actor: %w", err)
	}

	var raw rawActor
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor: %w", err)
	}
	return normalizeActor(&raw, quantityPath), nil
}

// normalizeActor lifts a stored document into the engine's view, reading
// each item's quantity through the configured path.
func normalizeActor(raw *rawActor, quantityPath string) *domain.Actor {
	actor := &domain.Actor{
		ID:         raw.ID,
		Name:       raw.Name,
		Items:      make([]domain.OwnedItem, 0, len(raw.Items)),
		Attributes: raw.Attributes,
	}
	if actor.Attributes == nil {
		actor.Attributes = make(map[string]float64)
	}
	for _, doc := range raw.Items {
		item := domain.OwnedItem{
			ID:       stringField(doc, "id"),
			Name:     stringField(doc, "name"),
			Img:      stringField(doc, "img"),
			Quantity: readQuantity(doc, quantityPath),
			Tags:     stringSliceField(doc, "tags"),
		}
		actor.Items = append(actor.Items, item)
	}
	return actor
}

func marshalActor(actor *domain.Actor, quantityPath string) ([]byte, error) {
	raw := rawActor{
		ID:         actor.ID,
		Name:       actor.Name,
		Items:      make([]map[string]any, 0, len(actor.Items)),
		Attributes: actor.Attributes,
	}
	for _, item := range actor.Items {
		doc := map[string]any{
			"id":   item.ID,
			"name": item.Name,
		}
		if item.Img != "" {
			doc["img"] = item.Img
		}
		if len(item.Tags) > 0 {
			doc["tags"] = item.Tags
		}
		writeQuantity(doc, quantityPath, item.Quantity)
		raw.Items = append(raw.Items, doc)
	}

	data, err := json.Marshal(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor: %w", err)
	}
	return data, nil
}

// readQuantity walks a dotted path through nested objects. Missing or
// non-numeric values read as zero.
func readQuantity(doc map[string]any, path string) float64 {
	segments := strings.Split(path, ".")
	current := doc
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return 0
		}
		current = next
	}
	value, _ := current[segments[len(segments)-1]].(float64)
	return value
}

// writeQuantity sets the value at a dotted path, creating intermediate
// objects as needed.
func writeQuantity(doc map[string]any, path string, quantity float64) {
	segments := strings.Split(path, ".")
	current := doc
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = quantity
}

func stringField(doc map[string]any, key string) string {
	value, _ := doc[key].(string)
	return value
}

func stringSliceField(doc map[string]any, key string) []string {
	values, ok := doc[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

const (
	selectActorSQL          = `SELECT actor_data FROM actors WHERE actor_id = $1`
	selectActorForUpdateSQL = `SELECT actor_data FROM actors WHERE actor_id = $1 FOR UPDATE`
	upsertActorSQL          = `INSERT INTO actors (actor_id, actor_data)
		VALUES ($1, $2)
		ON CONFLICT (actor_id)
		DO UPDATE SET actor_data = EXCLUDED.actor_data, updated_at = NOW()`
)

// GetActor returns the actor snapshot, or nil when unknown.
func (r *ActorsRepository) GetActor(ctx context.Context, actorID string) (*domain.Actor, error) {
	return scanActor(r.db.QueryRow(ctx, selectActorSQL, actorID), r.quantityPath)
}

// UpdateActor upserts the actor snapshot.
func (r *ActorsRepository) UpdateActor(ctx context.Context, actor *domain.Actor) error {
	data, err := marshalActor(actor, r.quantityPath)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, upsertActorSQL, actor.ID, data); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}
	return nil
}

// BeginTx starts a transaction covering consume and produce writes.
func (r *ActorsRepository) BeginTx(ctx context.Context) (repository.ActorTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &ActorsTx{tx: tx, quantityPath: r.quantityPath}, nil
}

// ActorsTx implements repository.ActorTx
type ActorsTx struct {
	tx           pgx.Tx
	quantityPath string
}

// GetActorForUpdate reads the actor under a row lock.
func (t *ActorsTx) GetActorForUpdate(ctx context.Context, actorID string) (*domain.Actor, error) {
	return scanActor(t.tx.QueryRow(ctx, selectActorForUpdateSQL, actorID), t.quantityPath)
}

// UpdateActor upserts the actor snapshot within the transaction.
func (t *ActorsTx) UpdateActor(ctx context.Context, actor *domain.Actor) error {
	data, err := marshalActor(actor, t.quantityPath)
	if err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, upsertActorSQL, actor.ID, data); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}
	return nil
}

// AddPending stores a delayed craft within the transaction.
func (t *ActorsTx) AddPending(ctx context.Context, actorID string, pending domain.PendingCraft) error {
	return insertPending(ctx, t.tx, actorID, pending)
}

// RemovePending deletes a delayed craft within the transaction.
func (t *ActorsTx) RemovePending(ctx context.Context, actorID, requestID string) error {
	return deletePending(ctx, t.tx, actorID, requestID)
}

// Commit commits the transaction
func (t *ActorsTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *ActorsTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
