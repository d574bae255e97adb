package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelight/crucible/internal/domain"
)

func TestBooksRepository_CollectionRoundTrip(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewBooksRepository(testPool)

	books, version, err := repo.GetCollection(ctx)
	require.NoError(t, err)

	book := domain.NewRecipeBook("Integration Brews")
	recipe := domain.NewRecipe(book.ID, "Integration Potion")
	book.Recipes = append(book.Recipes, recipe)
	books = append(books, book)

	newVersion, err := repo.SaveCollection(ctx, books, version)
	require.NoError(t, err)
	assert.Equal(t, version+1, newVersion)

	loaded, loadedVersion, err := repo.GetCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, newVersion, loadedVersion)

	var found *domain.RecipeBook
	for idx := range loaded {
		if loaded[idx].ID == book.ID {
			found = &loaded[idx]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Integration Brews", found.Name)
	require.Len(t, found.Recipes, 1)
	assert.Equal(t, "Integration Potion", found.Recipes[0].Name)
}

func TestBooksRepository_VersionConflict(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewBooksRepository(testPool)

	books, version, err := repo.GetCollection(ctx)
	require.NoError(t, err)

	_, err = repo.SaveCollection(ctx, books, version)
	require.NoError(t, err)

	// Saving again with the stale version must conflict.
	_, err = repo.SaveCollection(ctx, books, version)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestActorsRepository_RoundTrip(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewActorsRepository(testPool, "quantity")

	missing, err := repo.GetActor(ctx, "actor-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	actor := &domain.Actor{
		ID:   "actor-rt",
		Name: "Round Trip",
		Items: []domain.OwnedItem{
			{ID: "i1", Name: "Iron Ore", Quantity: 3, Tags: []string{"metal"}},
		},
		Attributes: map[string]float64{"mana": 5},
	}
	require.NoError(t, repo.UpdateActor(ctx, actor))

	loaded, err := repo.GetActor(ctx, "actor-rt")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, actor.Name, loaded.Name)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, float64(3), loaded.Items[0].Quantity)
	assert.Equal(t, float64(5), loaded.Attributes["mana"])

	// Upsert overwrites.
	actor.Items[0].Quantity = 1
	require.NoError(t, repo.UpdateActor(ctx, actor))
	loaded, err = repo.GetActor(ctx, "actor-rt")
	require.NoError(t, err)
	assert.Equal(t, float64(1), loaded.Items[0].Quantity)
}

func TestActorsRepository_TxRollback(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewActorsRepository(testPool, "quantity")

	actor := &domain.Actor{
		ID:    "actor-tx",
		Items: []domain.OwnedItem{{ID: "i1", Name: "Sage", Quantity: 4}},
	}
	require.NoError(t, repo.UpdateActor(ctx, actor))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := tx.GetActorForUpdate(ctx, "actor-tx")
	require.NoError(t, err)
	require.NotNil(t, locked)

	locked.Items[0].Quantity = 0
	require.NoError(t, tx.UpdateActor(ctx, locked))
	require.NoError(t, tx.Rollback(ctx))

	loaded, err := repo.GetActor(ctx, "actor-tx")
	require.NoError(t, err)
	assert.Equal(t, float64(4), loaded.Items[0].Quantity, "rolled back write must not persist")
}

func TestActorsRepository_TxCommitWithPending(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	actors := NewActorsRepository(testPool, "quantity")
	pending := NewPendingRepository(testPool)

	actor := &domain.Actor{
		ID:    "actor-commit",
		Items: []domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 2}},
	}
	require.NoError(t, actors.UpdateActor(ctx, actor))

	entry := domain.PendingCraft{
		RequestID: uuid.NewString(),
		ActorID:   "actor-commit",
		ReadyAt:   600,
		Items:     []domain.PendingItem{{Name: "Iron Bar", Quantity: 1}},
	}

	tx, err := actors.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := tx.GetActorForUpdate(ctx, "actor-commit")
	require.NoError(t, err)
	locked.Items[0].Quantity = 0
	require.NoError(t, tx.UpdateActor(ctx, locked))
	require.NoError(t, tx.AddPending(ctx, "actor-commit", entry))
	require.NoError(t, tx.Commit(ctx))

	loaded, err := actors.GetActor(ctx, "actor-commit")
	require.NoError(t, err)
	assert.Equal(t, float64(0), loaded.Items[0].Quantity)

	entries, err := pending.ListPending(ctx, "actor-commit")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.RequestID, entries[0].RequestID)
	assert.Equal(t, int64(600), entries[0].ReadyAt)
	require.Len(t, entries[0].Items, 1)
	assert.Equal(t, "Iron Bar", entries[0].Items[0].Name)

	require.NoError(t, pending.RemovePending(ctx, "actor-commit", entry.RequestID))
	entries, err = pending.ListPending(ctx, "actor-commit")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPendingRepository_ListActorsWithPending(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	pending := NewPendingRepository(testPool)

	first := domain.PendingCraft{RequestID: uuid.NewString(), ActorID: "sweep-a", ReadyAt: 10}
	second := domain.PendingCraft{RequestID: uuid.NewString(), ActorID: "sweep-a", ReadyAt: 20}
	third := domain.PendingCraft{RequestID: uuid.NewString(), ActorID: "sweep-b", ReadyAt: 30}

	require.NoError(t, pending.AddPending(ctx, "sweep-a", first))
	require.NoError(t, pending.AddPending(ctx, "sweep-a", second))
	require.NoError(t, pending.AddPending(ctx, "sweep-b", third))
	t.Cleanup(func() {
		pending.RemovePending(ctx, "sweep-a", first.RequestID)
		pending.RemovePending(ctx, "sweep-a", second.RequestID)
		pending.RemovePending(ctx, "sweep-b", third.RequestID)
	})

	actorIDs, err := pending.ListActorsWithPending(ctx)
	require.NoError(t, err)
	assert.Contains(t, actorIDs, "sweep-a")
	assert.Contains(t, actorIDs, "sweep-b")

	entries, err := pending.ListPending(ctx, "sweep-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.RequestID, entries[0].RequestID, "entries come back in ready order")
}

func TestPendingRepository_RemoveUnknown(t *testing.T) {
	requireDB(t)
	pending := NewPendingRepository(testPool)

	err := pending.RemovePending(context.Background(), "nobody", uuid.NewString())
	assert.Error(t, err)
}

func TestWorldRepository_RoundTrip(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	world := NewWorldRepository(testPool)

	require.NoError(t, world.SetWorldTime(ctx, 12345))
	got, err := world.GetWorldTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), got)
}
