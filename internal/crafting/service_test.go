package crafting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelight/crucible/internal/config"
	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/hook"
)

const (
	testBookID  = "book-1"
	testActorID = "actor-1"
	testUserID  = "user-1"
)

func intPtr(v int) *int { return &v }

func namedComponent(name string, qty float64) domain.Component {
	return domain.Component{
		ID:       uuid.NewString(),
		Name:     name,
		Quantity: qty,
		Strategy: domain.StrategyNamed,
	}
}

func slotWith(name string, components ...domain.Component) domain.Ingredient {
	return domain.Ingredient{ID: uuid.NewString(), Name: name, Components: components}
}

// installRecipe registers a single-recipe book owned by the test user and
// returns the recipe id.
func (f *fixture) installRecipe(recipe domain.Recipe) string {
	recipe.ID = uuid.NewString()
	recipe.BookID = testBookID
	book, ok := f.books.books[testBookID]
	if !ok {
		book = &domain.RecipeBook{
			ID:        testBookID,
			Name:      "Test Book",
			Ownership: map[string]domain.Permission{testUserID: domain.PermissionAllow},
		}
		f.books.books[testBookID] = book
	}
	book.Recipes = append(book.Recipes, recipe)
	return recipe.ID
}

func (f *fixture) installActor(items []domain.OwnedItem, attrs map[string]float64) {
	f.store.actors[testActorID] = &domain.Actor{
		ID:         testActorID,
		Name:       "Test Actor",
		Items:      items,
		Attributes: attrs,
	}
}

func (f *fixture) craft(t *testing.T, recipeID string) (*Outcome, error) {
	t.Helper()
	return f.svc.Craft(context.Background(), Request{
		BookID:   testBookID,
		RecipeID: recipeID,
		ActorID:  testActorID,
		UserID:   testUserID,
	})
}

func (f *fixture) actorState(t *testing.T) *domain.Actor {
	t.Helper()
	actor, err := f.store.GetActor(context.Background(), testActorID)
	require.NoError(t, err)
	require.NotNil(t, actor)
	return actor
}

func ironBarRecipe() domain.Recipe {
	return domain.Recipe{
		Name:        "Iron Bar",
		Ingredients: []domain.Ingredient{slotWith("Ore", namedComponent("Iron Ore", 2))},
		Products:    []domain.Product{slotWith("Bar", namedComponent("Iron Bar", 1))},
	}
}

func TestCraftImmediateSuccess(t *testing.T) {
	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(ironBarRecipe())
	f.installActor([]domain.OwnedItem{
		{ID: "i1", Name: "Iron Ore", Quantity: 3},
	}, nil)

	outcome, err := f.craft(t, recipeID)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.False(t, outcome.Delayed)
	require.Len(t, outcome.Produced, 1)
	assert.Equal(t, "Iron Bar", outcome.Produced[0].Name)
	require.Len(t, outcome.Consumed, 1)
	assert.Equal(t, ConsumedItem{Name: "Iron Ore", Quantity: 2}, outcome.Consumed[0])
	assert.Equal(t, "assets/crafting.ogg", outcome.Sound)

	actor := f.actorState(t)
	assert.Equal(t, float64(1), actor.ItemByName("Iron Ore").Quantity)
	assert.Equal(t, float64(1), actor.ItemByName("Iron Bar").Quantity)

	msg := f.sink.last()
	require.NotNil(t, msg)
	assert.Contains(t, msg.Content, "Crafted Iron Bar")
	assert.Equal(t, []string{testUserID}, msg.Whisper)
}

func TestCraftProductionMergesExistingStack(t *testing.T) {
	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(ironBarRecipe())
	f.installActor([]domain.OwnedItem{
		{ID: "i1", Name: "Iron Ore", Quantity: 2},
		{ID: "i2", Name: "Iron Bar", Quantity: 2},
	}, nil)

	_, err := f.craft(t, recipeID)
	require.NoError(t, err)

	actor := f.actorState(t)
	assert.Equal(t, float64(3), actor.ItemByName("Iron Bar").Quantity)
	assert.Len(t, actor.Items, 1, "iron ore stack should be gone, bar stack merged")
}

func TestCraftMergesDuplicateComponents(t *testing.T) {
	// Two slots each wanting one unit of the same item book two units total.
	recipe := domain.Recipe{
		Name: "Double Ore",
		Ingredients: []domain.Ingredient{
			slotWith("First", namedComponent("Iron Ore", 1)),
			slotWith("Second", namedComponent("Iron Ore", 1)),
		},
		Products: []domain.Product{slotWith("Out", namedComponent("Ingot", 1))},
	}

	t.Run("insufficient for merged total", func(t *testing.T) {
		f := newFixture(config.ConsumeModeStrict)
		recipeID := f.installRecipe(recipe)
		f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 1}}, nil)

		_, err := f.craft(t, recipeID)
		assert.ErrorIs(t, err, domain.ErrInsufficientResource)

		actor := f.actorState(t)
		assert.Equal(t, float64(1), actor.ItemByName("Iron Ore").Quantity, "strict mode keeps the actor untouched")
	})

	t.Run("consumes merged total once", func(t *testing.T) {
		f := newFixture(config.ConsumeModeStrict)
		recipeID := f.installRecipe(recipe)
		f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 2}}, nil)

		outcome, err := f.craft(t, recipeID)
		require.NoError(t, err)
		require.Len(t, outcome.Consumed, 1)
		assert.Equal(t, float64(2), outcome.Consumed[0].Quantity)

		actor := f.actorState(t)
		assert.Nil(t, actor.ItemByName("Iron Ore"))
	})
}

func TestCraftToolMissing(t *testing.T) {
	recipe := ironBarRecipe()
	recipe.Tools = []string{"Hammer"}

	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(recipe)
	f.books.books[testBookID].Tools = []string{"Anvil"}
	f.installActor([]domain.OwnedItem{
		{ID: "i1", Name: "Iron Ore", Quantity: 3},
		{ID: "i2", Name: "Hammer", Quantity: 1},
	}, nil)

	_, err := f.craft(t, recipeID)
	assert.ErrorIs(t, err, domain.ErrToolMissing)
	assert.Contains(t, err.Error(), "Anvil", "book tools are required alongside recipe tools")

	actor := f.actorState(t)
	assert.Equal(t, float64(3), actor.ItemByName("Iron Ore").Quantity)
}

func TestCraftTagPoolDrain(t *testing.T) {
	pooled := domain.Component{
		ID:       uuid.NewString(),
		Name:     "Any Herb",
		Quantity: 4,
		Tags:     []string{"herb"},
		Strategy: domain.StrategyTagPool,
	}
	recipe := domain.Recipe{
		Name:        "Herbal Paste",
		Ingredients: []domain.Ingredient{slotWith("Herbs", pooled)},
		Products:    []domain.Product{slotWith("Out", namedComponent("Paste", 1))},
	}

	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(recipe)
	f.installActor([]domain.OwnedItem{
		{ID: "i1", Name: "Sage", Quantity: 3, Tags: []string{"herb"}},
		{ID: "i2", Name: "Thyme", Quantity: 2, Tags: []string{"herb"}},
	}, nil)

	_, err := f.craft(t, recipeID)
	require.NoError(t, err)

	actor := f.actorState(t)
	assert.Nil(t, actor.ItemByName("Sage"), "earlier pool item is drained first and fully")
	assert.Equal(t, float64(1), actor.ItemByName("Thyme").Quantity, "last pool item is split, not deleted")
}

func TestCraftAttributeConsumption(t *testing.T) {
	manaComp := domain.Component{
		ID:            uuid.NewString(),
		Name:          "Mana",
		Quantity:      3,
		AttributePath: "mana",
		Strategy:      domain.StrategyAttribute,
	}
	recipe := domain.Recipe{
		Name:        "Mana Potion",
		Ingredients: []domain.Ingredient{slotWith("Essence", manaComp)},
		Products:    []domain.Product{slotWith("Out", namedComponent("Potion", 1))},
	}

	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(recipe)
	f.installActor(nil, map[string]float64{"mana": 5})

	_, err := f.craft(t, recipeID)
	require.NoError(t, err)

	actor := f.actorState(t)
	assert.Equal(t, float64(2), actor.Attributes["mana"])
}

func TestCraftHookFailNothingConsumed(t *testing.T) {
	f := newFixture(config.ConsumeModeStrict)
	f.hook.result = hook.Result{Success: false, Consume: false}
	recipeID := f.installRecipe(ironBarRecipe())
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 3}}, nil)

	_, err := f.craft(t, recipeID)
	assert.ErrorIs(t, err, domain.ErrCraftFailedNotConsumed)

	actor := f.actorState(t)
	assert.Equal(t, float64(3), actor.ItemByName("Iron Ore").Quantity)
	assert.Nil(t, actor.ItemByName("Iron Bar"))
}

func TestCraftHookFailConsumed(t *testing.T) {
	f := newFixture(config.ConsumeModeStrict)
	f.hook.result = hook.Result{Success: false, Consume: true}
	recipeID := f.installRecipe(ironBarRecipe())
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 3}}, nil)

	_, err := f.craft(t, recipeID)
	assert.ErrorIs(t, err, domain.ErrCraftFailedConsumed)

	actor := f.actorState(t)
	assert.Equal(t, float64(1), actor.ItemByName("Iron Ore").Quantity, "the spend sticks")
	assert.Nil(t, actor.ItemByName("Iron Bar"), "production is skipped")
}

func TestCraftHookSeesProductSnapshots(t *testing.T) {
	// The product is snapshotted before the verdict so even a rejecting
	// script can see what the craft would deliver.
	f := newFixture(config.ConsumeModeStrict)
	f.hook.result = hook.Result{Success: false, Consume: false}
	recipeID := f.installRecipe(ironBarRecipe())
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 3}}, nil)

	_, err := f.craft(t, recipeID)
	assert.ErrorIs(t, err, domain.ErrCraftFailedNotConsumed)

	require.Len(t, f.hook.lastInput.ProductSnapshots, 1)
	assert.Equal(t, "Iron Bar", f.hook.lastInput.ProductSnapshots[0].Name)
	assert.Equal(t, float64(1), f.hook.lastInput.ProductSnapshots[0].Quantity)
}

func TestCraftConsumeModes(t *testing.T) {
	// First slot is satisfiable, second is not. Strict mode must leave the
	// actor untouched; legacy mode persists the first spend before erroring.
	recipe := domain.Recipe{
		Name: "Alloy",
		Ingredients: []domain.Ingredient{
			slotWith("First", namedComponent("Iron Ore", 1)),
			slotWith("Second", namedComponent("Gold Ore", 1)),
		},
		Products: []domain.Product{slotWith("Out", namedComponent("Alloy Bar", 1))},
	}
	items := func() []domain.OwnedItem {
		return []domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 2}}
	}

	t.Run("strict", func(t *testing.T) {
		f := newFixture(config.ConsumeModeStrict)
		recipeID := f.installRecipe(recipe)
		f.installActor(items(), nil)

		_, err := f.craft(t, recipeID)
		assert.ErrorIs(t, err, domain.ErrInsufficientResource)

		actor := f.actorState(t)
		assert.Equal(t, float64(2), actor.ItemByName("Iron Ore").Quantity)
	})

	t.Run("legacy", func(t *testing.T) {
		f := newFixture(config.ConsumeModeLegacy)
		recipeID := f.installRecipe(recipe)
		f.installActor(items(), nil)

		_, err := f.craft(t, recipeID)
		assert.ErrorIs(t, err, domain.ErrInsufficientResource)

		actor := f.actorState(t)
		assert.Equal(t, float64(1), actor.ItemByName("Iron Ore").Quantity)
	})
}

func TestCraftDefaultSelectionFallback(t *testing.T) {
	gold := namedComponent("Gold Ore", 1)
	iron := namedComponent("Iron Ore", 1)
	recipe := domain.Recipe{
		Name:        "Bar",
		Ingredients: []domain.Ingredient{slotWith("Ore", gold, iron)},
		Products:    []domain.Product{slotWith("Out", namedComponent("Bar", 1))},
	}

	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(recipe)
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 2}}, nil)

	outcome, err := f.craft(t, recipeID)
	require.NoError(t, err)
	require.Len(t, outcome.Consumed, 1)
	assert.Equal(t, "Iron Ore", outcome.Consumed[0].Name, "first satisfied alternative wins")
}

func TestCraftExplicitSelection(t *testing.T) {
	gold := namedComponent("Gold Ore", 1)
	iron := namedComponent("Iron Ore", 1)
	slot := slotWith("Ore", iron, gold)
	recipe := domain.Recipe{
		Name:        "Bar",
		Ingredients: []domain.Ingredient{slot},
		Products:    []domain.Product{slotWith("Out", namedComponent("Bar", 1))},
	}

	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(recipe)
	f.installActor([]domain.OwnedItem{
		{ID: "i1", Name: "Iron Ore", Quantity: 2},
		{ID: "i2", Name: "Gold Ore", Quantity: 2},
	}, nil)

	outcome, err := f.svc.Craft(context.Background(), Request{
		BookID:    testBookID,
		RecipeID:  recipeID,
		ActorID:   testActorID,
		UserID:    testUserID,
		Selection: map[string]string{slot.ID: gold.ID},
	})
	require.NoError(t, err)
	require.Len(t, outcome.Consumed, 1)
	assert.Equal(t, "Gold Ore", outcome.Consumed[0].Name)

	actor := f.actorState(t)
	assert.Equal(t, float64(2), actor.ItemByName("Iron Ore").Quantity)
	assert.Equal(t, float64(1), actor.ItemByName("Gold Ore").Quantity)
}

func TestCraftOwnershipDenied(t *testing.T) {
	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(ironBarRecipe())
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 3}}, nil)

	_, err := f.svc.Craft(context.Background(), Request{
		BookID:   testBookID,
		RecipeID: recipeID,
		ActorID:  testActorID,
		UserID:   "stranger",
	})
	assert.ErrorIs(t, err, domain.ErrNoPermission)
}

func TestCraftUnknownRecipe(t *testing.T) {
	f := newFixture(config.ConsumeModeStrict)
	f.installRecipe(ironBarRecipe())

	_, err := f.craft(t, "no-such-recipe")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestCraftDelayedSchedulesPending(t *testing.T) {
	recipe := ironBarRecipe()
	recipe.TimeMinutes = intPtr(10)

	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(recipe)
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 3}}, nil)
	require.NoError(t, f.store.SetWorldTime(context.Background(), 100))

	outcome, err := f.craft(t, recipeID)
	require.NoError(t, err)

	assert.True(t, outcome.Delayed)
	assert.NotEmpty(t, outcome.RequestID)
	assert.Equal(t, int64(700), outcome.ReadyAt)
	assert.Empty(t, outcome.Sound, "completion cue plays on delivery, not on scheduling")
	assert.Empty(t, outcome.Produced)

	actor := f.actorState(t)
	assert.Equal(t, float64(1), actor.ItemByName("Iron Ore").Quantity, "ingredients are spent up front")
	assert.Nil(t, actor.ItemByName("Iron Bar"))

	entries, err := f.store.ListPending(context.Background(), testActorID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, outcome.RequestID, entries[0].RequestID)
	assert.Equal(t, int64(700), entries[0].ReadyAt)
}

func TestProcessDelayedBoundary(t *testing.T) {
	recipe := ironBarRecipe()
	recipe.TimeMinutes = intPtr(10)

	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(recipe)
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 3}}, nil)
	require.NoError(t, f.store.SetWorldTime(context.Background(), 100))

	_, err := f.craft(t, recipeID)
	require.NoError(t, err)

	// One world-second short of ready: nothing delivers.
	require.NoError(t, f.store.SetWorldTime(context.Background(), 699))
	delivered, err := f.svc.ProcessDelayed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered)
	assert.Nil(t, f.actorState(t).ItemByName("Iron Bar"))

	// Exactly at ready: the entry delivers and is removed.
	require.NoError(t, f.store.SetWorldTime(context.Background(), 700))
	delivered, err = f.svc.ProcessDelayed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	actor := f.actorState(t)
	require.NotNil(t, actor.ItemByName("Iron Bar"))
	assert.Equal(t, float64(1), actor.ItemByName("Iron Bar").Quantity)

	entries, err := f.store.ListPending(context.Background(), testActorID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	msg := f.sink.last()
	require.NotNil(t, msg)
	assert.Contains(t, msg.Content, "Crafting finished")
	assert.Equal(t, "assets/crafting.ogg", msg.Sound)

	// A second sweep finds nothing.
	delivered, err = f.svc.ProcessDelayed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestAvailabilityReport(t *testing.T) {
	f := newFixture(config.ConsumeModeStrict)
	recipeID := f.installRecipe(ironBarRecipe())
	f.installActor([]domain.OwnedItem{{ID: "i1", Name: "Iron Ore", Quantity: 1}}, nil)

	result, err := f.svc.Availability(context.Background(), testBookID, recipeID, testActorID)
	require.NoError(t, err)
	assert.False(t, result.CanCraft, "one ore cannot cover a two-ore slot")

	f.store.actors[testActorID].Items[0].Quantity = 2
	result, err = f.svc.Availability(context.Background(), testBookID, recipeID, testActorID)
	require.NoError(t, err)
	assert.True(t, result.CanCraft)
}
