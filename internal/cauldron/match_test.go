package cauldron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelight/crucible/internal/domain"
)

func namedSlot(names ...string) domain.Ingredient {
	slot := domain.Ingredient{ID: "slot-" + names[0]}
	for _, name := range names {
		slot.Components = append(slot.Components, domain.Component{
			ID:       "comp-" + name,
			Name:     name,
			Quantity: 1,
			Strategy: domain.StrategyNamed,
		})
	}
	return slot
}

func recipeWithSlots(id string, slotNames ...string) domain.Recipe {
	r := domain.Recipe{ID: id, Name: id}
	for _, name := range slotNames {
		r.Ingredients = append(r.Ingredients, namedSlot(name))
	}
	return r
}

func TestMatchCloseness(t *testing.T) {
	recipe := recipeWithSlots("r", "Sage", "Thyme", "Newt Eye")

	assert.Equal(t, 0, matchCloseness(&recipe, toNameSet([]string{"Sage", "Thyme", "Newt Eye"})))
	assert.Equal(t, 1, matchCloseness(&recipe, toNameSet([]string{"Sage", "Thyme"})))
	assert.Equal(t, 3, matchCloseness(&recipe, toNameSet([]string{"Coal"})))
}

func TestMatchClosenessCountsSlotsNotComponents(t *testing.T) {
	// One slot with two alternatives counts once however it is satisfied.
	recipe := domain.Recipe{ID: "r", Ingredients: []domain.Ingredient{
		namedSlot("Sage", "Thyme"),
		namedSlot("Newt Eye"),
	}}

	assert.Equal(t, 1, matchCloseness(&recipe, toNameSet([]string{"Sage", "Thyme"})))
	assert.Equal(t, 0, matchCloseness(&recipe, toNameSet([]string{"Thyme", "Newt Eye"})))
}

func TestBestCandidatePrefersLowerCloseness(t *testing.T) {
	// Recipe A matches two of three slots, recipe B matches two of two.
	// B is the closer candidate even though A appears first.
	a := recipeWithSlots("recipe-a", "Sage", "Thyme", "Coal")
	b := recipeWithSlots("recipe-b", "Sage", "Thyme")
	books := []domain.RecipeBook{{ID: "book", Recipes: []domain.Recipe{a, b}}}

	dropped := toNameSet([]string{"Sage", "Thyme"})
	_, best := bestCandidate(books, dropped, "user", false)
	require.NotNil(t, best)
	assert.Equal(t, "recipe-b", best.ID)
}

func TestBestCandidateTieKeepsFirst(t *testing.T) {
	a := recipeWithSlots("recipe-a", "Sage", "Thyme")
	b := recipeWithSlots("recipe-b", "Sage", "Thyme")
	books := []domain.RecipeBook{{ID: "book", Recipes: []domain.Recipe{a, b}}}

	_, best := bestCandidate(books, toNameSet([]string{"Sage", "Thyme"}), "user", false)
	require.NotNil(t, best)
	assert.Equal(t, "recipe-a", best.ID)
}

func TestBestCandidateSkipsUnreferencedRecipes(t *testing.T) {
	unrelated := recipeWithSlots("unrelated", "Coal", "Flux")
	books := []domain.RecipeBook{{ID: "book", Recipes: []domain.Recipe{unrelated}}}

	_, best := bestCandidate(books, toNameSet([]string{"Sage", "Thyme"}), "user", false)
	assert.Nil(t, best)
}

func TestBestCandidateSkipsOwnedRecipes(t *testing.T) {
	owned := recipeWithSlots("owned", "Sage", "Thyme")
	owned.Ownership = map[string]domain.Permission{"user": domain.PermissionAllow}
	books := []domain.RecipeBook{{ID: "book", Recipes: []domain.Recipe{owned}}}

	dropped := toNameSet([]string{"Sage", "Thyme"})

	_, best := bestCandidate(books, dropped, "user", false)
	assert.Nil(t, best, "already-discovered recipes are not brewable")

	_, best = bestCandidate(books, dropped, "user", true)
	require.NotNil(t, best, "GMs may re-brew owned recipes")
	assert.Equal(t, "owned", best.ID)
}

func TestScoreMatch(t *testing.T) {
	recipe := recipeWithSlots("r", "Sage", "Thyme", "Newt Eye")

	extra, missing := scoreMatch(&recipe, toNameSet([]string{"Sage", "Thyme", "Newt Eye"}))
	assert.Zero(t, extra)
	assert.Zero(t, missing)

	extra, missing = scoreMatch(&recipe, toNameSet([]string{"Sage", "Thyme", "Coal"}))
	assert.Equal(t, 1, extra)
	assert.Equal(t, 1, missing)

	extra, missing = scoreMatch(&recipe, toNameSet([]string{"Sage", "Coal", "Flux"}))
	assert.Equal(t, 2, extra)
	assert.Equal(t, 2, missing)
}

func TestPartialKey(t *testing.T) {
	tests := []struct {
		extra, missing int
		want           string
	}{
		{2, 0, KeyExtra2},
		{0, 2, KeyMissing2},
		{1, 1, KeyExtra1Missing1},
		{1, 0, KeyExtra1},
		{0, 1, KeyMissing1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, partialKey(tc.extra, tc.missing))
	}
}
