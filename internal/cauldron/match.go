package cauldron

import (
	"github.com/forgelight/crucible/internal/domain"
)

// OutcomeKind classifies a brew result.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomePartial OutcomeKind = "partial"
	OutcomeFail    OutcomeKind = "fail"
)

// Partial message keys. Only these five (extra, missing) combinations are
// distinguishable when the match score is 1 or 2.
const (
	KeyExtra2         = "extra2"
	KeyMissing2       = "missing2"
	KeyExtra1Missing1 = "extra1missing1"
	KeyExtra1         = "extra1"
	KeyMissing1       = "missing1"
)

// maxPartialScore is the highest match score still reported as Partial.
const maxPartialScore = 2

type nameSet map[string]struct{}

func toNameSet(names []string) nameSet {
	set := make(nameSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// slotSatisfied reports whether any alternative component of the slot is
// named in the dropped set.
func slotSatisfied(slot *domain.Ingredient, dropped nameSet) bool {
	for _, comp := range slot.Components {
		if _, ok := dropped[comp.Name]; ok {
			return true
		}
	}
	return false
}

// matchCloseness is the number of ingredient slots the dropped set leaves
// unsatisfied. Lower is closer; zero means every slot is covered.
func matchCloseness(recipe *domain.Recipe, dropped nameSet) int {
	matched := 0
	for idx := range recipe.Ingredients {
		if slotSatisfied(&recipe.Ingredients[idx], dropped) {
			matched++
		}
	}
	return len(recipe.Ingredients) - matched
}

// bestCandidate scans the collection in order and picks the recipe with the
// globally minimum closeness. Ties keep the first candidate found. Recipes
// the user already owns are skipped unless acting as GM: the cauldron is a
// discovery mechanic.
func bestCandidate(books []domain.RecipeBook, dropped nameSet, userID string, isGM bool) (*domain.RecipeBook, *domain.Recipe) {
	var bestBook *domain.RecipeBook
	var bestRecipe *domain.Recipe
	bestCloseness := 0

	for bi := range books {
		book := &books[bi]
		for ri := range book.Recipes {
			recipe := &book.Recipes[ri]
			if !referencesAny(recipe, dropped) {
				continue
			}
			if !isGM && recipe.IsOwner(book, userID, false) {
				continue
			}

			closeness := matchCloseness(recipe, dropped)
			if bestRecipe == nil || closeness < bestCloseness {
				bestBook, bestRecipe, bestCloseness = book, recipe, closeness
			}
		}
	}
	return bestBook, bestRecipe
}

func referencesAny(recipe *domain.Recipe, dropped nameSet) bool {
	for name := range dropped {
		if recipe.HasComponent(name) || recipe.HasProduct(name) {
			return true
		}
	}
	return false
}

// scoreMatch computes how far the dropped set is from the winning recipe:
// extra counts dropped items no ingredient slot names, missing counts slots
// no dropped item satisfies.
func scoreMatch(recipe *domain.Recipe, dropped nameSet) (extra, missing int) {
	for name := range dropped {
		if !recipe.HasComponent(name) {
			extra++
		}
	}
	for idx := range recipe.Ingredients {
		if !slotSatisfied(&recipe.Ingredients[idx], dropped) {
			missing++
		}
	}
	return extra, missing
}

// partialKey maps an (extra, missing) pair with score 1 or 2 to its message
// key.
func partialKey(extra, missing int) string {
	switch {
	case extra == 2:
		return KeyExtra2
	case missing == 2:
		return KeyMissing2
	case extra == 1 && missing == 1:
		return KeyExtra1Missing1
	case extra == 1:
		return KeyExtra1
	default:
		return KeyMissing1
	}
}
