// Package integrity holds the referential-integrity rules applied when
// catalog, recipe or schedule documents change. Every function is pure: it
// returns the documents to persist and leaves its inputs untouched.
package integrity

import (
	"fmt"

	"github.com/julianstephens/mealplan/internal/models"
)

// OnIngredientDeleted returns the recipes that referenced the ingredient,
// with those entries filtered out. Unaffected recipes are not returned.
func OnIngredientDeleted(ingredientID string, recipes []models.Recipe) []models.Recipe {
	var updated []models.Recipe
	for _, r := range recipes {
		if !r.Uses(ingredientID) {
			continue
		}
		next := r.Clone()
		kept := make([]models.RecipeIngredient, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			if ing.IngredientID != ingredientID {
				kept = append(kept, ing)
			}
		}
		next.Ingredients = kept
		updated = append(updated, next)
	}
	return updated
}

// OnRecipeDeleted returns the days that had a slot referencing the recipe,
// with those slots cleared. Unaffected days are not returned.
func OnRecipeDeleted(recipeID string, schedule []models.DaySchedule) []models.DaySchedule {
	var updated []models.DaySchedule
	for _, day := range schedule {
		changed := false
		next := day.Clone()
		for i, meal := range next.Meals {
			if meal.HasRecipe(recipeID) {
				next.Meals[i].RecipeID = nil
				changed = true
			}
		}
		if changed {
			updated = append(updated, next)
		}
	}
	return updated
}

// SetMeal returns day with the slot of mealType set to recipeID. The boolean
// is false when the slot already holds that value or the day has no such
// slot; callers skip the write in that case.
func SetMeal(day models.DaySchedule, mealType models.MealType, recipeID *string) (models.DaySchedule, bool) {
	for i, meal := range day.Meals {
		if meal.MealType != mealType {
			continue
		}
		if sameRecipe(meal.RecipeID, recipeID) {
			return day, false
		}
		next := day.Clone()
		if recipeID != nil {
			id := *recipeID
			next.Meals[i].RecipeID = &id
		} else {
			next.Meals[i].RecipeID = nil
		}
		return next, true
	}
	return day, false
}

// ClearWeek returns every day of the schedule with all slots unassigned.
func ClearWeek(schedule []models.DaySchedule) []models.DaySchedule {
	cleared := make([]models.DaySchedule, len(schedule))
	for i, day := range schedule {
		next := day.Clone()
		for j := range next.Meals {
			next.Meals[j].RecipeID = nil
		}
		cleared[i] = next
	}
	return cleared
}

func sameRecipe(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type ProblemKind string

const (
	ProblemMissingRecipe     ProblemKind = "missing_recipe"
	ProblemMissingIngredient ProblemKind = "missing_ingredient"
)

// Problem is one dangling reference found by Check.
type Problem struct {
	Kind ProblemKind
	// Location of the reference: a schedule slot or a recipe.
	Day      models.DayOfWeek
	MealType models.MealType
	RecipeID string
	// Ingredient that failed to resolve, for ProblemMissingIngredient.
	IngredientID string
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemMissingRecipe:
		return fmt.Sprintf("%s %s references missing recipe %s", p.Day, p.MealType, p.RecipeID)
	case ProblemMissingIngredient:
		return fmt.Sprintf("recipe %s references missing ingredient %s", p.RecipeID, p.IngredientID)
	}
	return string(p.Kind)
}

// Check lists every dangling reference from schedule slots to recipes and
// from recipes to ingredients, in schedule then recipe order.
func Check(schedule []models.DaySchedule, recipes []models.Recipe, ingredients []models.Ingredient) []Problem {
	recipeIDs := make(map[string]bool, len(recipes))
	for _, r := range recipes {
		recipeIDs[r.ID] = true
	}
	ingredientIDs := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		ingredientIDs[ing.ID] = true
	}

	var problems []Problem
	for _, day := range schedule {
		for _, meal := range day.Meals {
			if meal.RecipeID == nil || recipeIDs[*meal.RecipeID] {
				continue
			}
			problems = append(problems, Problem{
				Kind:     ProblemMissingRecipe,
				Day:      day.DayOfWeek,
				MealType: meal.MealType,
				RecipeID: *meal.RecipeID,
			})
		}
	}
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if ingredientIDs[ing.IngredientID] {
				continue
			}
			problems = append(problems, Problem{
				Kind:         ProblemMissingIngredient,
				RecipeID:     r.ID,
				IngredientID: ing.IngredientID,
			})
		}
	}
	return problems
}
