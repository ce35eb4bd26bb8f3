// Package shopping derives the shopping list from the weekly schedule.
package shopping

import "github.com/julianstephens/mealplan/internal/models"

// Stats describes what a generation pass resolved and skipped.
type Stats struct {
	Meals              int // scheduled slots whose recipe resolved
	MissingRecipes     int
	MissingIngredients int
}

type lineKey struct {
	market string
	name   string
}

type entry struct {
	market string
	item   models.ShoppingListItem
}

// Generate aggregates the ingredients of every scheduled meal into a list
// grouped by market. Quantities of the same (market, name) pair are summed.
// References that do not resolve are skipped; Generate never fails.
func Generate(schedule []models.DaySchedule, recipes []models.Recipe, ingredients []models.Ingredient) models.ShoppingList {
	list, _ := GenerateWithStats(schedule, recipes, ingredients)
	return list
}

// GenerateWithStats is Generate plus a count of resolved meals and skipped
// references.
func GenerateWithStats(schedule []models.DaySchedule, recipes []models.Recipe, ingredients []models.Ingredient) (models.ShoppingList, Stats) {
	var stats Stats

	recipeByID := make(map[string]*models.Recipe, len(recipes))
	for i := range recipes {
		recipeByID[recipes[i].ID] = &recipes[i]
	}
	ingredientByID := make(map[string]*models.Ingredient, len(ingredients))
	for i := range ingredients {
		ingredientByID[ingredients[i].ID] = &ingredients[i]
	}

	// Step 1: accumulate in traversal order (day, slot, recipe ingredient)
	index := make(map[lineKey]int)
	var entries []entry

	for _, day := range schedule {
		for _, meal := range day.Meals {
			if meal.RecipeID == nil {
				continue
			}
			recipe, ok := recipeByID[*meal.RecipeID]
			if !ok {
				stats.MissingRecipes++
				continue
			}
			stats.Meals++

			for _, ri := range recipe.Ingredients {
				ing, ok := ingredientByID[ri.IngredientID]
				if !ok {
					stats.MissingIngredients++
					continue
				}

				key := lineKey{market: ing.Market, name: ing.Name}
				if i, exists := index[key]; exists {
					entries[i].item.Quantity += ri.Quantity
					continue
				}
				index[key] = len(entries)
				entries = append(entries, entry{
					market: ing.Market,
					item: models.ShoppingListItem{
						Name:     ing.Name,
						Quantity: ri.Quantity,
						Unit:     ing.Unit,
					},
				})
			}
		}
	}

	// Step 2: regroup by market, first-seen order
	var list models.ShoppingList
	for _, e := range entries {
		list = list.Append(e.market, e.item)
	}

	return list, stats
}
