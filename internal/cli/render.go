package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/mealplan/internal/models"
)

// RenderSchedule draws the week, one block per day. Slots whose recipe no
// longer exists show the dangling id.
func RenderSchedule(week models.WeeklySchedule, recipes []models.Recipe) string {
	names := make(map[string]string, len(recipes))
	for _, r := range recipes {
		names[r.ID] = r.Name
	}

	var b strings.Builder
	for i, day := range week {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(HeaderStyle.Render(string(day.DayOfWeek)))
		b.WriteString("\n")
		for _, meal := range day.Meals {
			var value string
			switch {
			case meal.RecipeID == nil:
				value = MutedStyle.Render("-")
			case names[*meal.RecipeID] != "":
				value = recipeStyle.Render(names[*meal.RecipeID])
			default:
				value = MutedStyle.Render(fmt.Sprintf("missing recipe %s", *meal.RecipeID))
			}
			fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(string(meal.MealType)), value)
		}
	}
	return b.String()
}

// RenderShoppingList draws the list grouped by market, ticking off checked
// items.
func RenderShoppingList(saved models.SavedShoppingList) string {
	if saved.List.Len() == 0 {
		return MutedStyle.Render("Shopping list is empty") + "\n"
	}

	var b strings.Builder
	for i, g := range saved.List {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(HeaderStyle.Render(g.Market))
		b.WriteString("\n")
		for _, item := range g.Items {
			line := fmt.Sprintf("%s %s %s", item.Name, FormatQuantity(item.Quantity), item.Unit)
			if saved.IsChecked(g.Market, item.Name) {
				fmt.Fprintf(&b, "  [x] %s\n", checkedStyle.Render(line))
			} else {
				fmt.Fprintf(&b, "  [ ] %s\n", line)
			}
		}
	}
	return b.String()
}

// RenderRecipe shows one recipe with its resolved ingredients.
func RenderRecipe(r models.Recipe, ingredients []models.Ingredient) string {
	byID := make(map[string]models.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		byID[ing.ID] = ing
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", HeaderStyle.Render(r.Name), MutedStyle.Render("("+r.ID+")"))
	if r.Description != nil {
		fmt.Fprintf(&b, "  %s\n", *r.Description)
	}
	if r.CookingTime != nil {
		fmt.Fprintf(&b, "  %s %d min\n", labelStyle.Render("Time"), *r.CookingTime)
	}
	if r.Difficulty != nil {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("Level"), *r.Difficulty)
	}
	if len(r.Ingredients) == 0 {
		fmt.Fprintf(&b, "  %s\n", MutedStyle.Render("No ingredients"))
		return b.String()
	}
	for _, ri := range r.Ingredients {
		ing, ok := byID[ri.IngredientID]
		if !ok {
			fmt.Fprintf(&b, "  - %s\n", MutedStyle.Render(fmt.Sprintf("%s missing ingredient %s", FormatQuantity(ri.Quantity), ri.IngredientID)))
			continue
		}
		fmt.Fprintf(&b, "  - %s %s %s (%s)\n", FormatQuantity(ri.Quantity), ing.Unit, ing.Name, ing.Market)
	}
	return b.String()
}
