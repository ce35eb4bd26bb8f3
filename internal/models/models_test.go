package models

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestIngredientValidate(t *testing.T) {
	tests := []struct {
		name       string
		ingredient Ingredient
		wantErr    bool
	}{
		{
			name:       "valid ingredient",
			ingredient: Ingredient{Name: "Egg", Unit: "pcs", Market: "A"},
			wantErr:    false,
		},
		{
			name:       "empty name",
			ingredient: Ingredient{Name: "  ", Unit: "pcs", Market: "A"},
			wantErr:    true,
		},
		{
			name:       "empty unit",
			ingredient: Ingredient{Name: "Egg", Market: "A"},
			wantErr:    true,
		},
		{
			name:       "empty market",
			ingredient: Ingredient{Name: "Egg", Unit: "pcs"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ingredient.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Ingredient.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecipeValidate(t *testing.T) {
	negative := -5
	ten := 10
	bogus := Difficulty("impossible")
	easy := DifficultyEasy

	tests := []struct {
		name    string
		recipe  Recipe
		wantErr bool
	}{
		{
			name: "valid recipe with optional fields",
			recipe: Recipe{
				Name:        "Omelette",
				Ingredients: []RecipeIngredient{{IngredientID: "1", Quantity: 2}},
				CookingTime: &ten,
				Difficulty:  &easy,
			},
		},
		{
			name:   "recipe without ingredients",
			recipe: Recipe{Name: "Water"},
		},
		{
			name:    "empty name",
			recipe:  Recipe{Name: ""},
			wantErr: true,
		},
		{
			name:    "negative quantity",
			recipe:  Recipe{Name: "Bad", Ingredients: []RecipeIngredient{{IngredientID: "1", Quantity: -1}}},
			wantErr: true,
		},
		{
			name:    "missing ingredient id",
			recipe:  Recipe{Name: "Bad", Ingredients: []RecipeIngredient{{Quantity: 1}}},
			wantErr: true,
		},
		{
			name:    "negative cooking time",
			recipe:  Recipe{Name: "Bad", CookingTime: &negative},
			wantErr: true,
		},
		{
			name:    "unknown difficulty",
			recipe:  Recipe{Name: "Bad", Difficulty: &bogus},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.recipe.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Recipe.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecipeCloneDoesNotAlias(t *testing.T) {
	ten := 10
	original := Recipe{
		Name:        "Soup",
		Ingredients: []RecipeIngredient{{IngredientID: "1", Quantity: 1}},
		CookingTime: &ten,
	}

	clone := original.Clone()
	clone.Ingredients[0].Quantity = 99
	*clone.CookingTime = 20

	if original.Ingredients[0].Quantity != 1 {
		t.Errorf("original quantity changed to %v", original.Ingredients[0].Quantity)
	}
	if *original.CookingTime != 10 {
		t.Errorf("original cooking time changed to %d", *original.CookingTime)
	}
}

func TestParseDayOfWeek(t *testing.T) {
	tests := []struct {
		input   string
		want    DayOfWeek
		wantErr bool
	}{
		{"mon", Monday, false},
		{"Tuesday", Tuesday, false},
		{" SUN ", Sunday, false},
		{"1", Monday, false},
		{"7", Sunday, false},
		{"0", "", true},
		{"someday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDayOfWeek(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDayOfWeek(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDayOfWeek(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMealType(t *testing.T) {
	tests := []struct {
		input   string
		want    MealType
		wantErr bool
	}{
		{"breakfast", Breakfast, false},
		{"Snack 1", Snack1, false},
		{"snack2", Snack2, false},
		{"snack-1", Snack1, false},
		{"DINNER", Dinner, false},
		{"brunch", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMealType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMealType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMealType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEmptyWeekIsTotal(t *testing.T) {
	week := EmptyWeek()
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	for i, day := range week {
		if day.DayOfWeek != DaysOfWeek[i] {
			t.Errorf("day %d = %s, want %s", i, day.DayOfWeek, DaysOfWeek[i])
		}
		if len(day.Meals) != 5 {
			t.Fatalf("%s: expected 5 meals, got %d", day.DayOfWeek, len(day.Meals))
		}
		for j, meal := range day.Meals {
			if meal.MealType != MealTypes[j] {
				t.Errorf("%s slot %d = %s, want %s", day.DayOfWeek, j, meal.MealType, MealTypes[j])
			}
			if meal.RecipeID != nil {
				t.Errorf("%s %s should be unassigned", day.DayOfWeek, meal.MealType)
			}
		}
	}
	if week.AssignedSlots() != 0 {
		t.Errorf("AssignedSlots() = %d, want 0", week.AssignedSlots())
	}
}

func TestNormalizeWeek(t *testing.T) {
	stored := []DaySchedule{
		{
			DayOfWeek: Wednesday,
			Meals: []Meal{
				{MealType: Dinner, RecipeID: strPtr("r2")},
				{MealType: "Midnight Snack", RecipeID: strPtr("r9")},
				{MealType: Breakfast, RecipeID: strPtr("r1")},
			},
		},
		{DayOfWeek: "Funday", Meals: []Meal{{MealType: Lunch, RecipeID: strPtr("r3")}}},
	}

	week := NormalizeWeek(stored)
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}

	wed, ok := week.Day(Wednesday)
	if !ok {
		t.Fatal("Wednesday missing from normalized week")
	}
	if len(wed.Meals) != 5 {
		t.Fatalf("expected 5 meals, got %d", len(wed.Meals))
	}
	if wed.Meals[0].MealType != Breakfast || !wed.Meals[0].HasRecipe("r1") {
		t.Errorf("breakfast = %+v, want r1", wed.Meals[0])
	}
	if wed.Meals[4].MealType != Dinner || !wed.Meals[4].HasRecipe("r2") {
		t.Errorf("dinner = %+v, want r2", wed.Meals[4])
	}
	if week.AssignedSlots() != 2 {
		t.Errorf("AssignedSlots() = %d, want 2", week.AssignedSlots())
	}

	// The normalized copy must not alias stored recipe ids.
	*wed.Meals[0].RecipeID = "changed"
	if *stored[0].Meals[2].RecipeID != "r1" {
		t.Error("NormalizeWeek aliased stored recipe ids")
	}
}

func TestShoppingListJSONPreservesMarketOrder(t *testing.T) {
	var list ShoppingList
	list = list.Append("Zeta Market", ShoppingListItem{Name: "Milk", Quantity: 1, Unit: "l"})
	list = list.Append("Alpha Market", ShoppingListItem{Name: "Egg", Quantity: 4, Unit: "pcs"})
	list = list.Append("Zeta Market", ShoppingListItem{Name: "Bread", Quantity: 2, Unit: "loaf"})

	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"Zeta Market":[{"name":"Milk","quantity":1,"unit":"l"},{"name":"Bread","quantity":2,"unit":"loaf"}],"Alpha Market":[{"name":"Egg","quantity":4,"unit":"pcs"}]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s\nwant %s", data, want)
	}

	var decoded ShoppingList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	markets := decoded.Markets()
	if len(markets) != 2 || markets[0] != "Zeta Market" || markets[1] != "Alpha Market" {
		t.Errorf("decoded markets = %v, want [Zeta Market Alpha Market]", markets)
	}
	if decoded.Len() != 3 {
		t.Errorf("decoded Len() = %d, want 3", decoded.Len())
	}
}

func TestEmptyShoppingListEncodesAsObject(t *testing.T) {
	data, err := json.Marshal(ShoppingList(nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Marshal(nil list) = %s, want {}", data)
	}

	var decoded ShoppingList
	if err := json.Unmarshal([]byte("{}"), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected no markets, got %v", decoded.Markets())
	}
}

func TestLineItemKey(t *testing.T) {
	saved := SavedShoppingList{Checked: CheckedState{LineItemKey("A", "Egg"): true}}
	if !saved.IsChecked("A", "Egg") {
		t.Error("expected A/Egg to be checked")
	}
	if saved.IsChecked("B", "Egg") {
		t.Error("B/Egg should not be checked")
	}
}
