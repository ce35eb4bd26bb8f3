package models

import (
	"fmt"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts a difficulty name case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("invalid difficulty: %q (expected easy, medium or hard)", s)
}

// RecipeIngredient is owned by its recipe. Quantity is expressed in the unit
// of the referenced ingredient.
type RecipeIngredient struct {
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type Recipe struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Description *string            `json:"description,omitempty"`
	CookingTime *int               `json:"cooking_time,omitempty"` // minutes
	Difficulty  *Difficulty        `json:"difficulty,omitempty"`
}

func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe name cannot be empty")
	}

	for i, ing := range r.Ingredients {
		if ing.IngredientID == "" {
			return fmt.Errorf("ingredient %d: ingredient id cannot be empty", i+1)
		}
		if ing.Quantity < 0 {
			return fmt.Errorf("ingredient %d: quantity cannot be negative", i+1)
		}
	}

	if r.CookingTime != nil && *r.CookingTime < 0 {
		return fmt.Errorf("cooking time cannot be negative")
	}

	if r.Difficulty != nil {
		if _, err := ParseDifficulty(string(*r.Difficulty)); err != nil {
			return err
		}
	}

	return nil
}

// Uses reports whether the recipe references the given ingredient.
func (r *Recipe) Uses(ingredientID string) bool {
	for _, ing := range r.Ingredients {
		if ing.IngredientID == ingredientID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so cascades never alias the caller's slices.
func (r Recipe) Clone() Recipe {
	out := r
	if r.Ingredients != nil {
		out.Ingredients = make([]RecipeIngredient, len(r.Ingredients))
		copy(out.Ingredients, r.Ingredients)
	}
	if r.Description != nil {
		d := *r.Description
		out.Description = &d
	}
	if r.CookingTime != nil {
		c := *r.CookingTime
		out.CookingTime = &c
	}
	if r.Difficulty != nil {
		d := *r.Difficulty
		out.Difficulty = &d
	}
	return out
}
