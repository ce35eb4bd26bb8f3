package planner

import (
	"context"
	"fmt"

	"github.com/julianstephens/mealplan/internal/integrity"
	"github.com/julianstephens/mealplan/internal/logger"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/storage"
)

// RecipePatch lists the fields to change; nil fields are left alone.
type RecipePatch struct {
	Name        *string
	Ingredients *[]models.RecipeIngredient
	Description *string
	CookingTime *int
	Difficulty  *models.Difficulty
}

func (p RecipePatch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Ingredients != nil {
		ings := *p.Ingredients
		if ings == nil {
			ings = []models.RecipeIngredient{}
		}
		fields["ingredients"] = ings
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.CookingTime != nil {
		fields["cooking_time"] = *p.CookingTime
	}
	if p.Difficulty != nil {
		fields["difficulty"] = *p.Difficulty
	}
	return fields
}

func (p RecipePatch) apply(r models.Recipe) models.Recipe {
	next := r.Clone()
	if p.Name != nil {
		next.Name = *p.Name
	}
	if p.Ingredients != nil {
		next.Ingredients = append([]models.RecipeIngredient{}, (*p.Ingredients)...)
	}
	if p.Description != nil {
		d := *p.Description
		next.Description = &d
	}
	if p.CookingTime != nil {
		c := *p.CookingTime
		next.CookingTime = &c
	}
	if p.Difficulty != nil {
		d := *p.Difficulty
		next.Difficulty = &d
	}
	return next
}

func (s *Service) Recipes(ctx context.Context) ([]models.Recipe, error) {
	snap, err := s.store.List(ctx, storage.Recipes)
	if err != nil {
		return nil, err
	}
	return decodeRecipes(snap)
}

func (s *Service) Recipe(ctx context.Context, id string) (models.Recipe, error) {
	rec, err := s.store.Get(ctx, storage.Recipes, id)
	if err != nil {
		return models.Recipe{}, err
	}
	return decodeRecipe(rec)
}

// AddRecipe validates r and stores it under a new id.
func (s *Service) AddRecipe(ctx context.Context, r models.Recipe) (models.Recipe, error) {
	if err := r.Validate(); err != nil {
		return models.Recipe{}, err
	}
	r = r.Clone()
	r.ID = ""
	if r.Ingredients == nil {
		r.Ingredients = []models.RecipeIngredient{}
	}
	data, err := encode(r)
	if err != nil {
		return models.Recipe{}, err
	}
	id, err := s.store.Add(ctx, storage.Recipes, data)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("failed to add recipe: %w", err)
	}
	r.ID = id
	logger.Debug("Added recipe", "id", id, "name", r.Name, "ingredients", len(r.Ingredients))
	return r, nil
}

func (s *Service) UpdateRecipe(ctx context.Context, id string, patch RecipePatch) (models.Recipe, error) {
	current, err := s.Recipe(ctx, id)
	if err != nil {
		return models.Recipe{}, err
	}
	next := patch.apply(current)
	if err := next.Validate(); err != nil {
		return models.Recipe{}, err
	}

	fields := patch.fields()
	if len(fields) == 0 {
		return current, nil
	}
	data, err := encode(fields)
	if err != nil {
		return models.Recipe{}, err
	}
	if err := s.store.Update(ctx, storage.Recipes, id, data); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to update recipe: %w", err)
	}
	logger.Debug("Updated recipe", "id", id)
	return next, nil
}

// DeleteRecipe removes the recipe and clears every schedule slot that
// referenced it, in one batch.
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	snap, err := s.store.List(ctx, storage.Schedule)
	if err != nil {
		return err
	}
	days, err := decodeDays(snap)
	if err != nil {
		return err
	}
	updated := integrity.OnRecipeDeleted(id, days)

	writes := make([]storage.Write, 0, len(updated)+1)
	for _, day := range updated {
		data, err := encode(day)
		if err != nil {
			return err
		}
		writes = append(writes, storage.Write{Collection: storage.Schedule, ID: string(day.DayOfWeek), Op: storage.OpSet, Data: data})
	}
	writes = append(writes, storage.Write{Collection: storage.Recipes, ID: id, Op: storage.OpDelete})

	s.beforeDestructive()
	if err := s.store.BatchWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if len(updated) > 0 {
		logger.Info("Deleted recipe and cleared scheduled meals", "id", id, "days", len(updated))
	} else {
		logger.Debug("Deleted recipe", "id", id)
	}
	return nil
}
