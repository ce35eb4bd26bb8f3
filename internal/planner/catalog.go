package planner

import (
	"context"
	"fmt"

	"github.com/julianstephens/mealplan/internal/integrity"
	"github.com/julianstephens/mealplan/internal/logger"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/storage"
)

// IngredientPatch lists the fields to change; nil fields are left alone.
type IngredientPatch struct {
	Name   *string
	Unit   *string
	Market *string
}

func (p IngredientPatch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Unit != nil {
		fields["unit"] = *p.Unit
	}
	if p.Market != nil {
		fields["market"] = *p.Market
	}
	return fields
}

func (p IngredientPatch) apply(ing models.Ingredient) models.Ingredient {
	if p.Name != nil {
		ing.Name = *p.Name
	}
	if p.Unit != nil {
		ing.Unit = *p.Unit
	}
	if p.Market != nil {
		ing.Market = *p.Market
	}
	return ing
}

func (s *Service) Ingredients(ctx context.Context) ([]models.Ingredient, error) {
	snap, err := s.store.List(ctx, storage.Ingredients)
	if err != nil {
		return nil, err
	}
	return decodeIngredients(snap)
}

func (s *Service) Ingredient(ctx context.Context, id string) (models.Ingredient, error) {
	rec, err := s.store.Get(ctx, storage.Ingredients, id)
	if err != nil {
		return models.Ingredient{}, err
	}
	return decodeIngredient(rec)
}

// AddIngredient validates ing and stores it under a new id.
func (s *Service) AddIngredient(ctx context.Context, ing models.Ingredient) (models.Ingredient, error) {
	if err := ing.Validate(); err != nil {
		return models.Ingredient{}, err
	}
	ing.ID = ""
	data, err := encode(ing)
	if err != nil {
		return models.Ingredient{}, err
	}
	id, err := s.store.Add(ctx, storage.Ingredients, data)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("failed to add ingredient: %w", err)
	}
	ing.ID = id
	logger.Debug("Added ingredient", "id", id, "name", ing.Name)
	return ing, nil
}

// UpdateIngredient writes only the fields set in patch. Recipes keep
// referencing the ingredient by id, so no cascade is needed.
func (s *Service) UpdateIngredient(ctx context.Context, id string, patch IngredientPatch) (models.Ingredient, error) {
	current, err := s.Ingredient(ctx, id)
	if err != nil {
		return models.Ingredient{}, err
	}
	next := patch.apply(current)
	if err := next.Validate(); err != nil {
		return models.Ingredient{}, err
	}

	fields := patch.fields()
	if len(fields) == 0 {
		return current, nil
	}
	data, err := encode(fields)
	if err != nil {
		return models.Ingredient{}, err
	}
	if err := s.store.Update(ctx, storage.Ingredients, id, data); err != nil {
		return models.Ingredient{}, fmt.Errorf("failed to update ingredient: %w", err)
	}
	logger.Debug("Updated ingredient", "id", id)
	return next, nil
}

// DeleteIngredient removes the ingredient and strips it from every recipe
// that uses it, in one batch.
func (s *Service) DeleteIngredient(ctx context.Context, id string) error {
	recipes, err := s.Recipes(ctx)
	if err != nil {
		return err
	}
	updated := integrity.OnIngredientDeleted(id, recipes)

	writes := make([]storage.Write, 0, len(updated)+1)
	for _, r := range updated {
		recipeID := r.ID
		r.ID = ""
		data, err := encode(r)
		if err != nil {
			return err
		}
		writes = append(writes, storage.Write{Collection: storage.Recipes, ID: recipeID, Op: storage.OpSet, Data: data})
	}
	writes = append(writes, storage.Write{Collection: storage.Ingredients, ID: id, Op: storage.OpDelete})

	s.beforeDestructive()
	if err := s.store.BatchWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	if len(updated) > 0 {
		logger.Info("Deleted ingredient and updated recipes", "id", id, "recipes", len(updated))
	} else {
		logger.Debug("Deleted ingredient", "id", id)
	}
	return nil
}
