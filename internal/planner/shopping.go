package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/mealplan/internal/constants"
	"github.com/julianstephens/mealplan/internal/logger"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/shopping"
	"github.com/julianstephens/mealplan/internal/storage"
)

// GenerateShoppingList aggregates the current schedule into a new list and
// replaces the stored one. Check marks of the previous list are dropped.
func (s *Service) GenerateShoppingList(ctx context.Context) (models.SavedShoppingList, error) {
	week, err := s.storedWeek(ctx)
	if err != nil {
		return models.SavedShoppingList{}, err
	}
	recipes, err := s.Recipes(ctx)
	if err != nil {
		return models.SavedShoppingList{}, err
	}
	ingredients, err := s.Ingredients(ctx)
	if err != nil {
		return models.SavedShoppingList{}, err
	}

	list, stats := shopping.GenerateWithStats(week, recipes, ingredients)
	if list == nil {
		list = models.ShoppingList{}
	}
	saved := models.SavedShoppingList{
		List:        list,
		Checked:     shopping.ResetChecked(),
		GeneratedAt: s.now().UTC(),
	}

	data, err := encode(saved)
	if err != nil {
		return models.SavedShoppingList{}, err
	}
	if err := s.store.Set(ctx, storage.ShoppingList, constants.ShoppingListDocID, data); err != nil {
		return models.SavedShoppingList{}, fmt.Errorf("failed to save shopping list: %w", err)
	}

	logger.Info("Generated shopping list", "meals", stats.Meals, "markets", len(list), "items", list.Len())
	if stats.MissingRecipes > 0 || stats.MissingIngredients > 0 {
		logger.Warn("Skipped dangling references", "recipes", stats.MissingRecipes, "ingredients", stats.MissingIngredients)
	}
	return saved, nil
}

// ShoppingList returns the last generated list with its check marks.
func (s *Service) ShoppingList(ctx context.Context) (models.SavedShoppingList, error) {
	rec, err := s.store.Get(ctx, storage.ShoppingList, constants.ShoppingListDocID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.SavedShoppingList{}, ErrNoShoppingList
	}
	if err != nil {
		return models.SavedShoppingList{}, err
	}

	var saved models.SavedShoppingList
	if err := json.Unmarshal(rec.Data, &saved); err != nil {
		return models.SavedShoppingList{}, fmt.Errorf("shopping list: %w", err)
	}
	if saved.Checked == nil {
		saved.Checked = shopping.ResetChecked()
	}
	return saved, nil
}

// SetItemChecked ticks or unticks one line item and persists the whole
// checklist.
func (s *Service) SetItemChecked(ctx context.Context, market, name string, checked bool) (models.CheckedState, error) {
	saved, err := s.ShoppingList(ctx)
	if err != nil {
		return nil, err
	}
	if !shopping.Contains(saved.List, market, name) {
		return nil, fmt.Errorf("%s at %s: %w", name, market, ErrItemNotFound)
	}

	next := shopping.SetChecked(saved.Checked, models.LineItemKey(market, name), checked)
	data, err := encode(map[string]any{"checked": next})
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, storage.ShoppingList, constants.ShoppingListDocID, data); err != nil {
		return nil, fmt.Errorf("failed to update shopping list: %w", err)
	}
	logger.Debug("Updated checked state", "market", market, "item", name, "checked", checked)
	return next, nil
}
