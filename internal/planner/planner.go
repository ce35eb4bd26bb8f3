// Package planner applies user mutations to the catalog, recipes, schedule
// and shopping list. It reads snapshots from a storage.Adapter, runs the pure
// rules of the integrity and shopping packages and persists the result,
// batching every cascade into a single atomic write.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/mealplan/internal/integrity"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/storage"
)

var (
	ErrNoShoppingList = errors.New("no shopping list generated yet, run 'mealplan shop generate' first")
	ErrItemNotFound   = errors.New("item not on the shopping list")
)

type Service struct {
	store  storage.Adapter
	backup func()
	now    func() time.Time
}

func New(store storage.Adapter) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// SetBackupHook registers fn to run before cascading deletes and schedule
// clears.
func (s *Service) SetBackupHook(fn func()) {
	s.backup = fn
}

func (s *Service) beforeDestructive() {
	if s.backup != nil {
		s.backup()
	}
}

// Store returns the adapter the service writes to.
func (s *Service) Store() storage.Adapter {
	return s.store
}

func encode(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func decodeIngredient(rec storage.Record) (models.Ingredient, error) {
	var ing models.Ingredient
	if err := json.Unmarshal(rec.Data, &ing); err != nil {
		return models.Ingredient{}, fmt.Errorf("ingredient %s: %w", rec.ID, err)
	}
	ing.ID = rec.ID
	return ing, nil
}

func decodeIngredients(snap storage.Snapshot) ([]models.Ingredient, error) {
	out := make([]models.Ingredient, 0, len(snap))
	for _, rec := range snap {
		ing, err := decodeIngredient(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

func decodeRecipe(rec storage.Record) (models.Recipe, error) {
	var r models.Recipe
	if err := json.Unmarshal(rec.Data, &r); err != nil {
		return models.Recipe{}, fmt.Errorf("recipe %s: %w", rec.ID, err)
	}
	r.ID = rec.ID
	return r, nil
}

func decodeRecipes(snap storage.Snapshot) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(snap))
	for _, rec := range snap {
		r, err := decodeRecipe(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func decodeDays(snap storage.Snapshot) ([]models.DaySchedule, error) {
	out := make([]models.DaySchedule, 0, len(snap))
	for _, rec := range snap {
		var d models.DaySchedule
		if err := json.Unmarshal(rec.Data, &d); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", rec.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Summary is the dashboard overview of the stored data.
type Summary struct {
	Ingredients     int
	Recipes         int
	AssignedSlots   int
	TotalSlots      int
	HasShoppingList bool
	ShoppingItems   int
	CheckedItems    int
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	ingredients, err := s.Ingredients(ctx)
	if err != nil {
		return Summary{}, err
	}
	recipes, err := s.Recipes(ctx)
	if err != nil {
		return Summary{}, err
	}
	week, err := s.storedWeek(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		Ingredients:   len(ingredients),
		Recipes:       len(recipes),
		AssignedSlots: week.AssignedSlots(),
		TotalSlots:    len(models.DaysOfWeek) * len(models.MealTypes),
	}

	saved, err := s.ShoppingList(ctx)
	switch {
	case errors.Is(err, ErrNoShoppingList):
	case err != nil:
		return Summary{}, err
	default:
		sum.HasShoppingList = true
		sum.ShoppingItems = saved.List.Len()
		for _, g := range saved.List {
			for _, item := range g.Items {
				if saved.IsChecked(g.Market, item.Name) {
					sum.CheckedItems++
				}
			}
		}
	}
	return sum, nil
}

// Doctor reports schedule slots and recipe entries whose references no
// longer resolve.
func (s *Service) Doctor(ctx context.Context) ([]integrity.Problem, error) {
	week, err := s.storedWeek(ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := s.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.Ingredients(ctx)
	if err != nil {
		return nil, err
	}
	return integrity.Check(week, recipes, ingredients), nil
}
