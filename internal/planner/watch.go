package planner

import (
	"context"

	"github.com/julianstephens/mealplan/internal/logger"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/storage"
)

// watch decodes every snapshot of coll. The returned channel holds at most
// one undelivered value, always the latest, and is closed when ctx ends or
// the store closes.
func watch[T any](ctx context.Context, store storage.Adapter, coll storage.Collection, decode func(storage.Snapshot) (T, error)) (<-chan T, error) {
	snaps, err := store.Subscribe(ctx, coll)
	if err != nil {
		return nil, err
	}

	out := make(chan T, 1)
	go func() {
		defer close(out)
		for snap := range snaps {
			v, err := decode(snap)
			if err != nil {
				logger.Warn("Skipping undecodable snapshot", "collection", coll, "error", err)
				continue
			}
			select {
			case out <- v:
			default:
				// Replace the stale value.
				select {
				case <-out:
				default:
				}
				out <- v
			}
		}
	}()
	return out, nil
}

func (s *Service) WatchIngredients(ctx context.Context) (<-chan []models.Ingredient, error) {
	return watch(ctx, s.store, storage.Ingredients, decodeIngredients)
}

func (s *Service) WatchRecipes(ctx context.Context) (<-chan []models.Recipe, error) {
	return watch(ctx, s.store, storage.Recipes, decodeRecipes)
}

// WatchSchedule streams the normalized grid.
func (s *Service) WatchSchedule(ctx context.Context) (<-chan models.WeeklySchedule, error) {
	return watch(ctx, s.store, storage.Schedule, func(snap storage.Snapshot) (models.WeeklySchedule, error) {
		days, err := decodeDays(snap)
		if err != nil {
			return nil, err
		}
		return models.NormalizeWeek(days), nil
	})
}
