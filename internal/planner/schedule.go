package planner

import (
	"context"
	"fmt"

	"github.com/julianstephens/mealplan/internal/integrity"
	"github.com/julianstephens/mealplan/internal/logger"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/storage"
)

func dayWrite(day models.DaySchedule) (storage.Write, error) {
	data, err := encode(day)
	if err != nil {
		return storage.Write{}, err
	}
	return storage.Write{Collection: storage.Schedule, ID: string(day.DayOfWeek), Op: storage.OpSet, Data: data}, nil
}

// storedWeek returns the normalized grid without writing anything. An empty
// collection yields an unassigned week.
func (s *Service) storedWeek(ctx context.Context) (models.WeeklySchedule, error) {
	snap, err := s.store.List(ctx, storage.Schedule)
	if err != nil {
		return nil, err
	}
	days, err := decodeDays(snap)
	if err != nil {
		return nil, err
	}
	return models.NormalizeWeek(days), nil
}

// Schedule returns the full 7x5 grid. The first call on an empty store
// persists an unassigned week in one batch.
func (s *Service) Schedule(ctx context.Context) (models.WeeklySchedule, error) {
	snap, err := s.store.List(ctx, storage.Schedule)
	if err != nil {
		return nil, err
	}
	if len(snap) > 0 {
		days, err := decodeDays(snap)
		if err != nil {
			return nil, err
		}
		return models.NormalizeWeek(days), nil
	}

	week := models.EmptyWeek()
	writes := make([]storage.Write, 0, len(week))
	for _, day := range week {
		w, err := dayWrite(day)
		if err != nil {
			return nil, err
		}
		writes = append(writes, w)
	}
	if err := s.store.BatchWrite(ctx, writes); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	logger.Info("Created empty weekly schedule")
	return week, nil
}

// SetMeal assigns recipeID (nil clears the slot) to one slot and persists
// the whole day. It reports false, writing nothing, when the slot already
// holds that value.
func (s *Service) SetMeal(ctx context.Context, day models.DayOfWeek, mealType models.MealType, recipeID *string) (bool, error) {
	week, err := s.Schedule(ctx)
	if err != nil {
		return false, err
	}
	current, ok := week.Day(day)
	if !ok {
		return false, fmt.Errorf("invalid day of week: %s", day)
	}
	if _, ok := current.Meal(mealType); !ok {
		return false, fmt.Errorf("invalid meal type: %s", mealType)
	}

	next, changed := integrity.SetMeal(current, mealType, recipeID)
	if !changed {
		return false, nil
	}
	w, err := dayWrite(next)
	if err != nil {
		return false, err
	}
	if err := s.store.Set(ctx, w.Collection, w.ID, w.Data); err != nil {
		return false, fmt.Errorf("failed to update %s: %w", day, err)
	}
	logger.Debug("Updated meal", "day", day, "meal", mealType, "assigned", recipeID != nil)
	return true, nil
}

func (s *Service) ClearMeal(ctx context.Context, day models.DayOfWeek, mealType models.MealType) (bool, error) {
	return s.SetMeal(ctx, day, mealType, nil)
}

// ClearSchedule unassigns every slot of the week in one batch.
func (s *Service) ClearSchedule(ctx context.Context) error {
	week, err := s.Schedule(ctx)
	if err != nil {
		return err
	}
	cleared := integrity.ClearWeek(week)

	writes := make([]storage.Write, 0, len(cleared))
	for _, day := range cleared {
		w, err := dayWrite(day)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}

	s.beforeDestructive()
	if err := s.store.BatchWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}
	logger.Info("Cleared weekly schedule", "slots", week.AssignedSlots())
	return nil
}
