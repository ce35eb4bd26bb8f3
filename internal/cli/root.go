package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/mealplan/internal/backup"
	"github.com/julianstephens/mealplan/internal/logger"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/planner"
	"github.com/julianstephens/mealplan/internal/storage"
	"github.com/julianstephens/mealplan/internal/storage/sqlite"
)

type Context struct {
	Ctx     context.Context
	Store   storage.Adapter
	Planner *planner.Service
}

// NewContext wires a planner to store. SQLite stores are backed up before
// destructive batch writes.
func NewContext(ctx context.Context, store storage.Adapter) *Context {
	c := &Context{
		Ctx:     ctx,
		Store:   store,
		Planner: planner.New(store),
	}
	c.Planner.SetBackupHook(c.PerformAutomaticBackup)
	return c
}

// SQLitePath returns the database file of a SQLite store.
func (c *Context) SQLitePath() (string, bool) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return "", false
	}
	return c.Store.GetConfigPath(), true
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path, ok := c.SQLitePath()
	if !ok {
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseRecipeIngredients parses ID=QTY pairs, e.g. "3f2a...=2.5".
func ParseRecipeIngredients(entries []string) ([]models.RecipeIngredient, error) {
	out := make([]models.RecipeIngredient, 0, len(entries))
	for _, entry := range entries {
		id, qty, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid ingredient %q (expected ID=QUANTITY)", entry)
		}
		quantity, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", entry, err)
		}
		out = append(out, models.RecipeIngredient{IngredientID: id, Quantity: quantity})
	}
	return out, nil
}

// FormatQuantity prints whole numbers without decimals.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
