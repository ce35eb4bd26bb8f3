package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/mealplan/internal/cli"
	"github.com/julianstephens/mealplan/internal/storage"
	"github.com/julianstephens/mealplan/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing storage before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	fmt.Printf("Initialized mealplan storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
	}

	// Creates the empty week unless the source already had one.
	if _, err := ctx.Planner.Schedule(ctx.Ctx); err != nil {
		return err
	}
	return nil
}

// reset deletes file storage so Init starts from scratch.
func (c *InitCmd) reset(ctx *cli.Context) error {
	switch ctx.Store.(type) {
	case *sqlite.Store, *storage.JSONStore:
	default:
		return fmt.Errorf("--force is only supported for file storage")
	}

	path := ctx.Store.GetConfigPath()
	if c.Source != "" {
		// Don't delete if it's the source (user error protection)
		absPath, err := filepath.Abs(path)
		if err == nil {
			path = absPath
		}
		source, err := cli.ExpandPath(c.Source)
		if err == nil {
			if absSource, err := filepath.Abs(source); err == nil && absSource == path {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
			}
		}
	}

	if _, err := os.Stat(path); err == nil {
		// Close first to prevent file locking issues
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing storage: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing storage: %w", err)
		}
		fmt.Printf("Deleted existing storage at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing storage: %w", err)
	}
	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context) error {
	source, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load source storage: %w", err)
	}
	defer source.Close()

	counts, err := storage.Copy(ctx.Ctx, ctx.Store, source)
	if err != nil {
		return err
	}
	for _, coll := range storage.Collections {
		fmt.Printf("  Copied %d %s documents\n", counts[coll], coll)
	}
	return nil
}
