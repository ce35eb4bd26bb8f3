package system

import (
	"fmt"

	"github.com/julianstephens/mealplan/internal/backup"
	"github.com/julianstephens/mealplan/internal/cli"
	"github.com/julianstephens/mealplan/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	reachable := false

	// Check 1: storage reachable
	if err := checkStorageReachable(ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
		reachable = true
	}

	// Check 2: schema version (SQL storage only)
	if reachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fmt.Printf("❌ Schema version: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schema version: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schema version: SKIPPED (storage not reachable)\n")
	}

	// Check 3: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 4: references (dangling references are warnings)
	if reachable {
		problems, err := ctx.Planner.Doctor(ctx.Ctx)
		switch {
		case err != nil:
			fmt.Printf("❌ References: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		case len(problems) > 0:
			fmt.Printf("⚠ References: WARNING (%d dangling)\n", len(problems))
			for _, p := range problems {
				fmt.Printf("   %s\n", p)
			}
		default:
			fmt.Printf("✓ References: OK\n")
		}
	} else {
		fmt.Printf("⊘ References: SKIPPED (storage not reachable)\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	for _, coll := range storage.Collections {
		if _, err := ctx.Store.List(ctx.Ctx, coll); err != nil {
			return fmt.Errorf("failed to read %s: %w", coll, err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		// JSON store doesn't have schema version
		return nil
	}

	current, latest, err := migrator.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'mealplan migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path, ok := ctx.SQLitePath()
	if !ok {
		return nil
	}

	mgr := backup.NewManager(path)
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'mealplan backup create'")
	}
	return nil
}
