package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/mealplan/internal/cli"
	"github.com/julianstephens/mealplan/internal/cli/backups"
	"github.com/julianstephens/mealplan/internal/cli/ingredients"
	"github.com/julianstephens/mealplan/internal/cli/recipes"
	"github.com/julianstephens/mealplan/internal/cli/schedule"
	"github.com/julianstephens/mealplan/internal/cli/shop"
	"github.com/julianstephens/mealplan/internal/cli/system"
	"github.com/julianstephens/mealplan/internal/constants"
	apperrors "github.com/julianstephens/mealplan/internal/errors"
	"github.com/julianstephens/mealplan/internal/logger"
	"github.com/julianstephens/mealplan/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage location: SQLite file path, *.json file path, PostgreSQL URL or 'keyring'. PostgreSQL URLs must NOT embed a password; use the OS keyring, MEALPLAN_DB_CONNECTION or .pgpass instead." type:"string" default:"~/.config/mealplan/mealplan.db" env:"MEALPLAN_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"MEALPLAN_DEBUG"`

	Init       system.InitCmd    `cmd:"" help:"Initialize mealplan storage."`
	Migrate    system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor     system.DoctorCmd  `cmd:"" help:"Run health checks and report dangling references."`
	Summary    system.SummaryCmd `cmd:"" help:"Show an overview of the meal plan." default:"1"`
	DebugTools system.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Ingredient struct {
		Add    ingredients.IngredientAddCmd    `cmd:"" help:"Add an ingredient to the catalog."`
		Edit   ingredients.IngredientEditCmd   `cmd:"" help:"Edit an ingredient."`
		Delete ingredients.IngredientDeleteCmd `cmd:"" help:"Delete an ingredient and remove it from recipes."`
		List   ingredients.IngredientListCmd   `cmd:"" help:"List ingredients."`
	} `cmd:"" help:"Manage the ingredient catalog."`
	Recipe struct {
		Add    recipes.RecipeAddCmd    `cmd:"" help:"Add a recipe."`
		Edit   recipes.RecipeEditCmd   `cmd:"" help:"Edit a recipe."`
		Delete recipes.RecipeDeleteCmd `cmd:"" help:"Delete a recipe and clear it from the schedule."`
		List   recipes.RecipeListCmd   `cmd:"" help:"List recipes."`
		Show   recipes.RecipeShowCmd   `cmd:"" help:"Show a recipe with its ingredients."`
	} `cmd:"" help:"Manage recipes."`
	Schedule struct {
		Show  schedule.ScheduleShowCmd  `cmd:"" help:"Show the weekly schedule." default:"1"`
		Set   schedule.ScheduleSetCmd   `cmd:"" help:"Assign a recipe to a meal."`
		Unset schedule.ScheduleUnsetCmd `cmd:"" help:"Remove the recipe of a meal."`
		Clear schedule.ScheduleClearCmd `cmd:"" help:"Clear every meal of the week."`
	} `cmd:"" help:"Manage the weekly schedule."`
	Shop struct {
		Generate shop.ShopGenerateCmd `cmd:"" help:"Generate the shopping list from the schedule."`
		Show     shop.ShopShowCmd     `cmd:"" help:"Show the last generated shopping list." default:"1"`
		Check    shop.ShopCheckCmd    `cmd:"" help:"Check off an item."`
		Uncheck  shop.ShopUncheckCmd  `cmd:"" help:"Uncheck an item."`
	} `cmd:"" help:"Manage the shopping list."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Meal planner: recipes, a weekly schedule and a shopping list grouped by market"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	store, err := openStore()
	if err != nil {
		apperrors.Fatal(err)
	}

	logDir := configDir(store)
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir}); err != nil {
		// Logging is best effort
		_ = logger.Init(logger.Config{Debug: CLI.Debug, Output: io.Discard})
	}
	defer logger.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx := cli.NewContext(runCtx, store)
	defer store.Close()

	// Keyring commands don't touch storage; init loads its own
	selected := ctx.Command()
	if needsStore(selected) {
		if err := store.Load(runCtx); err != nil {
			if errors.Is(err, storage.ErrNotInitialized) {
				err = fmt.Errorf("%s: %w", store.GetConfigPath(), err)
			}
			apperrors.Fatal(err)
		}
	}

	logger.Debug("Running command", "command", selected, "storage", store.GetConfigPath())
	if err := ctx.Run(appCtx); err != nil {
		stop()
		store.Close()
		logger.Close()
		apperrors.Fatal(err)
	}
}

// openStore prefers MEALPLAN_DB_CONNECTION when --config was left at its
// default.
func openStore() (storage.Adapter, error) {
	if connStr := os.Getenv(constants.EnvDBConnection); connStr != "" && CLI.Config == constants.DefaultConfigPath {
		return cli.OpenTrustedPostgres(connStr)
	}
	return cli.OpenStore(CLI.Config)
}

// configDir is where logs are written: next to file storage, or the default
// config directory for PostgreSQL.
func configDir(store storage.Adapter) string {
	path := store.GetConfigPath()
	if path == "" || path == "postgresql" {
		path = constants.DefaultConfigPath
	}
	expanded, err := cli.ExpandPath(path)
	if err != nil {
		return os.TempDir()
	}
	return filepath.Dir(expanded)
}

func needsStore(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "init", "keyring":
		return false
	}
	return true
}
