package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/mealplan/internal/cli"
	"github.com/julianstephens/mealplan/internal/storage"
)

type DebugCmd struct {
	DBPath DebugDBPathCmd `cmd:"" name:"db-path" help:"Show storage location."`
	Dump   DebugDumpCmd   `cmd:"" help:"Dump the raw documents of a collection as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"path": ctx.Store.GetConfigPath(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpCmd struct {
	Collection string `arg:"" enum:"ingredients,recipes,schedule,shopping-list" help:"Collection to dump (ingredients, recipes, schedule, shopping-list)."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Store.List(ctx.Ctx, storage.Collection(cmd.Collection))
	if err != nil {
		return err
	}

	jsonBytes, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", cmd.Collection, err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
