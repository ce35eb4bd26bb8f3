package ingredients

import (
	"fmt"
	"strings"

	"github.com/julianstephens/mealplan/internal/cli"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/planner"
)

type IngredientAddCmd struct {
	Name   string `arg:"" help:"Ingredient name."`
	Unit   string `short:"u" help:"Unit the ingredient is measured in (e.g. pcs, g, ml)." required:""`
	Market string `short:"m" help:"Market where the ingredient is bought." required:""`
}

func (c *IngredientAddCmd) Run(ctx *cli.Context) error {
	ing, err := ctx.Planner.AddIngredient(ctx.Ctx, models.Ingredient{
		Name:   c.Name,
		Unit:   c.Unit,
		Market: c.Market,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added ingredient: %s (ID: %s)\n", ing.Name, ing.ID)
	return nil
}

type IngredientEditCmd struct {
	ID     string  `arg:"" help:"Ingredient ID."`
	Name   *string `help:"New name."`
	Unit   *string `short:"u" help:"New unit."`
	Market *string `short:"m" help:"New market."`
}

func (c *IngredientEditCmd) Validate() error {
	if c.Name == nil && c.Unit == nil && c.Market == nil {
		return fmt.Errorf("nothing to change: pass --name, --unit or --market")
	}
	return nil
}

func (c *IngredientEditCmd) Run(ctx *cli.Context) error {
	ing, err := ctx.Planner.UpdateIngredient(ctx.Ctx, c.ID, planner.IngredientPatch{
		Name:   c.Name,
		Unit:   c.Unit,
		Market: c.Market,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Updated ingredient: %s (%s, %s)\n", ing.Name, ing.Unit, ing.Market)
	return nil
}

type IngredientDeleteCmd struct {
	ID string `arg:"" help:"Ingredient ID."`
}

func (c *IngredientDeleteCmd) Run(ctx *cli.Context) error {
	ing, err := ctx.Planner.Ingredient(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Planner.DeleteIngredient(ctx.Ctx, c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted ingredient: %s\n", ing.Name)
	return nil
}

type IngredientListCmd struct {
	Market string `short:"m" help:"Show only ingredients of this market."`
}

func (c *IngredientListCmd) Run(ctx *cli.Context) error {
	all, err := ctx.Planner.Ingredients(ctx.Ctx)
	if err != nil {
		return err
	}

	var shown []models.Ingredient
	for _, ing := range all {
		if c.Market != "" && !strings.EqualFold(ing.Market, c.Market) {
			continue
		}
		shown = append(shown, ing)
	}
	if len(shown) == 0 {
		fmt.Println("No ingredients found")
		return nil
	}

	fmt.Println("Ingredients:")
	for _, ing := range shown {
		fmt.Printf("  %s  %-24s %-8s %s\n", ing.ID, ing.Name, ing.Unit, cli.MutedStyle.Render(ing.Market))
	}
	return nil
}
