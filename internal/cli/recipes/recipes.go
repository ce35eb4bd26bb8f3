package recipes

import (
	"fmt"

	"github.com/julianstephens/mealplan/internal/cli"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/planner"
)

type RecipeAddCmd struct {
	Name        string   `arg:"" help:"Recipe name."`
	Ingredients []string `short:"i" name:"ingredient" sep:"none" help:"Ingredient as ID=QUANTITY, in the ingredient's unit. Repeatable."`
	Description *string  `short:"d" help:"Short description."`
	CookingTime *int     `short:"t" help:"Cooking time in minutes."`
	Difficulty  *string  `help:"Difficulty (easy|medium|hard)."`
}

func (c *RecipeAddCmd) Validate() error {
	if c.Difficulty != nil {
		if _, err := models.ParseDifficulty(*c.Difficulty); err != nil {
			return err
		}
	}
	_, err := cli.ParseRecipeIngredients(c.Ingredients)
	return err
}

func (c *RecipeAddCmd) Run(ctx *cli.Context) error {
	ings, err := cli.ParseRecipeIngredients(c.Ingredients)
	if err != nil {
		return err
	}
	if err := checkIngredients(ctx, ings); err != nil {
		return err
	}

	recipe := models.Recipe{
		Name:        c.Name,
		Ingredients: ings,
		Description: c.Description,
		CookingTime: c.CookingTime,
	}
	if c.Difficulty != nil {
		d, _ := models.ParseDifficulty(*c.Difficulty)
		recipe.Difficulty = &d
	}

	added, err := ctx.Planner.AddRecipe(ctx.Ctx, recipe)
	if err != nil {
		return err
	}
	fmt.Printf("Added recipe: %s (ID: %s)\n", added.Name, added.ID)
	return nil
}

// checkIngredients rejects ids that are not in the catalog.
func checkIngredients(ctx *cli.Context, ings []models.RecipeIngredient) error {
	if len(ings) == 0 {
		return nil
	}
	catalog, err := ctx.Planner.Ingredients(ctx.Ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(catalog))
	for _, ing := range catalog {
		known[ing.ID] = true
	}
	for _, ri := range ings {
		if !known[ri.IngredientID] {
			return fmt.Errorf("unknown ingredient: %s", ri.IngredientID)
		}
	}
	return nil
}

type RecipeEditCmd struct {
	ID            string   `arg:"" help:"Recipe ID."`
	Name          *string  `help:"New name."`
	Ingredients   []string `short:"i" name:"ingredient" sep:"none" help:"Replace the ingredient list with ID=QUANTITY entries. Repeatable."`
	NoIngredients bool     `help:"Remove all ingredients."`
	Description   *string  `short:"d" help:"New description."`
	CookingTime   *int     `short:"t" help:"New cooking time in minutes."`
	Difficulty    *string  `help:"New difficulty (easy|medium|hard)."`
}

func (c *RecipeEditCmd) Validate() error {
	if c.NoIngredients && len(c.Ingredients) > 0 {
		return fmt.Errorf("--no-ingredients cannot be combined with --ingredient")
	}
	if c.Difficulty != nil {
		if _, err := models.ParseDifficulty(*c.Difficulty); err != nil {
			return err
		}
	}
	_, err := cli.ParseRecipeIngredients(c.Ingredients)
	return err
}

func (c *RecipeEditCmd) patch() (planner.RecipePatch, error) {
	patch := planner.RecipePatch{
		Name:        c.Name,
		Description: c.Description,
		CookingTime: c.CookingTime,
	}
	if len(c.Ingredients) > 0 || c.NoIngredients {
		ings, err := cli.ParseRecipeIngredients(c.Ingredients)
		if err != nil {
			return planner.RecipePatch{}, err
		}
		patch.Ingredients = &ings
	}
	if c.Difficulty != nil {
		d, err := models.ParseDifficulty(*c.Difficulty)
		if err != nil {
			return planner.RecipePatch{}, err
		}
		patch.Difficulty = &d
	}
	return patch, nil
}

func (c *RecipeEditCmd) Run(ctx *cli.Context) error {
	patch, err := c.patch()
	if err != nil {
		return err
	}
	if patch.Ingredients != nil {
		if err := checkIngredients(ctx, *patch.Ingredients); err != nil {
			return err
		}
	}

	recipe, err := ctx.Planner.UpdateRecipe(ctx.Ctx, c.ID, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated recipe: %s\n", recipe.Name)
	return nil
}

type RecipeDeleteCmd struct {
	ID string `arg:"" help:"Recipe ID."`
}

func (c *RecipeDeleteCmd) Run(ctx *cli.Context) error {
	recipe, err := ctx.Planner.Recipe(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Planner.DeleteRecipe(ctx.Ctx, c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted recipe: %s\n", recipe.Name)
	return nil
}

type RecipeListCmd struct{}

func (c *RecipeListCmd) Run(ctx *cli.Context) error {
	all, err := ctx.Planner.Recipes(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No recipes found")
		return nil
	}

	fmt.Println("Recipes:")
	for _, r := range all {
		details := fmt.Sprintf("%d ingredients", len(r.Ingredients))
		if r.CookingTime != nil {
			details += fmt.Sprintf(", %d min", *r.CookingTime)
		}
		if r.Difficulty != nil {
			details += ", " + string(*r.Difficulty)
		}
		fmt.Printf("  %s  %-24s %s\n", r.ID, r.Name, cli.MutedStyle.Render(details))
	}
	return nil
}

type RecipeShowCmd struct {
	ID string `arg:"" help:"Recipe ID."`
}

func (c *RecipeShowCmd) Run(ctx *cli.Context) error {
	recipe, err := ctx.Planner.Recipe(ctx.Ctx, c.ID)
	if err != nil {
		return err
	}
	ingredients, err := ctx.Planner.Ingredients(ctx.Ctx)
	if err != nil {
		return err
	}
	fmt.Print(cli.RenderRecipe(recipe, ingredients))
	return nil
}
