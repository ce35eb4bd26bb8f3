package schedule

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/mealplan/internal/cli"
	"github.com/julianstephens/mealplan/internal/models"
	"github.com/julianstephens/mealplan/internal/storage"
)

type ScheduleShowCmd struct {
	Day string `arg:"" optional:"" help:"Show only this day (name, abbreviation or 1-7)."`
}

func (c *ScheduleShowCmd) Run(ctx *cli.Context) error {
	week, err := ctx.Planner.Schedule(ctx.Ctx)
	if err != nil {
		return err
	}
	recipes, err := ctx.Planner.Recipes(ctx.Ctx)
	if err != nil {
		return err
	}

	if c.Day != "" {
		day, err := models.ParseDayOfWeek(c.Day)
		if err != nil {
			return err
		}
		d, _ := week.Day(day)
		week = models.WeeklySchedule{d}
	}
	fmt.Print(cli.RenderSchedule(week, recipes))
	return nil
}

func parseSlot(dayArg, mealArg string) (models.DayOfWeek, models.MealType, error) {
	day, err := models.ParseDayOfWeek(dayArg)
	if err != nil {
		return "", "", err
	}
	meal, err := models.ParseMealType(mealArg)
	if err != nil {
		return "", "", err
	}
	return day, meal, nil
}

type ScheduleSetCmd struct {
	Day      string `arg:"" help:"Day of week (name, abbreviation or 1-7)."`
	Meal     string `arg:"" help:"Meal (breakfast, snack1, lunch, snack2, dinner)."`
	RecipeID string `arg:"" help:"Recipe ID."`
}

func (c *ScheduleSetCmd) Validate() error {
	_, _, err := parseSlot(c.Day, c.Meal)
	return err
}

func (c *ScheduleSetCmd) Run(ctx *cli.Context) error {
	day, meal, err := parseSlot(c.Day, c.Meal)
	if err != nil {
		return err
	}
	recipe, err := ctx.Planner.Recipe(ctx.Ctx, c.RecipeID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("unknown recipe: %s", c.RecipeID)
	}
	if err != nil {
		return err
	}

	changed, err := ctx.Planner.SetMeal(ctx.Ctx, day, meal, &recipe.ID)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Printf("%s %s already has %s\n", day, meal, recipe.Name)
		return nil
	}
	fmt.Printf("Scheduled %s for %s %s\n", recipe.Name, day, meal)
	return nil
}

type ScheduleUnsetCmd struct {
	Day  string `arg:"" help:"Day of week (name, abbreviation or 1-7)."`
	Meal string `arg:"" help:"Meal (breakfast, snack1, lunch, snack2, dinner)."`
}

func (c *ScheduleUnsetCmd) Validate() error {
	_, _, err := parseSlot(c.Day, c.Meal)
	return err
}

func (c *ScheduleUnsetCmd) Run(ctx *cli.Context) error {
	day, meal, err := parseSlot(c.Day, c.Meal)
	if err != nil {
		return err
	}
	changed, err := ctx.Planner.ClearMeal(ctx.Ctx, day, meal)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Printf("%s %s has no recipe\n", day, meal)
		return nil
	}
	fmt.Printf("Cleared %s %s\n", day, meal)
	return nil
}

type ScheduleClearCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

// stdin answers the confirmation prompt.
var stdin io.Reader = os.Stdin

func (c *ScheduleClearCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		fmt.Print("Clear every meal of the week? [y/N]: ")
		response, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Clear cancelled.")
			return nil
		}
	}

	if err := ctx.Planner.ClearSchedule(ctx.Ctx); err != nil {
		return err
	}
	fmt.Println("✓ Weekly schedule cleared")
	return nil
}
