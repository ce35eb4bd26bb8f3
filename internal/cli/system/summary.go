package system

import (
	"fmt"

	"github.com/julianstephens/mealplan/internal/cli"
)

type SummaryCmd struct{}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	sum, err := ctx.Planner.Summary(ctx.Ctx)
	if err != nil {
		return err
	}

	fmt.Println(cli.HeaderStyle.Render("Meal plan"))
	fmt.Printf("  Ingredients:    %d\n", sum.Ingredients)
	fmt.Printf("  Recipes:        %d\n", sum.Recipes)
	fmt.Printf("  Planned meals:  %d of %d\n", sum.AssignedSlots, sum.TotalSlots)
	if sum.HasShoppingList {
		fmt.Printf("  Shopping list:  %d of %d items checked\n", sum.CheckedItems, sum.ShoppingItems)
	} else {
		fmt.Printf("  Shopping list:  %s\n", cli.MutedStyle.Render("not generated"))
	}
	return nil
}
