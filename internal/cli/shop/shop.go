package shop

import (
	"fmt"

	"github.com/julianstephens/mealplan/internal/cli"
)

type ShopGenerateCmd struct{}

func (c *ShopGenerateCmd) Run(ctx *cli.Context) error {
	saved, err := ctx.Planner.GenerateShoppingList(ctx.Ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Generated shopping list: %d items from %d markets\n\n", saved.List.Len(), len(saved.List))
	fmt.Print(cli.RenderShoppingList(saved))
	return nil
}

type ShopShowCmd struct{}

func (c *ShopShowCmd) Run(ctx *cli.Context) error {
	saved, err := ctx.Planner.ShoppingList(ctx.Ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Shopping list from %s\n\n", saved.GeneratedAt.Local().Format("2006-01-02 15:04"))
	fmt.Print(cli.RenderShoppingList(saved))
	return nil
}

type ShopCheckCmd struct {
	Market string `arg:"" help:"Market of the item."`
	Name   string `arg:"" help:"Item name."`
}

func (c *ShopCheckCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Planner.SetItemChecked(ctx.Ctx, c.Market, c.Name, true); err != nil {
		return err
	}
	fmt.Printf("✓ Checked %s (%s)\n", c.Name, c.Market)
	return nil
}

type ShopUncheckCmd struct {
	Market string `arg:"" help:"Market of the item."`
	Name   string `arg:"" help:"Item name."`
}

func (c *ShopUncheckCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Planner.SetItemChecked(ctx.Ctx, c.Market, c.Name, false); err != nil {
		return err
	}
	fmt.Printf("Unchecked %s (%s)\n", c.Name, c.Market)
	return nil
}
