package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type ShoppingListItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// MarketItems holds the items bought at one market.
type MarketItems struct {
	Market string             `json:"market"`
	Items  []ShoppingListItem `json:"items"`
}

// ShoppingList maps market names to their items. Markets and items keep the
// order in which they were first added. It encodes to JSON as an object keyed
// by market, preserving that order.
type ShoppingList []MarketItems

// Markets returns the market names in order.
func (l ShoppingList) Markets() []string {
	markets := make([]string, len(l))
	for i, g := range l {
		markets[i] = g.Market
	}
	return markets
}

// Items returns the items of a market, or nil if the market is absent.
func (l ShoppingList) Items(market string) []ShoppingListItem {
	for _, g := range l {
		if g.Market == market {
			return g.Items
		}
	}
	return nil
}

// Len returns the total number of line items across all markets.
func (l ShoppingList) Len() int {
	n := 0
	for _, g := range l {
		n += len(g.Items)
	}
	return n
}

// Append adds an item under market, creating the market group lazily.
func (l ShoppingList) Append(market string, item ShoppingListItem) ShoppingList {
	for i := range l {
		if l[i].Market == market {
			l[i].Items = append(l[i].Items, item)
			return l
		}
	}
	return append(l, MarketItems{Market: market, Items: []ShoppingListItem{item}})
}

func (l ShoppingList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Market)
		if err != nil {
			return nil, err
		}
		items := g.Items
		if items == nil {
			items = []ShoppingListItem{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (l *ShoppingList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("shopping list: expected object, got %v", tok)
	}

	list := ShoppingList{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		market, ok := tok.(string)
		if !ok {
			return fmt.Errorf("shopping list: expected market name, got %v", tok)
		}
		var items []ShoppingListItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("shopping list: market %q: %w", market, err)
		}
		list = append(list, MarketItems{Market: market, Items: items})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*l = list
	return nil
}

// LineItemKey identifies a line item in the checked-state map.
func LineItemKey(market, name string) string {
	return market + "-" + name
}

// CheckedState records which line items the user has ticked off.
type CheckedState map[string]bool

// SavedShoppingList is the last generated list together with its checklist.
type SavedShoppingList struct {
	List        ShoppingList `json:"list"`
	Checked     CheckedState `json:"checked"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// IsChecked reports whether the item of market is checked.
func (s SavedShoppingList) IsChecked(market, name string) bool {
	return s.Checked[LineItemKey(market, name)]
}
