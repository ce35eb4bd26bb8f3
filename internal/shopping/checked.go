package shopping

import "github.com/julianstephens/mealplan/internal/models"

// ResetChecked returns the checklist of a freshly generated list. Check marks
// are never carried over from a previous list.
func ResetChecked() models.CheckedState {
	return models.CheckedState{}
}

// SetChecked returns a copy of prev with key set to value. prev is not
// modified.
func SetChecked(prev models.CheckedState, key string, value bool) models.CheckedState {
	next := make(models.CheckedState, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[key] = value
	return next
}

// ItemKeys returns the line-item keys of list in display order.
func ItemKeys(list models.ShoppingList) []string {
	keys := make([]string, 0, list.Len())
	for _, g := range list {
		for _, item := range g.Items {
			keys = append(keys, models.LineItemKey(g.Market, item.Name))
		}
	}
	return keys
}

// Contains reports whether list has an item named name under market.
func Contains(list models.ShoppingList, market, name string) bool {
	for _, item := range list.Items(market) {
		if item.Name == name {
			return true
		}
	}
	return false
}
