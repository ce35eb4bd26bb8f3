package models

import (
	"fmt"
	"strings"
)

// Ingredient is a catalog entry. Name, Unit and Market are free-text labels;
// two ingredients with the same name but different IDs are distinct.
type Ingredient struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Market string `json:"market"`
}

func (i *Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("ingredient name cannot be empty")
	}
	if strings.TrimSpace(i.Unit) == "" {
		return fmt.Errorf("ingredient unit cannot be empty")
	}
	if strings.TrimSpace(i.Market) == "" {
		return fmt.Errorf("ingredient market cannot be empty")
	}
	return nil
}
