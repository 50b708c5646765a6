// Package models defines the domain types for ChefKnight.
package models

// Category is a known content category backed by a directory under the
// content root.
type Category struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Dir         string `json:"-" yaml:"-"`
}

// DefaultCategories returns the built-in category registry in display order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "kingdoms", Description: "Top-level political entities"},
		{Name: "characters", Description: "Characters from the story"},
		{Name: "regions", Description: "Geographic areas"},
		{Name: "continents", Description: "Large landmasses"},
		{Name: "races", Description: "Sapient species"},
		{Name: "foods", Description: "Cuisine and ingredients"},
		{Name: "abilities", Description: "Powers and skills"},
		{Name: "weapons", Description: "Armaments"},
		{Name: "armour", Description: "Protective gear"},
		{Name: "items", Description: "Artifacts and objects"},
		{Name: "religion", Description: "Deities and belief systems"},
	}
}
