// Package shopping groups meal plan ingredients into a categorized list.
package shopping

import (
	"strings"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

const (
	Proteins    = "proteins"
	Vegetables  = "vegetables"
	Fruits      = "fruits"
	Grains      = "grains"
	Dairy       = "dairy"
	Pantry      = "pantry"
	HerbsSpices = "herbs_spices"
)

// Categories in display order. HerbsSpices catches everything unmatched.
var Categories = []string{Proteins, Vegetables, Fruits, Grains, Dairy, Pantry, HerbsSpices}

// First match wins, so order matters: "coconut milk" is dairy, not pantry.
var rules = []struct {
	category string
	keywords []string
}{
	{Proteins, []string{"chicken", "fish", "eggs", "tofu", "beans", "lentils"}},
	{Vegetables, []string{"lettuce", "spinach", "broccoli", "carrot", "onion", "tomato"}},
	{Fruits, []string{"berry", "apple", "banana", "citrus", "orange"}},
	{Grains, []string{"rice", "quinoa", "oats", "bread"}},
	{Dairy, []string{"milk", "yogurt", "cheese"}},
	{Pantry, []string{"oil", "vinegar", "seeds", "nuts"}},
}

// List maps category to items. Every category key is always present.
type List map[string][]string

func newList() List {
	l := make(List, len(Categories))
	for _, c := range Categories {
		l[c] = []string{}
	}
	return l
}

// Categorize returns the category for one ingredient.
func Categorize(ingredient string) string {
	lower := strings.ToLower(ingredient)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.category
			}
		}
	}
	return HerbsSpices
}

// Aggregate categorizes ingredients. Items are trimmed, blanks dropped and
// exact duplicates kept once at their first position.
func Aggregate(ingredients []string) List {
	l := newList()
	seen := make(map[string]struct{}, len(ingredients))
	for _, raw := range ingredients {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		c := Categorize(item)
		l[c] = append(l[c], item)
	}
	return l
}

func FromPlan(plan nutrition.MealPlan) List {
	return Aggregate(plan.Ingredients())
}

// Merge combines lists in argument order with the same dedup rules as
// Aggregate.
func Merge(lists ...List) List {
	var all []string
	for _, l := range lists {
		for _, c := range Categories {
			all = append(all, l[c]...)
		}
	}
	return Aggregate(all)
}

// Count returns the number of items across all categories.
func (l List) Count() int {
	n := 0
	for _, items := range l {
		n += len(items)
	}
	return n
}
