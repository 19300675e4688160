package trip

import (
	"fmt"
	"strings"
)

// Category identifies one slot of a trip plan.
type Category int

// Categories in plan order. The order is part of the output contract.
const (
	CategoryFlights Category = iota
	CategoryLodging
	CategoryAttractions
	CategoryCulture
	CategoryTransport
)

// NumCategories is the number of slots in every plan.
const NumCategories = 5

// AllCategories returns every category in plan order.
func AllCategories() []Category {
	return []Category{
		CategoryFlights,
		CategoryLodging,
		CategoryAttractions,
		CategoryCulture,
		CategoryTransport,
	}
}

var categoryNames = [NumCategories]string{
	"flights",
	"lodging",
	"attractions",
	"culture",
	"transport",
}

// String returns the wire name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= NumCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// ParseCategory maps a wire name to a Category.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// ParseCategories parses a comma separated list. An empty list yields nil,
// which callers treat as "all categories".
func ParseCategories(list string) ([]Category, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	var out []Category
	seen := make(map[Category]bool)
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
