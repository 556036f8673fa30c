package models

import "fmt"

// Category is one of the five fixed competition divisions, matching the
// ENUM in the DB.
type Category string

const (
	CategoryMensSingles   Category = "MS"
	CategoryWomensSingles Category = "WS"
	CategoryMensDoubles   Category = "MD"
	CategoryWomensDoubles Category = "WD"
	CategoryMixedDoubles  Category = "XD"
)

// AllCategories lists every division in presentation order.
var AllCategories = []Category{
	CategoryMensSingles,
	CategoryWomensSingles,
	CategoryMensDoubles,
	CategoryWomensDoubles,
	CategoryMixedDoubles,
}

// ParseCategory validates a raw category code from user input.
func ParseCategory(raw string) (Category, error) {
	category := Category(raw)
	for _, known := range AllCategories {
		if category == known {
			return category, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

func (c Category) String() string {
	return string(c)
}
