package expense

import "fmt"

// Category is the closed enumeration of expense categories.
type Category string

const (
	CategoryOfficeSupplies Category = "OFFICE_SUPPLIES"
)

var validCategories = map[Category]bool{
	CategoryOfficeSupplies: true,
}

// ParseCategory validates a category name against the closed enumeration. It
// replaces dynamic enum-by-name lookup so that an unrecognized name fails with
// a dedicated error at the application boundary.
func ParseCategory(name string) (Category, error) {
	category := Category(name)
	if !validCategories[category] {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	return category, nil
}

// IsValid returns true if the category is part of the closed enumeration.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}
