package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Category is the kind of an editable field. It decides which sanitization rule applies.
type Category string

const (
	CategoryHeadline    Category = "headline"
	CategoryCTA         Category = "cta"
	CategoryPrice       Category = "price"
	CategoryTestimonial Category = "testimonial"
)

// Categories is the fixed set of categories the bot may edit.
var Categories = []Category{
	CategoryHeadline,
	CategoryCTA,
	CategoryPrice,
	CategoryTestimonial,
}

// ParseCategory returns the Category named by s, or ErrInvalidInput if s is not one of Categories.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !slices.Contains(Categories, c) {
		return "", fmt.Errorf("%w: invalid element: %s. Allowed: %s", ErrInvalidInput, s, joinCategories(Categories))
	}
	return c, nil
}

func joinCategories(cs []Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
