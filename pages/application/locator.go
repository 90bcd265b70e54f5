package application

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dfryer1193/pagebot/pages/domain"
)

// DefaultMarkerAttribute is the attribute that marks an editable element, e.g. <h1 data-optimize="headline">.
const DefaultMarkerAttribute = "data-optimize"

// Locator finds the editable region for a category inside a document and swaps its inner text.
// It works on the raw text and never re-serializes markup, so bytes outside the region are untouched.
type Locator struct {
	attribute string
	patterns  map[domain.Category]*regexp.Regexp
}

func NewLocator(attribute string) *Locator {
	if attribute == "" {
		attribute = DefaultMarkerAttribute
	}

	patterns := make(map[domain.Category]*regexp.Regexp, len(domain.Categories))
	for _, category := range domain.Categories {
		patterns[category] = regionPattern(attribute, category)
	}

	return &Locator{
		attribute: attribute,
		patterns:  patterns,
	}
}

// regionPattern matches an opening tag carrying the marker, quoted with matching quotes, then the
// shortest run of text (across lines) up to the first closing-tag start. Group 1 is the inner text.
func regionPattern(attribute string, category domain.Category) *regexp.Regexp {
	value := regexp.QuoteMeta(string(category))
	return regexp.MustCompile(`(?s)<[^>]*\s` + regexp.QuoteMeta(attribute) + `\s*=\s*(?:"` + value + `"|'` + value + `')` +
		`[^>]*>(.*?)</`)
}

func (l *Locator) pattern(category domain.Category) *regexp.Regexp {
	if re, ok := l.patterns[category]; ok {
		return re
	}
	return regionPattern(l.attribute, category)
}

// LocateAndReplace replaces the inner text of the first region marked with category by newInner,
// which is inserted literally. It returns the new document and the previous inner text, trimmed.
func (l *Locator) LocateAndReplace(document string, category domain.Category, newInner string) (string, string, error) {
	loc := l.pattern(category).FindStringSubmatchIndex(document)
	if loc == nil {
		return "", "", fmt.Errorf(`%w: no %s="%s" found`, domain.ErrRegionNotFound, l.attribute, category)
	}

	innerStart, innerEnd := loc[2], loc[3]
	oldInner := strings.TrimSpace(document[innerStart:innerEnd])

	var b strings.Builder
	b.Grow(len(document) - (innerEnd - innerStart) + len(newInner))
	b.WriteString(document[:innerStart])
	b.WriteString(newInner)
	b.WriteString(document[innerEnd:])

	return b.String(), oldInner, nil
}

// Contains reports whether document has a region marked with category.
func (l *Locator) Contains(document string, category domain.Category) bool {
	return l.pattern(category).MatchString(document)
}
