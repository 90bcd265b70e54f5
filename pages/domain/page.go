package domain

import (
	"fmt"
	"slices"
	"strings"
)

const indexDocument = "index.html"

// PageID is the slug of a published page, e.g. "executive-edge".
type PageID string

// DocumentPath returns the repository path of the page's HTML document.
func (p PageID) DocumentPath() string {
	return string(p) + "/" + indexDocument
}

// PageFromPath returns the page whose document lives at path, if path has the <page>/index.html shape.
func PageFromPath(path string) (PageID, bool) {
	page, found := strings.CutSuffix(path, "/"+indexDocument)
	if !found || page == "" || strings.Contains(page, "/") {
		return "", false
	}
	return PageID(page), true
}

// PageAllowList is the set of pages the bot may touch.
type PageAllowList []PageID

// DefaultPages are the landing pages published from the site repository.
var DefaultPages = PageAllowList{"executive-edge", "90-day", "master-t", "reboot"}

// NewPageAllowList builds an allow-list from raw slugs.
func NewPageAllowList(slugs []string) PageAllowList {
	pages := make(PageAllowList, 0, len(slugs))
	for _, s := range slugs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		pages = append(pages, PageID(s))
	}
	return pages
}

// Parse returns the PageID for s, or ErrInvalidInput if it is not allow-listed.
func (l PageAllowList) Parse(s string) (PageID, error) {
	p := PageID(s)
	if !slices.Contains(l, p) {
		return "", fmt.Errorf("%w: invalid page: %s. Allowed: %s", ErrInvalidInput, s, l.String())
	}
	return p, nil
}

func (l PageAllowList) String() string {
	names := make([]string, len(l))
	for i, p := range l {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
