package application

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dfryer1193/pagebot/pages/domain"
	xhtml "golang.org/x/net/html"
)

// DefaultMaxContentLength is the largest sanitized text accepted for any field.
const DefaultMaxContentLength = 500

// maxStripPasses bounds the strip loop; payloads nested deeper than this are still neutralized by escaping.
const maxStripPasses = 8

var (
	tagPattern          = regexp.MustCompile(`<[^>]+>`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
	scriptSchemePattern = regexp.MustCompile(`(?i)javascript:`)

	currencyToken = `(?:[$€£]|kr\.?|DKK|EUR|USD|GBP)`
	pricePattern  = regexp.MustCompile(`^\s*` + currencyToken + `?\s*\d+(?:[.,]\d{1,2})?\s*(?:` + currencyToken + `|,-)?\s*$`)
)

// Sanitizer turns untrusted replacement text into text that is safe to embed in a page.
type Sanitizer struct {
	maxLength int
}

// NewSanitizer creates a Sanitizer. A non-positive maxLength selects DefaultMaxContentLength.
func NewSanitizer(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}
	return &Sanitizer{maxLength: maxLength}
}

// Sanitize strips markup, event handlers and script links from content, then either enforces the
// strict money format (price) or escapes the HTML-significant characters (everything else).
func (s *Sanitizer) Sanitize(content string, category domain.Category) (string, error) {
	clean := s.strip(content)

	if category == domain.CategoryPrice {
		if !pricePattern.MatchString(clean) {
			return "", &domain.ValidationError{Text: clean, Reason: "Invalid price format"}
		}
	} else {
		clean = html.EscapeString(clean)
	}

	if utf8.RuneCountInString(clean) > s.maxLength {
		return "", &domain.ValidationError{Text: clean, Reason: fmt.Sprintf("Content too long (max %d chars)", s.maxLength)}
	}

	return clean, nil
}

// strip removes complete tags found by the HTML tokenizer, then applies the pattern rules until the
// text stops changing. Text outside tags is kept byte for byte, entities included.
func (s *Sanitizer) strip(content string) string {
	clean := stripTags(content)

	for range maxStripPasses {
		next := tagPattern.ReplaceAllLiteralString(clean, "")
		next = eventHandlerPattern.ReplaceAllLiteralString(next, "")
		next = scriptSchemePattern.ReplaceAllLiteralString(next, "")
		if next == clean {
			break
		}
		clean = next
	}

	return clean
}

// stripTags drops every tag, comment and doctype the tokenizer closes with '>'. Text tokens, including
// the bodies of script and style elements, are written from their raw bytes. An unterminated "<..."
// stays as literal text.
func stripTags(content string) string {
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(content))

	consumed := 0
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		raw := z.Raw()
		consumed += len(raw)
		if tt == xhtml.TextToken || !bytes.HasSuffix(raw, []byte(">")) {
			b.Write(raw)
		}
	}

	// The tokenizer discards a tag still open at end of input.
	if consumed < len(content) {
		b.WriteString(content[consumed:])
	}
	return b.String()
}
