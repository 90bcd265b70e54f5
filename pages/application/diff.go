package application

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the most bytes of unchanged text kept on each side of a change.
const diffContext = 40

// documentDiff renders the changes between two documents as inline [-removed-]{+added+} markers,
// eliding long unchanged stretches.
func documentDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for i, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+")
			sb.WriteString(d.Text)
			sb.WriteString("+}")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("-]")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(elide(d.Text, i == 0, i == len(diffs)-1))
		}
	}
	return sb.String()
}

// elide shortens an unchanged segment. Leading segments keep only their tail, trailing segments only
// their head, and segments between two changes keep both ends.
func elide(text string, first, last bool) string {
	if len(text) <= 2*diffContext {
		return text
	}

	// Cut on rune boundaries so multi-byte characters survive.
	headEnd := diffContext
	for headEnd > 0 && !utf8.RuneStart(text[headEnd]) {
		headEnd--
	}
	tailStart := len(text) - diffContext
	for tailStart < len(text) && !utf8.RuneStart(text[tailStart]) {
		tailStart++
	}

	head := text[:headEnd]
	tail := text[tailStart:]

	switch {
	case first && last:
		return text
	case first:
		return "..." + tail
	case last:
		return head + "..."
	default:
		return head + "..." + tail
	}
}
