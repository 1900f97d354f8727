package reddit

import (
	"strings"
	"unicode/utf8"
)

const placeholder = "..."

// Shorten collapses whitespace and truncates text at a word boundary so the
// result, placeholder included, is at most width runes long.
func Shorten(text string, width int) string {
	words := strings.Fields(text)
	collapsed := strings.Join(words, " ")
	if utf8.RuneCountInString(collapsed) <= width {
		return collapsed
	}

	limit := width - len(placeholder)
	var b strings.Builder
	n := 0
	for _, w := range words {
		add := utf8.RuneCountInString(w)
		if n > 0 {
			add++
		}
		if n+add > limit {
			break
		}
		if n > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		n += add
	}
	return b.String() + placeholder
}
