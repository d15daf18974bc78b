package naivebayes

import (
	"strings"
	"unicode"
)

const minTokenRunes = 2

// tokenize lower-cases s and returns the runs of word characters that are at
// least two characters long.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 32)
	var b strings.Builder
	n := 0
	flush := func() {
		if n >= minTokenRunes {
			out = append(out, b.String())
		}
		b.Reset()
		n = 0
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' {
			b.WriteRune(r)
			n++
			continue
		}
		flush()
	}
	flush()
	return out
}
