package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, folds accents ("endereço" -> "endereco"), replaces
// punctuation and symbols with spaces and collapses whitespace. Line breaks
// survive as single "\n" separators so that patterns never span two lines.
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	folded, _, err := transform.String(foldAccents(), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '\n':
			b.WriteRune('\n')
		case r == '-':
			b.WriteRune(r)
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Flatten turns a multi-line utterance into a single line.
func Flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// foldAccents is built per call: transform chains keep internal state.
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
