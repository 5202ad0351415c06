package normalizer

import (
	"strings"
	"unicode"

	"github.com/baditaflorin/go_fakenews/internal/ports"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Punctuation is the fixed set of 32 ASCII punctuation characters removed
// during normalization.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var asciiPunct [128]bool

func init() {
	for i := 0; i < len(Punctuation); i++ {
		asciiPunct[Punctuation[i]] = true
	}
}

// IsPunctuation reports whether r belongs to the fixed punctuation set.
func IsPunctuation(r rune) bool {
	return r >= 0 && r < 128 && asciiPunct[r]
}

// DefaultNormalizer implements the reference normalization: Unicode
// lowercase, then digit deletion, then punctuation deletion.
type DefaultNormalizer struct{}

// NewDefaultNormalizer creates a new default normalizer.
func NewDefaultNormalizer() ports.Normalizer {
	return &DefaultNormalizer{}
}

// Normalize lowercases text and deletes digits and punctuation without
// inserting whitespace, so "Covid-19" becomes "covid".
func (n *DefaultNormalizer) Normalize(text string) string {
	if len(text) == 0 {
		return ""
	}
	// A Caser keeps state between calls and is not safe to share.
	text = cases.Lower(language.Und).String(text)
	text = strings.Map(dropRune(unicode.IsDigit), text)
	return strings.Map(dropRune(IsPunctuation), text)
}

func dropRune(match func(rune) bool) func(rune) rune {
	return func(r rune) rune {
		if match(r) {
			return -1
		}
		return r
	}
}
