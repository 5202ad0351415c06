package model

import (
	"strings"
	"unicode"
)

// MinTokenRunes is the shortest token the tokenizer emits.
const MinTokenRunes = 2

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokenize splits text into maximal runs of word characters (letters,
// numbers, underscore) and keeps runs of at least MinTokenRunes runes.
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/6)
	start := -1
	runes := 0
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
				runes = 0
			}
			runes++
			continue
		}
		if start >= 0 {
			if runes >= MinTokenRunes {
				tokens = append(tokens, text[start:i])
			}
			start = -1
		}
	}
	if start >= 0 && runes >= MinTokenRunes {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// ngrams expands tokens into the n-grams in [minN, maxN], unigrams first,
// each n-gram joined by a single space.
func ngrams(tokens []string, minN, maxN int) []string {
	if maxN == 1 {
		return tokens
	}

	out := make([]string, 0, len(tokens)*(maxN-minN+1))
	if minN == 1 {
		out = append(out, tokens...)
		minN++
	}

	var sb strings.Builder
	for n := minN; n <= maxN && n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			sb.Reset()
			for j, tok := range tokens[i : i+n] {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(tok)
			}
			out = append(out, sb.String())
		}
	}
	return out
}
