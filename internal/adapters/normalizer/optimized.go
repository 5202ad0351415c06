package normalizer

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/baditaflorin/go_fakenews/internal/pool"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	actionKeep byte = iota
	actionDrop
	actionLower
)

// OptimizedNormalizer produces the same output as DefaultNormalizer. ASCII
// input is handled in a single pass over a decision table with pooled
// buffers; anything else takes the reference path.
type OptimizedNormalizer struct {
	// Pre-computed decision table for ASCII characters (0-127)
	asciiTable [128]byte

	bytePool *pool.BufferPool
	casers   sync.Pool
}

// NewOptimizedNormalizer creates a new optimized normalizer
func NewOptimizedNormalizer() ports.Normalizer {
	n := &OptimizedNormalizer{
		bytePool: pool.NewBufferPool(8192),
		casers: sync.Pool{
			New: func() interface{} {
				c := cases.Lower(language.Und)
				return &c
			},
		},
	}

	for i := 0; i < 128; i++ {
		b := byte(i)
		switch {
		case b >= '0' && b <= '9', asciiPunct[b]:
			n.asciiTable[i] = actionDrop
		case b >= 'A' && b <= 'Z':
			n.asciiTable[i] = actionLower
		default:
			n.asciiTable[i] = actionKeep
		}
	}

	return n
}

// Normalize lowercases text and deletes digits and punctuation.
func (n *OptimizedNormalizer) Normalize(text string) string {
	if len(text) == 0 {
		return ""
	}

	for i := 0; i < len(text); i++ {
		if text[i] >= 128 {
			return n.normalizeUnicode(text)
		}
	}

	buffer := n.bytePool.Get()
	defer n.bytePool.Put(buffer)

	if cap(*buffer) < len(text) {
		*buffer = make([]byte, 0, len(text))
	}

	for i := 0; i < len(text); i++ {
		b := text[i]
		switch n.asciiTable[b] {
		case actionKeep:
			*buffer = append(*buffer, b)
		case actionLower:
			*buffer = append(*buffer, b+('a'-'A'))
		}
	}

	return string(*buffer)
}

func (n *OptimizedNormalizer) normalizeUnicode(text string) string {
	c := n.casers.Get().(*cases.Caser)
	lowered := c.String(text)
	c.Reset()
	n.casers.Put(c)

	buffer := n.bytePool.Get()
	defer n.bytePool.Put(buffer)

	for _, r := range lowered {
		if r < 128 {
			if n.asciiTable[r] == actionDrop {
				continue
			}
			*buffer = append(*buffer, byte(r))
			continue
		}
		if unicode.IsDigit(r) {
			continue
		}
		*buffer = utf8.AppendRune(*buffer, r)
	}

	return string(*buffer)
}
