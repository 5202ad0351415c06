package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Norm selects the row normalization applied after weighting.
type Norm string

const (
	NormL2   Norm = "l2"
	NormL1   Norm = "l1"
	NormNone Norm = ""
)

// Vectorizer configuration errors.
var (
	ErrEmptyVocabulary = errors.New("vocabulary is empty")
	ErrBadIndex        = errors.New("vocabulary index out of range or duplicated")
	ErrIDFLength       = errors.New("idf length does not match vocabulary size")
	ErrNgramRange      = errors.New("invalid ngram range")
	ErrUnknownNorm     = errors.New("unknown norm")
	ErrNonFinite       = errors.New("non-finite weight")
)

// TfidfConfig holds the fitted state of a TF-IDF vectorizer.
type TfidfConfig struct {
	Vocabulary  map[string]int
	IDF         []float64
	NgramMin    int
	NgramMax    int
	StopWords   []string
	Norm        Norm
	UseIDF      bool
	SublinearTF bool
	Binary      bool
	Lowercase   bool
}

// TfidfVectorizer maps text onto a fixed vocabulary with TF-IDF weights.
// It is immutable after construction and safe for concurrent use.
type TfidfVectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	stopWords   map[string]struct{}
	ngramMin    int
	ngramMax    int
	norm        Norm
	useIDF      bool
	sublinearTF bool
	binary      bool
	lowercase   bool
}

// NewTfidfVectorizer validates cfg and builds a vectorizer. The maps and
// slices in cfg are copied.
func NewTfidfVectorizer(cfg TfidfConfig) (*TfidfVectorizer, error) {
	n := len(cfg.Vocabulary)
	if n == 0 {
		return nil, ErrEmptyVocabulary
	}

	seen := make([]bool, n)
	vocab := make(map[string]int, n)
	for term, idx := range cfg.Vocabulary {
		if idx < 0 || idx >= n || seen[idx] {
			return nil, fmt.Errorf("%w: term %q has index %d", ErrBadIndex, term, idx)
		}
		seen[idx] = true
		vocab[term] = idx
	}

	if cfg.NgramMin == 0 && cfg.NgramMax == 0 {
		cfg.NgramMin, cfg.NgramMax = 1, 1
	}
	if cfg.NgramMin < 1 || cfg.NgramMax < cfg.NgramMin {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrNgramRange, cfg.NgramMin, cfg.NgramMax)
	}

	switch cfg.Norm {
	case NormL1, NormL2, NormNone:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNorm, cfg.Norm)
	}

	var idf []float64
	if cfg.UseIDF {
		if len(cfg.IDF) != n {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrIDFLength, len(cfg.IDF), n)
		}
		idf = make([]float64, n)
		for i, w := range cfg.IDF {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("%w: idf[%d] = %g", ErrNonFinite, i, w)
			}
			idf[i] = w
		}
	}

	var stop map[string]struct{}
	if len(cfg.StopWords) > 0 {
		stop = make(map[string]struct{}, len(cfg.StopWords))
		for _, w := range cfg.StopWords {
			stop[w] = struct{}{}
		}
	}

	return &TfidfVectorizer{
		vocabulary:  vocab,
		idf:         idf,
		stopWords:   stop,
		ngramMin:    cfg.NgramMin,
		ngramMax:    cfg.NgramMax,
		norm:        cfg.Norm,
		useIDF:      cfg.UseIDF,
		sublinearTF: cfg.SublinearTF,
		binary:      cfg.Binary,
		lowercase:   cfg.Lowercase,
	}, nil
}

// Dim returns the vocabulary size.
func (v *TfidfVectorizer) Dim() int {
	return len(v.vocabulary)
}

// Terms returns the vocabulary ordered by feature index.
func (v *TfidfVectorizer) Terms() []string {
	terms := make([]string, len(v.vocabulary))
	for term, idx := range v.vocabulary {
		terms[idx] = term
	}
	return terms
}

// Transform builds the TF-IDF row for one document.
func (v *TfidfVectorizer) Transform(text string) (domain.FeatureVector, error) {
	if v.lowercase {
		text = cases.Lower(language.Und).String(text)
	}

	tokens := Tokenize(text)
	if v.stopWords != nil {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, stop := v.stopWords[tok]; !stop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	counts := make(map[int]float64)
	for _, term := range ngrams(tokens, v.ngramMin, v.ngramMax) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := domain.FeatureVector{
		Dim:     v.Dim(),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	for _, idx := range vec.Indices {
		tf := counts[idx]
		switch {
		case v.binary:
			tf = 1
		case v.sublinearTF:
			tf = math.Log(tf) + 1
		}
		if v.useIDF {
			tf *= v.idf[idx]
		}
		vec.Values = append(vec.Values, tf)
	}

	normalizeRow(vec.Values, v.norm)
	return vec, nil
}

func normalizeRow(values []float64, norm Norm) {
	var total float64
	switch norm {
	case NormL2:
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case NormL1:
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
