package model

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "hello world", []string{"hello", "world"}},
		{"single runes dropped", "a b cd e", []string{"cd"}},
		{"underscore and digits are word runes", "snake_case x1 12", []string{"snake_case", "x1", "12"}},
		{"punctuation splits", "one,two;three", []string{"one", "two", "three"}},
		{"unicode letters", "café au lait", []string{"café", "au", "lait"}},
		{"repeated whitespace", "  spaced   out  ", []string{"spaced", "out"}},
		{"empty", "", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Tokenize(tc.input); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Tokenize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNgrams(t *testing.T) {
	tokens := []string{"a1", "b2", "c3"}

	tests := []struct {
		name     string
		min, max int
		expected []string
	}{
		{"unigrams", 1, 1, []string{"a1", "b2", "c3"}},
		{"uni and bigrams", 1, 2, []string{"a1", "b2", "c3", "a1 b2", "b2 c3"}},
		{"bigrams only", 2, 2, []string{"a1 b2", "b2 c3"}},
		{"longer than input", 1, 5, []string{"a1", "b2", "c3", "a1 b2", "b2 c3", "a1 b2 c3"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ngrams(tokens, tc.min, tc.max); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("ngrams(%d,%d) = %q, want %q", tc.min, tc.max, got, tc.expected)
			}
		})
	}
}

func testVocabulary() map[string]int {
	return map[string]int{"fake": 0, "news": 1, "real news": 2, "real": 3}
}

func TestTfidfTransform(t *testing.T) {
	sqrt17 := math.Sqrt(17)

	tests := []struct {
		name    string
		cfg     TfidfConfig
		text    string
		indices []int
		values  []float64
	}{
		{
			name: "idf with l2 and bigrams",
			cfg: TfidfConfig{
				Vocabulary: testVocabulary(), IDF: []float64{1, 2, 3, 1},
				NgramMin: 1, NgramMax: 2, Norm: NormL2, UseIDF: true,
			},
			text:    "real news real",
			indices: []int{1, 2, 3},
			values:  []float64{2 / sqrt17, 3 / sqrt17, 2 / sqrt17},
		},
		{
			name: "sublinear tf without norm",
			cfg: TfidfConfig{
				Vocabulary: testVocabulary(), NgramMin: 1, NgramMax: 1, SublinearTF: true,
			},
			text:    "real real news",
			indices: []int{1, 3},
			values:  []float64{1, 1 + math.Log(2)},
		},
		{
			name: "binary with l1",
			cfg: TfidfConfig{
				Vocabulary: testVocabulary(), Binary: true, Norm: NormL1,
			},
			text:    "fake fake fake news",
			indices: []int{0, 1},
			values:  []float64{0.5, 0.5},
		},
		{
			name: "stop words removed before ngrams",
			cfg: TfidfConfig{
				Vocabulary: testVocabulary(), NgramMin: 1, NgramMax: 2,
				StopWords: []string{"news"},
			},
			text:    "real news real",
			indices: []int{3},
			values:  []float64{2},
		},
		{
			name: "lowercase option",
			cfg: TfidfConfig{
				Vocabulary: testVocabulary(), Lowercase: true,
			},
			text:    "FAKE",
			indices: []int{0},
			values:  []float64{1},
		},
		{
			name: "unknown terms give an empty row",
			cfg: TfidfConfig{
				Vocabulary: testVocabulary(), Norm: NormL2,
			},
			text:    "nothing matches here",
			indices: []int{},
			values:  []float64{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := NewTfidfVectorizer(tc.cfg)
			if err != nil {
				t.Fatalf("NewTfidfVectorizer: %v", err)
			}
			vec, err := v.Transform(tc.text)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if vec.Dim != 4 {
				t.Errorf("Dim = %d, want 4", vec.Dim)
			}
			if !reflect.DeepEqual(vec.Indices, tc.indices) {
				t.Fatalf("indices = %v, want %v", vec.Indices, tc.indices)
			}
			for i := range tc.values {
				if !approx(vec.Values[i], tc.values[i]) {
					t.Errorf("values[%d] = %v, want %v", i, vec.Values[i], tc.values[i])
				}
			}
		})
	}
}

func TestNewTfidfVectorizerErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  TfidfConfig
		want error
	}{
		{"empty vocabulary", TfidfConfig{}, ErrEmptyVocabulary},
		{"index out of range", TfidfConfig{Vocabulary: map[string]int{"aa": 1}}, ErrBadIndex},
		{"duplicate index", TfidfConfig{Vocabulary: map[string]int{"aa": 0, "bb": 0}}, ErrBadIndex},
		{"idf length", TfidfConfig{Vocabulary: map[string]int{"aa": 0}, UseIDF: true, IDF: []float64{1, 2}}, ErrIDFLength},
		{"non-finite idf", TfidfConfig{Vocabulary: map[string]int{"aa": 0}, UseIDF: true, IDF: []float64{math.Inf(1)}}, ErrNonFinite},
		{"ngram range", TfidfConfig{Vocabulary: map[string]int{"aa": 0}, NgramMin: 2, NgramMax: 1}, ErrNgramRange},
		{"norm", TfidfConfig{Vocabulary: map[string]int{"aa": 0}, Norm: "max"}, ErrUnknownNorm},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTfidfVectorizer(tc.cfg); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTfidfTerms(t *testing.T) {
	v, err := NewTfidfVectorizer(TfidfConfig{Vocabulary: testVocabulary()})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"fake", "news", "real news", "real"}
	if got := v.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %q, want %q", got, want)
	}
}

func vector(dim int, pairs ...float64) domain.FeatureVector {
	vec := domain.FeatureVector{Dim: dim}
	for i := 0; i+1 < len(pairs); i += 2 {
		vec.Indices = append(vec.Indices, int(pairs[i]))
		vec.Values = append(vec.Values, pairs[i+1])
	}
	return vec
}

func TestLogisticRegression(t *testing.T) {
	m, err := NewLogisticRegression([]float64{1, -2}, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		vec   domain.FeatureVector
		label domain.Label
		pReal float64
	}{
		{"negative decision", vector(2, 0, 1, 1, 1), domain.Fake, 1 / (1 + math.Exp(0.5))},
		{"intercept only", vector(2), domain.Real, 1 / (1 + math.Exp(-0.5))},
		{"strongly real", vector(2, 0, 10), domain.Real, 1 / (1 + math.Exp(-10.5))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			label, err := m.Predict(tc.vec)
			if err != nil {
				t.Fatal(err)
			}
			if label != tc.label {
				t.Errorf("label = %v, want %v", label, tc.label)
			}
			dist, err := m.PredictProba(tc.vec)
			if err != nil {
				t.Fatal(err)
			}
			if !approx(dist.Real(), tc.pReal) || !approx(dist.Fake()+dist.Real(), 1) {
				t.Errorf("dist = %v, want p_real %v", dist, tc.pReal)
			}
			if dist.ArgMax() != label {
				t.Errorf("argmax %v disagrees with label %v", dist.ArgMax(), label)
			}
		})
	}
}

func TestLogisticRegressionZeroDecisionIsFake(t *testing.T) {
	m, err := NewLogisticRegression([]float64{1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	label, _ := m.Predict(vector(1))
	dist, _ := m.PredictProba(vector(1))
	if label != domain.Fake || dist != (domain.Distribution{0.5, 0.5}) {
		t.Errorf("label = %v, dist = %v; want FAKE at 0.5/0.5", label, dist)
	}
}

func TestLogisticRegressionExtremeDecision(t *testing.T) {
	m, err := NewLogisticRegression([]float64{1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, z := range []float64{-1000, 1000} {
		dist, err := m.PredictProba(vector(1, 0, z))
		if err != nil {
			t.Fatal(err)
		}
		if err := dist.Validate(); err != nil {
			t.Errorf("z=%v: %v", z, err)
		}
	}
}

func TestMultinomialNB(t *testing.T) {
	prior := []float64{math.Log(0.5), math.Log(0.5)}
	flp := [][]float64{
		{math.Log(0.8), math.Log(0.2)},
		{math.Log(0.2), math.Log(0.8)},
	}
	m, err := NewMultinomialNB(prior, flp)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		vec   domain.FeatureVector
		label domain.Label
		pFake float64
	}{
		{"fake feature", vector(2, 0, 1), domain.Fake, 0.8},
		{"real feature", vector(2, 1, 1), domain.Real, 0.2},
		{"tie goes to fake", vector(2), domain.Fake, 0.5},
		{"large counts stay finite", vector(2, 1, 5000), domain.Real, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			label, err := m.Predict(tc.vec)
			if err != nil {
				t.Fatal(err)
			}
			if label != tc.label {
				t.Errorf("label = %v, want %v", label, tc.label)
			}
			dist, err := m.PredictProba(tc.vec)
			if err != nil {
				t.Fatal(err)
			}
			if err := dist.Validate(); err != nil {
				t.Fatal(err)
			}
			if !approx(dist.Fake(), tc.pFake) {
				t.Errorf("p_fake = %v, want %v", dist.Fake(), tc.pFake)
			}
		})
	}
}

func TestClassifierRejectsBadVectors(t *testing.T) {
	lr, _ := NewLogisticRegression([]float64{1, 2, 3}, 0)
	nb, _ := NewMultinomialNB([]float64{0, 0}, [][]float64{{0, 0, 0}, {0, 0, 0}})

	tests := []struct {
		name string
		vec  domain.FeatureVector
		want error
	}{
		{"wrong dimension", vector(4, 0, 1), ErrDimensionMismatch},
		{"index out of range", vector(3, 5, 1), ErrMalformedVector},
		{"length mismatch", domain.FeatureVector{Dim: 3, Indices: []int{0, 1}, Values: []float64{1}}, ErrMalformedVector},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := lr.PredictProba(tc.vec); !errors.Is(err, tc.want) {
				t.Errorf("logistic regression error = %v, want %v", err, tc.want)
			}
			if _, err := nb.Predict(tc.vec); !errors.Is(err, tc.want) {
				t.Errorf("naive bayes error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestClassifierConstructorErrors(t *testing.T) {
	if _, err := NewLogisticRegression(nil, 0); err == nil {
		t.Error("empty coefficients accepted")
	}
	if _, err := NewLogisticRegression([]float64{math.NaN()}, 0); !errors.Is(err, ErrNonFinite) {
		t.Errorf("NaN coefficient: %v", err)
	}
	if _, err := NewMultinomialNB([]float64{0}, [][]float64{{0}}); err == nil {
		t.Error("single class accepted")
	}
	if _, err := NewMultinomialNB([]float64{0, 0}, [][]float64{{0}, {0, 0}}); err == nil {
		t.Error("ragged rows accepted")
	}
}
