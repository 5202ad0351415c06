package artifact

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/baditaflorin/go_fakenews/internal/adapters/model"
	"github.com/baditaflorin/go_fakenews/internal/ports"
)

// FormatVersion is the only blob version this package reads and writes.
const FormatVersion = 1

// Blob format identifiers.
const (
	FormatTfidf              = "tfidf"
	FormatLogisticRegression = "logistic_regression"
	FormatMultinomialNB      = "multinomial_nb"
)

// Blob validation errors.
var (
	ErrUnknownFormat   = errors.New("unknown artifact format")
	ErrVersion         = errors.New("unsupported artifact version")
	ErrClasses         = errors.New("classifier classes must be [0, 1]")
	ErrIncompatible    = errors.New("vectorizer and classifier dimensions differ")
	ErrMissingArtifact = errors.New("artifact not found")
)

// VectorizerBlob is the serialized form of a fitted TF-IDF vectorizer.
type VectorizerBlob struct {
	Format      string            `msgpack:"format" json:"format"`
	Version     int               `msgpack:"version" json:"version"`
	Vocabulary  map[string]uint64 `msgpack:"vocabulary" json:"vocabulary"`
	IDF         []float64         `msgpack:"idf" json:"idf"`
	NgramRange  [2]int            `msgpack:"ngram_range" json:"ngram_range"`
	StopWords   []string          `msgpack:"stop_words" json:"stop_words,omitempty"`
	Norm        string            `msgpack:"norm" json:"norm"`
	UseIDF      bool              `msgpack:"use_idf" json:"use_idf"`
	SublinearTF bool              `msgpack:"sublinear_tf" json:"sublinear_tf"`
	Binary      bool              `msgpack:"binary" json:"binary"`
	Lowercase   bool              `msgpack:"lowercase" json:"lowercase"`
}

// ClassifierBlob is the serialized form of a fitted binary classifier.
type ClassifierBlob struct {
	Format         string      `msgpack:"format" json:"format"`
	Version        int         `msgpack:"version" json:"version"`
	Classes        []int       `msgpack:"classes" json:"classes"`
	Coef           []float64   `msgpack:"coef" json:"coef,omitempty"`
	Intercept      float64     `msgpack:"intercept" json:"intercept,omitempty"`
	ClassLogPrior  []float64   `msgpack:"class_log_prior" json:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `msgpack:"feature_log_prob" json:"feature_log_prob,omitempty"`
}

// Build converts the blob into a vectorizer.
func (b *VectorizerBlob) Build() (ports.Vectorizer, error) {
	if b.Format != FormatTfidf {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, b.Format)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, b.Version)
	}

	vocab := make(map[string]int, len(b.Vocabulary))
	for term, raw := range b.Vocabulary {
		idx, err := safecast.Conv[int](raw)
		if err != nil {
			return nil, fmt.Errorf("vocabulary index for %q: %w", term, err)
		}
		vocab[term] = idx
	}

	return model.NewTfidfVectorizer(model.TfidfConfig{
		Vocabulary:  vocab,
		IDF:         b.IDF,
		NgramMin:    b.NgramRange[0],
		NgramMax:    b.NgramRange[1],
		StopWords:   b.StopWords,
		Norm:        model.Norm(b.Norm),
		UseIDF:      b.UseIDF,
		SublinearTF: b.SublinearTF,
		Binary:      b.Binary,
		Lowercase:   b.Lowercase,
	})
}

// Build converts the blob into a classifier.
func (b *ClassifierBlob) Build() (ports.Classifier, error) {
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, b.Version)
	}
	if len(b.Classes) != 2 || b.Classes[0] != 0 || b.Classes[1] != 1 {
		return nil, fmt.Errorf("%w: got %v", ErrClasses, b.Classes)
	}

	switch b.Format {
	case FormatLogisticRegression:
		return model.NewLogisticRegression(b.Coef, b.Intercept)
	case FormatMultinomialNB:
		return model.NewMultinomialNB(b.ClassLogPrior, b.FeatureLogProb)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, b.Format)
	}
}
