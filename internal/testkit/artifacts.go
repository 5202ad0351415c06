// Package testkit builds small deterministic model artifacts for tests and
// benchmarks.
package testkit

import (
	"github.com/baditaflorin/go_fakenews/internal/adapters/artifact"
	"github.com/baditaflorin/go_fakenews/internal/adapters/model"
)

// RealTerms carry positive logistic weights, FakeTerms negative ones.
var (
	RealTerms = []string{"nasas", "rover", "landed", "mars", "mission", "microbial", "technology", "science"}
	FakeTerms = []string{"breaking", "cure", "cancer", "lemon", "water", "hiding"}
)

// TermWeight is the magnitude of every fixture coefficient.
const TermWeight = 1.5

// Fingerprint is the fingerprint given to in-memory fixture bundles.
const Fingerprint = "testkit-fixture"

// VectorizerBlob returns the fixture vectorizer: unigram term frequencies
// over RealTerms then FakeTerms, l2-normalized, no idf.
func VectorizerBlob() *artifact.VectorizerBlob {
	vocab := make(map[string]uint64)
	for _, term := range append(append([]string{}, RealTerms...), FakeTerms...) {
		vocab[term] = uint64(len(vocab))
	}
	return &artifact.VectorizerBlob{
		Format:     artifact.FormatTfidf,
		Version:    artifact.FormatVersion,
		Vocabulary: vocab,
		NgramRange: [2]int{1, 1},
		Norm:       string(model.NormL2),
	}
}

// ClassifierBlob returns the fixture logistic regression.
func ClassifierBlob() *artifact.ClassifierBlob {
	coef := make([]float64, 0, len(RealTerms)+len(FakeTerms))
	for range RealTerms {
		coef = append(coef, TermWeight)
	}
	for range FakeTerms {
		coef = append(coef, -TermWeight)
	}
	return &artifact.ClassifierBlob{
		Format:  artifact.FormatLogisticRegression,
		Version: artifact.FormatVersion,
		Classes: []int{0, 1},
		Coef:    coef,
	}
}

// Bundle builds the fixture artifacts in memory.
func Bundle() *artifact.Bundle {
	vectorizer, err := VectorizerBlob().Build()
	if err != nil {
		panic(err)
	}
	classifier, err := ClassifierBlob().Build()
	if err != nil {
		panic(err)
	}
	bundle, err := artifact.NewBundle(vectorizer, classifier, Fingerprint, true)
	if err != nil {
		panic(err)
	}
	return bundle
}

// WriteDir writes the fixture blobs into dir under the given names and
// returns dir.
func WriteDir(dir, vectorizerName, classifierName string) (string, error) {
	if err := artifact.WriteFile(dir+"/"+vectorizerName, VectorizerBlob()); err != nil {
		return "", err
	}
	if err := artifact.WriteFile(dir+"/"+classifierName, ClassifierBlob()); err != nil {
		return "", err
	}
	return dir, nil
}
