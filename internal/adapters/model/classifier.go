package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
)

// ErrDimensionMismatch is returned when a feature vector does not have the
// dimensionality the classifier was trained on.
var ErrDimensionMismatch = errors.New("feature dimension mismatch")

// ErrMalformedVector is returned for vectors whose indices and values do not
// line up or fall outside the declared dimension.
var ErrMalformedVector = errors.New("malformed feature vector")

func checkVector(vec domain.FeatureVector, dim int) error {
	if vec.Dim != dim {
		return fmt.Errorf("%w: vector has %d features, classifier expects %d", ErrDimensionMismatch, vec.Dim, dim)
	}
	if len(vec.Indices) != len(vec.Values) {
		return fmt.Errorf("%w: %d indices, %d values", ErrMalformedVector, len(vec.Indices), len(vec.Values))
	}
	for _, idx := range vec.Indices {
		if idx < 0 || idx >= dim {
			return fmt.Errorf("%w: index %d outside [0,%d)", ErrMalformedVector, idx, dim)
		}
	}
	return nil
}

func checkFinite(name string, values []float64) error {
	for i, w := range values {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %s[%d] = %g", ErrNonFinite, name, i, w)
		}
	}
	return nil
}

// LogisticRegression is a fitted binary logistic regression model.
type LogisticRegression struct {
	coef      []float64
	intercept float64
}

// NewLogisticRegression copies the weights of a fitted model.
func NewLogisticRegression(coef []float64, intercept float64) (*LogisticRegression, error) {
	if len(coef) == 0 {
		return nil, errors.New("logistic regression has no coefficients")
	}
	if err := checkFinite("coef", coef); err != nil {
		return nil, err
	}
	if err := checkFinite("intercept", []float64{intercept}); err != nil {
		return nil, err
	}
	w := make([]float64, len(coef))
	copy(w, coef)
	return &LogisticRegression{coef: w, intercept: intercept}, nil
}

// Dim returns the number of input features.
func (m *LogisticRegression) Dim() int {
	return len(m.coef)
}

// Decision returns w.x + b.
func (m *LogisticRegression) Decision(vec domain.FeatureVector) (float64, error) {
	if err := checkVector(vec, len(m.coef)); err != nil {
		return 0, err
	}
	return vec.Dot(m.coef) + m.intercept, nil
}

// Predict returns Real when the decision value is positive, Fake otherwise.
func (m *LogisticRegression) Predict(vec domain.FeatureVector) (domain.Label, error) {
	z, err := m.Decision(vec)
	if err != nil {
		return domain.Fake, err
	}
	if z > 0 {
		return domain.Real, nil
	}
	return domain.Fake, nil
}

// PredictProba returns (1-sigmoid(z), sigmoid(z)).
func (m *LogisticRegression) PredictProba(vec domain.FeatureVector) (domain.Distribution, error) {
	z, err := m.Decision(vec)
	if err != nil {
		return domain.Distribution{}, err
	}
	p := sigmoid(z)
	return domain.Distribution{1 - p, p}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// MultinomialNB is a fitted two-class multinomial naive Bayes model.
type MultinomialNB struct {
	classLogPrior  [2]float64
	featureLogProb [2][]float64
}

// NewMultinomialNB copies the parameters of a fitted model.
func NewMultinomialNB(classLogPrior []float64, featureLogProb [][]float64) (*MultinomialNB, error) {
	if len(classLogPrior) != 2 || len(featureLogProb) != 2 {
		return nil, fmt.Errorf("naive bayes needs 2 classes, got %d priors and %d feature rows", len(classLogPrior), len(featureLogProb))
	}
	if len(featureLogProb[0]) == 0 || len(featureLogProb[0]) != len(featureLogProb[1]) {
		return nil, fmt.Errorf("naive bayes feature rows have lengths %d and %d", len(featureLogProb[0]), len(featureLogProb[1]))
	}
	if err := checkFinite("class_log_prior", classLogPrior); err != nil {
		return nil, err
	}

	m := &MultinomialNB{}
	for c := 0; c < 2; c++ {
		if err := checkFinite(fmt.Sprintf("feature_log_prob[%d]", c), featureLogProb[c]); err != nil {
			return nil, err
		}
		m.classLogPrior[c] = classLogPrior[c]
		m.featureLogProb[c] = append([]float64(nil), featureLogProb[c]...)
	}
	return m, nil
}

// Dim returns the number of input features.
func (m *MultinomialNB) Dim() int {
	return len(m.featureLogProb[0])
}

func (m *MultinomialNB) jointLogLikelihood(vec domain.FeatureVector) ([2]float64, error) {
	var jll [2]float64
	if err := checkVector(vec, m.Dim()); err != nil {
		return jll, err
	}
	for c := 0; c < 2; c++ {
		jll[c] = m.classLogPrior[c] + vec.Dot(m.featureLogProb[c])
	}
	return jll, nil
}

// Predict returns the class with the highest joint log likelihood; ties go to Fake.
func (m *MultinomialNB) Predict(vec domain.FeatureVector) (domain.Label, error) {
	jll, err := m.jointLogLikelihood(vec)
	if err != nil {
		return domain.Fake, err
	}
	if jll[domain.Real] > jll[domain.Fake] {
		return domain.Real, nil
	}
	return domain.Fake, nil
}

// PredictProba normalizes the joint log likelihoods with log-sum-exp.
func (m *MultinomialNB) PredictProba(vec domain.FeatureVector) (domain.Distribution, error) {
	jll, err := m.jointLogLikelihood(vec)
	if err != nil {
		return domain.Distribution{}, err
	}
	hi := math.Max(jll[0], jll[1])
	logNorm := hi + math.Log(math.Exp(jll[0]-hi)+math.Exp(jll[1]-hi))
	return domain.Distribution{
		math.Exp(jll[0] - logNorm),
		math.Exp(jll[1] - logNorm),
	}, nil
}
