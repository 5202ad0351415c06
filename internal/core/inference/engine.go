// Package inference turns raw article text into a classification result
// using a loaded vectorizer/classifier pair.
package inference

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/ports"
)

const opClassify = "classify"

// Engine runs normalize -> transform -> predict -> derive. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	artifacts  ports.Artifacts
	normalizer ports.Normalizer
	logger     ports.Logger
}

// Explanation exposes the intermediate values of one classification.
type Explanation struct {
	Normalized string
	Features   domain.FeatureVector
	Result     domain.Result
}

// NewEngine creates an engine over loaded artifacts. Any missing dependency
// is an artifact-load error: without it the model cannot serve requests.
func NewEngine(artifacts ports.Artifacts, normalizer ports.Normalizer, logger ports.Logger) (*Engine, error) {
	const op = "new engine"
	if artifacts == nil || artifacts.Vectorizer() == nil || artifacts.Classifier() == nil {
		return nil, domain.NewArtifactLoadError(op, errors.New("vectorizer or classifier not loaded"))
	}
	if normalizer == nil {
		return nil, domain.NewArtifactLoadError(op, errors.New("normalizer is required"))
	}
	if logger == nil {
		return nil, domain.NewArtifactLoadError(op, errors.New("logger is required"))
	}

	return &Engine{
		artifacts:  artifacts,
		normalizer: normalizer,
		logger:     logger,
	}, nil
}

// Artifacts returns the handle the engine was built with.
func (e *Engine) Artifacts() ports.Artifacts {
	return e.artifacts
}

// Normalize exposes the engine's normalizer.
func (e *Engine) Normalize(text string) string {
	return e.normalizer.Normalize(text)
}

// Classify classifies one article. Blank input fails with an empty-input
// error before anything else runs; failures inside the artifacts are
// returned as inference errors.
func (e *Engine) Classify(text string) (domain.Result, error) {
	exp, err := e.Explain(text)
	if err != nil {
		return domain.Result{}, err
	}
	return exp.Result, nil
}

// ClassifyNormalized classifies text that has already been normalized.
func (e *Engine) ClassifyNormalized(normalized string) (domain.Result, error) {
	_, result, err := e.infer(normalized)
	if err != nil {
		e.logger.Error("Inference failed", "error", err)
		return domain.Result{}, err
	}
	return result, nil
}

// Explain classifies one article and returns the intermediate values.
func (e *Engine) Explain(text string) (Explanation, error) {
	if strings.TrimSpace(text) == "" {
		return Explanation{}, domain.NewEmptyInputError(opClassify)
	}

	normalized := e.normalizer.Normalize(text)
	e.logger.Debug("Normalized article",
		"raw_bytes", len(text),
		"normalized_bytes", len(normalized),
	)

	vec, result, err := e.infer(normalized)
	if err != nil {
		e.logger.Error("Inference failed", "error", err)
		return Explanation{}, err
	}

	e.logger.Debug("Classified article",
		"label", result.Label.String(),
		"confidence", result.Confidence,
		"tier", result.Tier.String(),
		"features", vec.NNZ(),
	)

	return Explanation{
		Normalized: normalized,
		Features:   vec,
		Result:     result,
	}, nil
}

func (e *Engine) infer(normalized string) (vec domain.FeatureVector, result domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewInferenceError(opClassify, fmt.Errorf("panic: %v", r))
		}
	}()

	vec, err = e.artifacts.Vectorizer().Transform(normalized)
	if err != nil {
		return vec, result, domain.NewInferenceError(opClassify, fmt.Errorf("transform: %w", err))
	}

	classifier := e.artifacts.Classifier()
	label, err := classifier.Predict(vec)
	if err != nil {
		return vec, result, domain.NewInferenceError(opClassify, fmt.Errorf("predict: %w", err))
	}
	if !label.Valid() {
		return vec, result, domain.NewInferenceError(opClassify, fmt.Errorf("predict: unknown class %d", int(label)))
	}

	dist, err := classifier.PredictProba(vec)
	if err != nil {
		return vec, result, domain.NewInferenceError(opClassify, fmt.Errorf("predict probabilities: %w", err))
	}
	if err := dist.Validate(); err != nil {
		return vec, result, domain.NewInferenceError(opClassify, fmt.Errorf("predict probabilities: %w", err))
	}

	if label != dist.ArgMax() && dist[0] != dist[1] {
		e.logger.Warn("Classifier label disagrees with its probabilities",
			"label", label.String(),
			"p_fake", dist.Fake(),
			"p_real", dist.Real(),
		)
	}

	return vec, domain.NewResult(label, dist), nil
}
