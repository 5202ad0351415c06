package ports

import "github.com/baditaflorin/go_fakenews/internal/core/domain"

// Vectorizer turns normalized text into a feature vector using a vocabulary
// fitted at training time. Implementations must not mutate themselves.
type Vectorizer interface {
	Transform(text string) (domain.FeatureVector, error)
	// Dim is the number of features the vectorizer produces.
	Dim() int
}

// Classifier maps a feature vector to a label and class probabilities.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(vec domain.FeatureVector) (domain.Label, error)
	PredictProba(vec domain.FeatureVector) (domain.Distribution, error)
	// Dim is the number of features the classifier expects.
	Dim() int
}

// Artifacts is the read-only handle to a loaded vectorizer/classifier pair.
type Artifacts interface {
	Vectorizer() Vectorizer
	Classifier() Classifier
	// Fingerprint identifies the loaded pair, e.g. for cache keys.
	Fingerprint() string
}
