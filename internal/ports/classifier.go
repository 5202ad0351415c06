package ports

import (
	"context"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
)

// ArticleClassifier classifies a single raw article.
type ArticleClassifier interface {
	Classify(ctx context.Context, text string) (domain.Result, error)
}

// ClassifierFunc adapts a function to the ArticleClassifier interface.
type ClassifierFunc func(ctx context.Context, text string) (domain.Result, error)

// Classify calls f(ctx, text).
func (f ClassifierFunc) Classify(ctx context.Context, text string) (domain.Result, error) {
	return f(ctx, text)
}
