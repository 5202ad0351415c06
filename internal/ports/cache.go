package ports

import (
	"context"
	"time"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
)

// ResultCache stores classification results by key.
// A miss is reported as (zero, false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) (domain.Result, bool, error)
	Set(ctx context.Context, key string, result domain.Result, ttl time.Duration) error
	Close() error
}
