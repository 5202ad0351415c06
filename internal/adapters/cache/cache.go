// Package cache provides result caches keyed by model fingerprint and
// normalized article text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/ports"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "fakenews:result:"

// Key derives the cache key for a normalized article under a model.
func Key(fingerprint, normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	fp := fingerprint
	if len(fp) > 16 {
		fp = fp[:16]
	}
	return KeyPrefix + fp + ":" + hex.EncodeToString(sum[:])
}

// Nop never stores anything.
type Nop struct{}

// NewNop returns a cache that always misses.
func NewNop() ports.ResultCache { return Nop{} }

func (Nop) Get(context.Context, string) (domain.Result, bool, error) {
	return domain.Result{}, false, nil
}

func (Nop) Set(context.Context, string, domain.Result, time.Duration) error { return nil }

func (Nop) Close() error { return nil }
