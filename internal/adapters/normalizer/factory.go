package normalizer

import (
	"fmt"
	"strings"

	"github.com/baditaflorin/go_fakenews/internal/ports"
)

// NormalizerFactory creates the appropriate normalizer based on performance requirements
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// NormalizerType selects a normalizer implementation.
type NormalizerType int

const (
	// DefaultNormalizerType is the reference normalizer
	DefaultNormalizerType NormalizerType = iota
	// OptimizedNormalizerType uses a lookup table and buffer pooling
	OptimizedNormalizerType
)

// String returns the config name of the type.
func (t NormalizerType) String() string {
	if t == OptimizedNormalizerType {
		return "optimized"
	}
	return "default"
}

// ParseType maps a config value to a NormalizerType.
func ParseType(name string) (NormalizerType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return DefaultNormalizerType, nil
	case "optimized", "fast":
		return OptimizedNormalizerType, nil
	default:
		return DefaultNormalizerType, fmt.Errorf("unknown normalizer type %q", name)
	}
}

// CreateNormalizer creates a normalizer of the specified type
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case OptimizedNormalizerType:
		return NewOptimizedNormalizer()
	default:
		return NewDefaultNormalizer()
	}
}
