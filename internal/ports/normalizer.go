package ports

// Normalizer defines the interface for text normalization.
// Implementations must be total and deterministic.
type Normalizer interface {
	Normalize(text string) string
}
