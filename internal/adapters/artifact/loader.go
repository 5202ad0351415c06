package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/ports"
)

const opLoad = "load artifacts"

// Bundle is an immutable, loaded vectorizer/classifier pair.
type Bundle struct {
	vectorizer  ports.Vectorizer
	classifier  ports.Classifier
	fingerprint string
	location    string
}

// NewBundle wraps already-built artifacts. Strict bundles reject a
// dimension mismatch between the two.
func NewBundle(vectorizer ports.Vectorizer, classifier ports.Classifier, fingerprint string, strict bool) (*Bundle, error) {
	if vectorizer == nil || classifier == nil {
		return nil, domain.NewArtifactLoadError(opLoad, fmt.Errorf("%w: vectorizer or classifier is nil", ErrMissingArtifact))
	}
	if strict && vectorizer.Dim() != classifier.Dim() {
		return nil, domain.NewArtifactLoadError(opLoad, fmt.Errorf("%w: vectorizer has %d features, classifier expects %d",
			ErrIncompatible, vectorizer.Dim(), classifier.Dim()))
	}
	return &Bundle{vectorizer: vectorizer, classifier: classifier, fingerprint: fingerprint}, nil
}

// Vectorizer returns the loaded vectorizer.
func (b *Bundle) Vectorizer() ports.Vectorizer { return b.vectorizer }

// Classifier returns the loaded classifier.
func (b *Bundle) Classifier() ports.Classifier { return b.classifier }

// Fingerprint returns the hex SHA-256 of both serialized blobs.
func (b *Bundle) Fingerprint() string { return b.fingerprint }

// Location returns where the bundle was loaded from.
func (b *Bundle) Location() string { return b.location }

type loadOptions struct {
	strict bool
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithStrict controls whether a dimension mismatch fails the load (default
// true). When disabled the mismatch is logged and surfaces at inference time.
func WithStrict(strict bool) LoadOption {
	return func(o *loadOptions) {
		o.strict = strict
	}
}

// Load reads, decodes and validates both artifacts from src. Every failure
// is returned as an artifact-load error; Load never panics past this point.
func Load(ctx context.Context, src ports.ArtifactSource, logger ports.Logger, opts ...LoadOption) (bundle *Bundle, err error) {
	o := loadOptions{strict: true}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if r := recover(); r != nil {
			bundle = nil
			err = domain.NewArtifactLoadError(opLoad, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			logger.Error("Failed to load model artifacts", "location", src.Location(), "error", err)
		}
	}()

	vecName, clfName := src.Names()
	logger.Info("Loading model artifacts",
		"location", src.Location(),
		"vectorizer", vecName,
		"classifier", clfName,
	)

	hash := sha256.New()

	var vecBlob VectorizerBlob
	if err := readBlob(ctx, src, vecName, hash, &vecBlob); err != nil {
		return nil, domain.NewArtifactLoadError(opLoad, err)
	}
	var clfBlob ClassifierBlob
	if err := readBlob(ctx, src, clfName, hash, &clfBlob); err != nil {
		return nil, domain.NewArtifactLoadError(opLoad, err)
	}

	vectorizer, err := vecBlob.Build()
	if err != nil {
		return nil, domain.NewArtifactLoadError(opLoad, fmt.Errorf("%s: %w", vecName, err))
	}
	classifier, err := clfBlob.Build()
	if err != nil {
		return nil, domain.NewArtifactLoadError(opLoad, fmt.Errorf("%s: %w", clfName, err))
	}

	if !o.strict && vectorizer.Dim() != classifier.Dim() {
		logger.Warn("Vectorizer and classifier dimensions differ",
			"vectorizer_dim", vectorizer.Dim(),
			"classifier_dim", classifier.Dim(),
		)
	}

	bundle, err = NewBundle(vectorizer, classifier, hex.EncodeToString(hash.Sum(nil)), o.strict)
	if err != nil {
		return nil, err
	}
	bundle.location = src.Location()

	logger.Info("Model artifacts loaded",
		"vectorizer_format", vecBlob.Format,
		"classifier_format", clfBlob.Format,
		"features", vectorizer.Dim(),
		"fingerprint", bundle.fingerprint,
	)
	return bundle, nil
}

func readBlob(ctx context.Context, src ports.ArtifactSource, name string, hash io.Writer, out interface{}) error {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%s: read: %w", name, err)
	}
	_, _ = hash.Write(data)

	if err := CodecFor(name).Decode(data, out); err != nil {
		return fmt.Errorf("%s: decode: %w", name, err)
	}
	return nil
}

// WriteFile serializes a blob to path using the codec implied by its name.
// The file is written to a temporary name and renamed into place.
func WriteFile(path string, blob interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := CodecFor(path).Encode(f, blob); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: encode: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile decodes the blob at path into out.
func ReadFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return CodecFor(path).Decode(data, out)
}
