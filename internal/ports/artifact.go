package ports

import (
	"context"
	"io"
)

// ArtifactSource opens the serialized vectorizer and classifier blobs.
type ArtifactSource interface {
	// Open returns a reader for the named blob. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Names returns the vectorizer and classifier blob names.
	Names() (vectorizer, classifier string)
	// Location describes where the blobs live, for logs.
	Location() string
}
