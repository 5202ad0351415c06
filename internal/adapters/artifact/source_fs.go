package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Default blob names.
const (
	DefaultVectorizerName = "vectorizer.mp"
	DefaultClassifierName = "model.mp"
)

// FileSource reads artifacts from a local directory.
type FileSource struct {
	Dir            string
	VectorizerName string
	ClassifierName string
}

// NewFileSource returns a source rooted at dir, using the default names for
// any empty name.
func NewFileSource(dir, vectorizerName, classifierName string) *FileSource {
	if vectorizerName == "" {
		vectorizerName = DefaultVectorizerName
	}
	if classifierName == "" {
		classifierName = DefaultClassifierName
	}
	return &FileSource{Dir: dir, VectorizerName: vectorizerName, ClassifierName: classifierName}
}

// Open opens the named blob.
func (s *FileSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, filepath.Join(s.Dir, name))
		}
		return nil, err
	}
	return f, nil
}

// Names returns the blob names.
func (s *FileSource) Names() (string, string) {
	return s.VectorizerName, s.ClassifierName
}

// Location returns the directory.
func (s *FileSource) Location() string {
	return s.Dir
}
