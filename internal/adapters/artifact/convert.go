package artifact

import (
	"fmt"
)

type blobHeader struct {
	Format string `msgpack:"format" json:"format"`
}

// Convert re-encodes the blob at in to out, choosing both codecs by file
// name. The blob is validated before it is written, so Convert also serves
// to check artifacts exported by other tools. It returns the blob format.
func Convert(in, out string) (string, error) {
	var head blobHeader
	if err := ReadFile(in, &head); err != nil {
		return "", fmt.Errorf("%s: %w", in, err)
	}

	var blob interface{}
	switch head.Format {
	case FormatTfidf:
		var b VectorizerBlob
		if err := ReadFile(in, &b); err != nil {
			return "", fmt.Errorf("%s: %w", in, err)
		}
		if _, err := b.Build(); err != nil {
			return "", fmt.Errorf("%s: %w", in, err)
		}
		blob = &b
	case FormatLogisticRegression, FormatMultinomialNB:
		var b ClassifierBlob
		if err := ReadFile(in, &b); err != nil {
			return "", fmt.Errorf("%s: %w", in, err)
		}
		if _, err := b.Build(); err != nil {
			return "", fmt.Errorf("%s: %w", in, err)
		}
		blob = &b
	default:
		return "", fmt.Errorf("%s: %w: %q", in, ErrUnknownFormat, head.Format)
	}

	if err := WriteFile(out, blob); err != nil {
		return "", err
	}
	return head.Format, nil
}
