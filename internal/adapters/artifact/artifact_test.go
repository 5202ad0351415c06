package artifact_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/baditaflorin/go_fakenews/internal/adapters/artifact"
	"github.com/baditaflorin/go_fakenews/internal/adapters/logger"
	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/testkit"
)

func TestCodecFor(t *testing.T) {
	tests := []struct {
		name     string
		expected artifact.Codec
	}{
		{"model.mp", artifact.Codec{Encoding: artifact.EncodingMsgpack}},
		{"model.msgpack", artifact.Codec{Encoding: artifact.EncodingMsgpack}},
		{"model.json", artifact.Codec{Encoding: artifact.EncodingJSON}},
		{"dir/MODEL.JSON", artifact.Codec{Encoding: artifact.EncodingJSON}},
		{"model.mp.zst", artifact.Codec{Encoding: artifact.EncodingMsgpack, Compressed: true}},
		{"model.json.zst", artifact.Codec{Encoding: artifact.EncodingJSON, Compressed: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := artifact.CodecFor(tc.name); got != tc.expected {
				t.Errorf("CodecFor(%q) = %+v, want %+v", tc.name, got, tc.expected)
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	for _, name := range []string{"vectorizer.mp", "vectorizer.json", "vectorizer.mp.zst"} {
		t.Run(name, func(t *testing.T) {
			codec := artifact.CodecFor(name)

			var first bytes.Buffer
			if err := codec.Encode(&first, testkit.VectorizerBlob()); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 20; i++ {
				var again bytes.Buffer
				if err := codec.Encode(&again, testkit.VectorizerBlob()); err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(first.Bytes(), again.Bytes()) {
					t.Fatalf("encoding %d differs from the first", i+1)
				}
			}
		})
	}
}

func TestLoadFromFiles(t *testing.T) {
	tests := []struct {
		name           string
		vectorizerName string
		classifierName string
	}{
		{"msgpack", "vectorizer.mp", "model.mp"},
		{"json", "vectorizer.json", "model.json"},
		{"zstd msgpack", "vectorizer.mp.zst", "model.mp.zst"},
		{"mixed", "vectorizer.json.zst", "model.mp"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir, err := testkit.WriteDir(t.TempDir(), tc.vectorizerName, tc.classifierName)
			if err != nil {
				t.Fatalf("WriteDir: %v", err)
			}

			src := artifact.NewFileSource(dir, tc.vectorizerName, tc.classifierName)
			bundle, err := artifact.Load(context.Background(), src, logger.NewNopLogger())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			want := len(testkit.RealTerms) + len(testkit.FakeTerms)
			if bundle.Vectorizer().Dim() != want || bundle.Classifier().Dim() != want {
				t.Errorf("dims = %d/%d, want %d", bundle.Vectorizer().Dim(), bundle.Classifier().Dim(), want)
			}
			if len(bundle.Fingerprint()) != 64 {
				t.Errorf("fingerprint %q is not a sha256 hex digest", bundle.Fingerprint())
			}
			if bundle.Location() != dir {
				t.Errorf("location = %q, want %q", bundle.Location(), dir)
			}
		})
	}
}

func TestLoadFingerprintTracksContent(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNopLogger()

	dir1, _ := testkit.WriteDir(t.TempDir(), "vectorizer.mp", "model.mp")
	dir2, _ := testkit.WriteDir(t.TempDir(), "vectorizer.mp", "model.mp")

	b1, err := artifact.Load(ctx, artifact.NewFileSource(dir1, "", ""), log)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := artifact.Load(ctx, artifact.NewFileSource(dir2, "", ""), log)
	if err != nil {
		t.Fatal(err)
	}
	if b1.Fingerprint() != b2.Fingerprint() {
		t.Error("identical artifacts have different fingerprints")
	}

	clf := testkit.ClassifierBlob()
	clf.Intercept = 0.25
	if err := artifact.WriteFile(filepath.Join(dir2, "model.mp"), clf); err != nil {
		t.Fatal(err)
	}
	b3, err := artifact.Load(ctx, artifact.NewFileSource(dir2, "", ""), log)
	if err != nil {
		t.Fatal(err)
	}
	if b3.Fingerprint() == b1.Fingerprint() {
		t.Error("changed classifier kept the same fingerprint")
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
		want  error
	}{
		{
			name:  "missing vectorizer",
			setup: func(t *testing.T, dir string) {},
			want:  artifact.ErrMissingArtifact,
		},
		{
			name: "missing classifier",
			setup: func(t *testing.T, dir string) {
				mustWrite(t, filepath.Join(dir, "vectorizer.mp"), testkit.VectorizerBlob())
			},
			want: artifact.ErrMissingArtifact,
		},
		{
			name: "corrupt vectorizer",
			setup: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, "vectorizer.mp"), []byte{0xc1, 0x00, 0xff}, 0o644); err != nil {
					t.Fatal(err)
				}
				mustWrite(t, filepath.Join(dir, "model.mp"), testkit.ClassifierBlob())
			},
			want: nil,
		},
		{
			name: "unknown classifier format",
			setup: func(t *testing.T, dir string) {
				mustWrite(t, filepath.Join(dir, "vectorizer.mp"), testkit.VectorizerBlob())
				clf := testkit.ClassifierBlob()
				clf.Format = "random_forest"
				mustWrite(t, filepath.Join(dir, "model.mp"), clf)
			},
			want: artifact.ErrUnknownFormat,
		},
		{
			name: "wrong version",
			setup: func(t *testing.T, dir string) {
				vec := testkit.VectorizerBlob()
				vec.Version = 2
				mustWrite(t, filepath.Join(dir, "vectorizer.mp"), vec)
				mustWrite(t, filepath.Join(dir, "model.mp"), testkit.ClassifierBlob())
			},
			want: artifact.ErrVersion,
		},
		{
			name: "reversed classes",
			setup: func(t *testing.T, dir string) {
				mustWrite(t, filepath.Join(dir, "vectorizer.mp"), testkit.VectorizerBlob())
				clf := testkit.ClassifierBlob()
				clf.Classes = []int{1, 0}
				mustWrite(t, filepath.Join(dir, "model.mp"), clf)
			},
			want: artifact.ErrClasses,
		},
		{
			name: "dimension mismatch",
			setup: func(t *testing.T, dir string) {
				mustWrite(t, filepath.Join(dir, "vectorizer.mp"), testkit.VectorizerBlob())
				clf := testkit.ClassifierBlob()
				clf.Coef = clf.Coef[:3]
				mustWrite(t, filepath.Join(dir, "model.mp"), clf)
			},
			want: artifact.ErrIncompatible,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			tc.setup(t, dir)

			bundle, err := artifact.Load(context.Background(), artifact.NewFileSource(dir, "", ""), logger.NewNopLogger())
			if err == nil {
				t.Fatalf("Load succeeded with bundle %v", bundle)
			}
			if !errors.Is(err, domain.ErrArtifactLoad) {
				t.Errorf("error %v is not an artifact-load error", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("error %v does not wrap %v", err, tc.want)
			}
		})
	}
}

func TestLoadNonStrictAcceptsMismatch(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "vectorizer.mp"), testkit.VectorizerBlob())
	clf := testkit.ClassifierBlob()
	clf.Coef = clf.Coef[:3]
	mustWrite(t, filepath.Join(dir, "model.mp"), clf)

	bundle, err := artifact.Load(context.Background(), artifact.NewFileSource(dir, "", ""),
		logger.NewNopLogger(), artifact.WithStrict(false))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if bundle.Classifier().Dim() != 3 {
		t.Errorf("classifier dim = %d, want 3", bundle.Classifier().Dim())
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "vectorizer.json"), testkit.VectorizerBlob())
	mustWrite(t, filepath.Join(dir, "model.json"), testkit.ClassifierBlob())

	format, err := artifact.Convert(filepath.Join(dir, "vectorizer.json"), filepath.Join(dir, "out", "vectorizer.mp.zst"))
	if err != nil {
		t.Fatalf("Convert vectorizer: %v", err)
	}
	if format != artifact.FormatTfidf {
		t.Errorf("format = %q", format)
	}
	if _, err := artifact.Convert(filepath.Join(dir, "model.json"), filepath.Join(dir, "out", "model.mp")); err != nil {
		t.Fatalf("Convert classifier: %v", err)
	}

	src := artifact.NewFileSource(filepath.Join(dir, "out"), "vectorizer.mp.zst", "model.mp")
	if _, err := artifact.Load(context.Background(), src, logger.NewNopLogger()); err != nil {
		t.Fatalf("Load converted: %v", err)
	}
}

func TestConvertRejectsInvalidBlob(t *testing.T) {
	dir := t.TempDir()
	vec := testkit.VectorizerBlob()
	vec.Norm = "max"
	mustWrite(t, filepath.Join(dir, "vectorizer.json"), vec)

	if _, err := artifact.Convert(filepath.Join(dir, "vectorizer.json"), filepath.Join(dir, "vectorizer.mp")); err == nil {
		t.Fatal("invalid blob converted")
	}
	if _, err := os.Stat(filepath.Join(dir, "vectorizer.mp")); !os.IsNotExist(err) {
		t.Errorf("output written for invalid blob: %v", err)
	}
}

func mustWrite(t *testing.T, path string, blob interface{}) {
	t.Helper()
	if err := artifact.WriteFile(path, blob); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// fakeS3 serves objects from memory and fails the first failures calls.
type fakeS3 struct {
	objects  map[string][]byte
	failures int32
	missing  error
	calls    atomic.Int32
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if n := f.calls.Add(1); n <= f.failures {
		return nil, errors.New("connection reset")
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		if f.missing != nil {
			return nil, f.missing
		}
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func encode(t *testing.T, name string, blob interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := artifact.CodecFor(name).Encode(&buf, blob); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestS3Source(t *testing.T) {
	cfg := artifact.S3Config{Bucket: "models", Prefix: "/fakenews/v1/", BaseDelay: time.Millisecond}

	t.Run("loads with retries", func(t *testing.T) {
		client := &fakeS3{
			objects: map[string][]byte{
				"models/fakenews/v1/vectorizer.mp": encode(t, "vectorizer.mp", testkit.VectorizerBlob()),
				"models/fakenews/v1/model.mp":      encode(t, "model.mp", testkit.ClassifierBlob()),
			},
			failures: 2,
		}
		src := artifact.NewS3Source(client, cfg, "", "")

		bundle, err := artifact.Load(context.Background(), src, logger.NewNopLogger())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if bundle.Location() != "s3://models/fakenews/v1" {
			t.Errorf("location = %q", bundle.Location())
		}
		if got := client.calls.Load(); got != 4 {
			t.Errorf("GetObject calls = %d, want 4", got)
		}
	})

	missing := []struct {
		name string
		err  error
	}{
		{"no such key", &types.NoSuchKey{}},
		{"not found", &types.NotFound{}},
		{"generic 404", &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}},
		{"wrapped no such key", fmt.Errorf("operation error S3: GetObject: %w", &smithy.GenericAPIError{Code: "NoSuchKey"})},
	}
	for _, tc := range missing {
		t.Run("missing key is permanent/"+tc.name, func(t *testing.T) {
			client := &fakeS3{objects: map[string][]byte{}, missing: tc.err}
			src := artifact.NewS3Source(client, cfg, "", "")

			_, err := src.Open(context.Background(), "vectorizer.mp")
			if !errors.Is(err, artifact.ErrMissingArtifact) {
				t.Fatalf("error = %v, want ErrMissingArtifact", err)
			}
			if got := client.calls.Load(); got != 1 {
				t.Errorf("GetObject calls = %d, want 1", got)
			}
		})
	}

	t.Run("gives up after max retries", func(t *testing.T) {
		client := &fakeS3{objects: map[string][]byte{}, failures: 100}
		limited := cfg
		limited.MaxRetries = 2
		src := artifact.NewS3Source(client, limited, "", "")

		if _, err := src.Open(context.Background(), "model.mp"); err == nil {
			t.Fatal("Open succeeded")
		}
		if got := client.calls.Load(); got != 3 {
			t.Errorf("GetObject calls = %d, want 3", got)
		}
	})
}
