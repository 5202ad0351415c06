package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	fakenews "github.com/baditaflorin/go_fakenews"
	"github.com/baditaflorin/go_fakenews/internal/adapters/logger"
	"github.com/baditaflorin/go_fakenews/internal/batch"
	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/baditaflorin/go_fakenews/internal/render"
	"github.com/baditaflorin/go_fakenews/internal/samples"
	"github.com/baditaflorin/go_fakenews/internal/testkit"
	"github.com/valyala/fasthttp"
)

// failingDetector fails every classification with an inference error.
type failingDetector struct{}

func (failingDetector) Evaluate(context.Context, string) fakenews.Outcome {
	return fakenews.OutcomeOf(domain.Result{}, domain.NewInferenceError("classify", errors.New("bad vector")))
}

func (failingDetector) ClassifyBatch(context.Context, []ports.Article) ([]batch.Item, error) {
	return nil, context.DeadlineExceeded
}

func (failingDetector) LoadErr() error      { return nil }
func (failingDetector) Fingerprint() string { return "broken" }

func newDetector(t *testing.T, opts ...fakenews.Option) *fakenews.Detector {
	t.Helper()
	opts = append([]fakenews.Option{fakenews.WithPortLogger(logger.NewNopLogger())}, opts...)
	d, err := fakenews.New(context.Background(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func newServer(detector Detector) *Server {
	return New(detector, logger.NewNopLogger(), Config{MaxBatchArticles: 3})
}

func do(s *Server, method, path, body string, headers ...string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	for i := 0; i+1 < len(headers); i += 2 {
		ctx.Request.Header.Set(headers[i], headers[i+1])
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	s.Handler(&ctx)
	return &ctx
}

func TestClassifyEndpoint(t *testing.T) {
	s := newServer(newDetector(t, fakenews.WithArtifacts(testkit.Bundle())))

	tests := []struct {
		name   string
		method string
		body   string
		status int
		label  string
		kind   string
	}{
		{"real", "POST", `{"text":` + quote(samples.RealArticle) + `}`, 200, "REAL", ""},
		{"fake", "POST", `{"text":` + quote(samples.FakeArticle) + `}`, 200, "FAKE", ""},
		{"empty text", "POST", `{"text":"   "}`, 422, "", "empty_input"},
		{"missing text", "POST", `{}`, 422, "", "empty_input"},
		{"bad json", "POST", `{"text":`, 400, "", ""},
		{"wrong method", "GET", "", 405, "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := do(s, tc.method, "/classify", tc.body)
			if got := ctx.Response.StatusCode(); got != tc.status {
				t.Fatalf("status = %d, want %d: %s", got, tc.status, ctx.Response.Body())
			}

			if tc.status == 200 {
				var dto render.ResultDTO
				if err := json.Unmarshal(ctx.Response.Body(), &dto); err != nil {
					t.Fatal(err)
				}
				if dto.Label != tc.label {
					t.Errorf("label = %q, want %q", dto.Label, tc.label)
				}
				if sum := dto.Probabilities.Fake + dto.Probabilities.Real; sum < 99.8 || sum > 100.2 {
					t.Errorf("probabilities sum to %v", sum)
				}
				return
			}

			var resp ErrorResponse
			if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Kind != tc.kind {
				t.Errorf("kind = %q, want %q", resp.Kind, tc.kind)
			}
			if resp.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestClassifyUnavailable(t *testing.T) {
	s := newServer(newDetector(t))

	ctx := do(s, "POST", "/classify", `{"text":"anything"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("status = %d", ctx.Response.StatusCode())
	}

	ctx = do(s, "GET", "/ready", "")
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("/ready status = %d", ctx.Response.StatusCode())
	}

	ctx = do(s, "GET", "/health", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Errorf("/health status = %d", ctx.Response.StatusCode())
	}

	ctx = do(s, "POST", "/classify/batch", `{"articles":[{"text":"a"}]}`)
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Errorf("batch status = %d", ctx.Response.StatusCode())
	}
}

func TestClassifyInferenceFailure(t *testing.T) {
	s := newServer(failingDetector{})

	ctx := do(s, "POST", "/classify", `{"text":"anything"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusInternalServerError {
		t.Errorf("status = %d", ctx.Response.StatusCode())
	}

	ctx = do(s, "POST", "/classify/batch", `{"articles":[{"text":"a"}]}`)
	if ctx.Response.StatusCode() != fasthttp.StatusGatewayTimeout {
		t.Errorf("batch status = %d", ctx.Response.StatusCode())
	}
}

func TestReady(t *testing.T) {
	s := newServer(newDetector(t, fakenews.WithArtifacts(testkit.Bundle())))

	ctx := do(s, "GET", "/ready", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	var body map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatal(err)
	}
	if body["fingerprint"] != testkit.Fingerprint {
		t.Errorf("fingerprint = %q", body["fingerprint"])
	}
}

func TestBatchEndpoint(t *testing.T) {
	s := newServer(newDetector(t, fakenews.WithArtifacts(testkit.Bundle())))

	body := `{"articles":[{"id":"one","text":` + quote(samples.RealArticle) + `},{"text":""},{"text":` + quote(samples.FakeArticle) + `}]}`
	ctx := do(s, "POST", "/classify/batch", body)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}

	var resp BatchResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("items = %d", len(resp.Items))
	}
	if resp.Items[0].ID != "one" || resp.Items[1].ID != "item-2" || resp.Items[2].ID != "item-3" {
		t.Errorf("ids = %q %q %q", resp.Items[0].ID, resp.Items[1].ID, resp.Items[2].ID)
	}
	if resp.Items[0].Result == nil || resp.Items[0].Result.Label != "REAL" {
		t.Errorf("item 0 = %+v", resp.Items[0])
	}
	if resp.Items[1].Error == nil || resp.Items[1].Error.Kind != "empty_input" {
		t.Errorf("item 1 = %+v", resp.Items[1])
	}
	want := batch.Summary{Total: 3, Real: 1, Fake: 1, Failed: 1}
	if resp.Summary != want {
		t.Errorf("summary = %+v, want %+v", resp.Summary, want)
	}
}

func TestBatchLimits(t *testing.T) {
	s := newServer(newDetector(t, fakenews.WithArtifacts(testkit.Bundle())))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"no articles", `{"articles":[]}`, 400},
		{"too many", `{"articles":[{"text":"a"},{"text":"b"},{"text":"c"},{"text":"d"}]}`, 413},
		{"bad json", `[`, 400},
	}
	for _, tc := range tests {
		if got := do(s, "POST", "/classify/batch", tc.body).Response.StatusCode(); got != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.name, got, tc.status)
		}
	}
}

func TestRequestID(t *testing.T) {
	s := newServer(failingDetector{})

	ctx := do(s, "GET", "/health", "", RequestIDHeader, "abc-123")
	if got := string(ctx.Response.Header.Peek(RequestIDHeader)); got != "abc-123" {
		t.Errorf("echoed request id = %q", got)
	}

	ctx = do(s, "GET", "/health", "")
	if got := string(ctx.Response.Header.Peek(RequestIDHeader)); len(got) != 36 {
		t.Errorf("generated request id = %q", got)
	}
}

func TestSamplesAndNotFound(t *testing.T) {
	s := newServer(failingDetector{})

	ctx := do(s, "GET", "/samples", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	var got []samples.Sample
	if err := json.Unmarshal(ctx.Response.Body(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(samples.All()) {
		t.Errorf("samples = %d", len(got))
	}

	if do(s, "POST", "/samples", "").Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Error("POST /samples allowed")
	}
	if do(s, "GET", "/nope", "").Response.StatusCode() != fasthttp.StatusNotFound {
		t.Error("unknown path not 404")
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[fakenews.OutcomeKind]int{
		fakenews.OutcomeOK:              200,
		fakenews.OutcomeEmptyInput:      422,
		fakenews.OutcomeUnavailable:     503,
		fakenews.OutcomeInferenceFailed: 500,
	}
	for kind, want := range tests {
		if got := StatusFor(kind); got != want {
			t.Errorf("StatusFor(%v) = %d, want %d", kind, got, want)
		}
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
