package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/baditaflorin/go_fakenews/internal/batch"
	"github.com/baditaflorin/go_fakenews/internal/core/domain"
)

func TestLines(t *testing.T) {
	tests := []struct {
		name   string
		result domain.Result
		want   []string
	}{
		{
			name:   "high real",
			result: domain.NewResult(domain.Real, domain.Distribution{0.08, 0.92}),
			want: []string{
				"Prediction: REAL NEWS",
				"Confidence: 92.0% (HIGH)",
				"Fake News: 8.0%",
				"Real News: 92.0%",
			},
		},
		{
			name:   "medium fake rounds for display only",
			result: domain.NewResult(domain.Fake, domain.Distribution{0.7996, 0.2004}),
			want: []string{
				"Prediction: FAKE NEWS",
				"Confidence: 80.0% (MEDIUM)",
				"Fake News: 80.0%",
				"Real News: 20.0%",
			},
		},
		{
			name:   "low",
			result: domain.NewResult(domain.Fake, domain.Distribution{0.55, 0.45}),
			want: []string{
				"Prediction: FAKE NEWS",
				"Confidence: 55.0% (LOW)",
				"Fake News: 55.0%",
				"Real News: 45.0%",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Lines(tc.result)
			if strings.Join(got, "\n") != strings.Join(tc.want, "\n") {
				t.Errorf("Lines =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tc.want, "\n"))
			}
		})
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"  many   spaces\nand lines ", 0, "many spaces and lines"},
		{"abcdefghijkl", 8, "abcde..."},
		{"abcdef", 2, "ab"},
	}
	for _, tc := range tests {
		if got := Preview(tc.text, tc.width); got != tc.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tc.text, tc.width, got, tc.want)
		}
	}
}

func TestTextWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	result := domain.NewResult(domain.Real, domain.Distribution{0.1, 0.9})
	if err := Text(&buf, "An article about rovers.", result, Options{}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"Article: An article about rovers.", "Prediction: REAL NEWS", "Confidence: 90.0% (HIGH)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes in plain output:\n%q", out)
	}
}

func TestNewItemDTO(t *testing.T) {
	ok := NewItemDTO(batch.Item{ID: "a", Result: domain.NewResult(domain.Fake, domain.Distribution{0.66666, 0.33334})})
	if ok.Error != nil || ok.Result == nil {
		t.Fatalf("dto = %+v", ok)
	}
	if ok.Result.Label != "FAKE" || ok.Result.Confidence != 66.7 || ok.Result.Tier != "MEDIUM" {
		t.Errorf("result = %+v", *ok.Result)
	}
	if ok.Result.ID != "" {
		t.Errorf("nested result repeats the id %q", ok.Result.ID)
	}

	failed := NewItemDTO(batch.Item{ID: "b", Err: domain.NewEmptyInputError("classify")})
	if failed.Result != nil || failed.Error == nil || failed.Error.Kind != "empty_input" {
		t.Errorf("dto = %+v", failed)
	}

	foreign := NewItemDTO(batch.Item{ID: "c", Err: errors.New("boom")})
	if foreign.Error == nil || foreign.Error.Kind != "inference_failed" {
		t.Errorf("dto = %+v", foreign)
	}
}

func TestJSONLine(t *testing.T) {
	var buf bytes.Buffer
	dto := NewResultDTO("x", domain.NewResult(domain.Real, domain.Distribution{0.25, 0.75}))
	if err := JSONLine(&buf, dto); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("JSONLine wrote %q", buf.String())
	}

	var back map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if back["label"] != "REAL" || back["tier"] != "MEDIUM" || back["confidence"] != 75.0 {
		t.Errorf("decoded = %v", back)
	}
}

func TestBatchTable(t *testing.T) {
	items := []batch.Item{
		{ID: "first", Result: domain.NewResult(domain.Real, domain.Distribution{0.1, 0.9})},
		{ID: "second", Err: domain.NewEmptyInputError("classify")},
	}

	var buf bytes.Buffer
	if err := BatchTable(&buf, items, Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"first", "REAL", "90.0%", "HIGH", "second", "ERROR", "2 articles: 1 real, 0 fake, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
