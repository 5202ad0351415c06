package fakenews

import (
	"github.com/baditaflorin/go_fakenews/internal/core/domain"
)

// OutcomeKind discriminates the result of one classification request.
type OutcomeKind int

const (
	// OutcomeOK carries a result.
	OutcomeOK OutcomeKind = iota
	// OutcomeEmptyInput means the article was blank; nothing was run.
	OutcomeEmptyInput
	// OutcomeUnavailable means the model artifacts are not loaded.
	OutcomeUnavailable
	// OutcomeInferenceFailed means the model failed on this article.
	OutcomeInferenceFailed
)

// String returns the name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeEmptyInput:
		return "empty_input"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeInferenceFailed:
		return "inference_failed"
	default:
		return "unknown"
	}
}

// Outcome is either a Result (Kind == OutcomeOK) or a failure kind with its
// error.
type Outcome struct {
	Kind   OutcomeKind
	Result domain.Result
	Err    error
}

// OK reports whether the outcome carries a result.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeOK
}

// Message is the user-facing text for a failed outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeOK:
		return ""
	case OutcomeEmptyInput:
		return "Please enter some text to analyze."
	case OutcomeUnavailable:
		return "The model is not available right now."
	default:
		if o.Err != nil {
			return "Error making prediction: " + o.Err.Error()
		}
		return "Error making prediction"
	}
}

// OutcomeOf maps a classification result and error to an Outcome. Errors
// without a domain kind count as inference failures.
func OutcomeOf(result domain.Result, err error) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeOK, Result: result}
	}

	switch domain.KindOf(err) {
	case domain.KindEmptyInput:
		return Outcome{Kind: OutcomeEmptyInput, Err: err}
	case domain.KindArtifactLoad:
		return Outcome{Kind: OutcomeUnavailable, Err: err}
	default:
		return Outcome{Kind: OutcomeInferenceFailed, Err: err}
	}
}
