package domain

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes failures the caller must handle differently.
type ErrorKind int

const (
	// KindArtifactLoad means the model artifacts are missing or corrupt.
	KindArtifactLoad ErrorKind = iota + 1
	// KindEmptyInput means the article text was blank.
	KindEmptyInput
	// KindInference means feature transformation or prediction failed.
	KindInference
)

// String returns a stable identifier for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindArtifactLoad:
		return "artifact_load"
	case KindEmptyInput:
		return "empty_input"
	case KindInference:
		return "inference"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by errors.Is against an *Error of the same kind.
var (
	ErrArtifactLoad = errors.New("model artifacts unavailable")
	ErrEmptyInput   = errors.New("article text is empty")
	ErrInference    = errors.New("inference failed")
)

// Error is the typed error returned by the pipeline.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	base := e.sentinel().Error()
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, base, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", base, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, base)
	default:
		return base
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindArtifactLoad:
		return ErrArtifactLoad
	case KindEmptyInput:
		return ErrEmptyInput
	case KindInference:
		return ErrInference
	default:
		return errors.New("unknown error")
	}
}

// NewEmptyInputError reports blank input.
func NewEmptyInputError(op string) error {
	return &Error{Kind: KindEmptyInput, Op: op}
}

// NewInferenceError wraps a failure raised while transforming or predicting.
func NewInferenceError(op string, cause error) error {
	return &Error{Kind: KindInference, Op: op, Err: cause}
}

// NewArtifactLoadError wraps a failure raised while loading artifacts.
func NewArtifactLoadError(op string, cause error) error {
	return &Error{Kind: KindArtifactLoad, Op: op, Err: cause}
}

// KindOf returns the kind of a pipeline error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// DistributionError reports a probability outside [0,1] (Index >= 0) or a
// distribution whose sum is not 1 (Index == -1).
type DistributionError struct {
	Index int
	Value float64
}

func (e *DistributionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("probabilities sum to %g, want 1", e.Value)
	}
	return fmt.Sprintf("probability at index %d is %g, want a value in [0,1]", e.Index, e.Value)
}
