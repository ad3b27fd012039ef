package models

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which pipeline stage failed.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrExtraction
	ErrEmbedding
	ErrStore
	ErrGeneration
)

func (k ErrorKind) String() string {
	switch k {
	case ErrExtraction:
		return "extraction"
	case ErrEmbedding:
		return "embedding"
	case ErrStore:
		return "store"
	case ErrGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// PipelineError wraps a stage failure with its kind so callers can
// discriminate without string matching.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// WrapError tags err with kind; nil passes through.
func WrapError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: kind, Err: err}
}

// KindOf reports the stage an error came from, or ErrUnknown.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrUnknown
}
