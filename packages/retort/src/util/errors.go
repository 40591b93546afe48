package util

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindLex indicates malformed token-level input.
	KindLex ErrorKind = iota
	// KindParsing indicates a structural violation in the markup.
	KindParsing
	// KindReference indicates a component name with no import entry.
	KindReference
	// KindResolve indicates the component resolver failed.
	KindResolve
	// KindEvaluation indicates an embedded expression failed to evaluate.
	KindEvaluation
	// KindType indicates a value of an unsupported type.
	KindType
)

func (k ErrorKind) String() string {
	switch k {
	case KindLex:
		return "Lex error"
	case KindParsing:
		return "Parsing error"
	case KindReference:
		return "Reference error"
	case KindResolve:
		return "Resolve error"
	case KindEvaluation:
		return "Evaluation error"
	case KindType:
		return "Type error"
	default:
		return "Unknown error"
	}
}

// ParseError is the error returned by every stage of the pipeline.
type ParseError struct {
	Kind ErrorKind
	// Span is where the error was detected, nil when no source is involved.
	Span *ParseSourceSpan
	Msg  string
	// Cause is the underlying error, if any.
	Cause error
}

// NewParseError creates a new ParseError
func NewParseError(kind ErrorKind, span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Kind: kind,
		Span: span,
		Msg:  msg,
	}
}

// Errorf creates a ParseError without a span.
func Errorf(kind ErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a ParseError with the given cause.
func Wrap(kind ErrorKind, span *ParseSourceSpan, cause error, msg string) *ParseError {
	return &ParseError{
		Kind:  kind,
		Span:  span,
		Msg:   msg,
		Cause: cause,
	}
}

// Error implements the error interface
func (p *ParseError) Error() string {
	msg := p.Msg
	if p.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, p.Cause)
	}
	if p.Span == nil || p.Span.Start == nil {
		return fmt.Sprintf("%s: %s", p.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", p.Kind, contextual(p.Span, msg), p.Span.Start)
}

func (p *ParseError) Unwrap() error {
	return p.Cause
}

// IsKind reports whether any ParseError in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Kind == kind {
			return true
		}
		err = pe.Cause
	}
	return false
}
