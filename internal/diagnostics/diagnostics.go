// Package diagnostics implements the structured message sink (component E)
// shared by the scanner, parsers, scope decorator, and semantic checker.
package diagnostics

import (
	"fmt"

	"github.com/funvibe/funxy/internal/token"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Code is one of the numbered diagnostic codes reserved by the
// specification, or one of the shared core taxonomy names.
type Code string

// Reserved NL5xx codes (see specification section 4.E).
const (
	ErrDivisionByZero       Code = "NL501"
	ErrUnknownCharName      Code = "NL502"
	ErrUnreadable           Code = "NL503"
	ErrUnknownNotation      Code = "NL504"
	ErrInvalidHexChar       Code = "NL505"
	ErrInvalidHexEscape     Code = "NL506"
	ErrMultipleRadixFlags   Code = "NL507"
	ErrMultipleExactness    Code = "NL508"
	ErrUnexpectedDefine     Code = "NL554"
	ErrMalformedDottedList  Code = "NL556"
	ErrExpected             Code = "NL557"
	ErrUnexpected           Code = "NL558"
	ErrSyntax               Code = "NL559"
)

// Shared core codes, not tied to a specific numbered slot.
const (
	ErrUnassignedVariableUsed    Code = "unassigned-variable-used"
	ErrVariableRedefined         Code = "variable-redefined"
	ErrParameterRedefined        Code = "parameter-redefined"
	ErrUnexpectedEOF             Code = "unexpected-eof"
	ErrUnexpectedToken           Code = "unexpected-token"
	ErrExpectedSyntax            Code = "expected-syntax"
	ErrUnterminatedString        Code = "unterminated-string-literal"
	ErrUnterminatedComment       Code = "unterminated-comment"
	ErrExpectedNumber            Code = "expected-number"
	ErrExpectedHexDigit          Code = "expected-hex-digit"
	ErrUnknownEscapeCharacter    Code = "unknown-escape-character"
	ErrExpectedValidTypeName     Code = "expected-valid-type-name"
	ErrReadOnlyAssignment        Code = "read-only-assignment"
	ErrWrongArity                Code = "wrong-arity"
)

// Diagnostic is one recorded message with an optional source span.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Source   string
	Start    token.Position
	End      token.Position
}

func (d *Diagnostic) Error() string {
	if d.Source != "" {
		return fmt.Sprintf("%s:%d:%d: %s: [%s] %s", d.Source, d.Start.Line, d.Start.Column, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%d:%d: %s: [%s] %s", d.Start.Line, d.Start.Column, d.Severity, d.Code, d.Message)
}

// New builds an error-severity diagnostic anchored at a token.
func New(code Code, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Source:   tok.Start.Source,
		Start:    tok.Start,
		End:      tok.End,
	}
}

// NewAt builds an error-severity diagnostic anchored at an explicit span.
func NewAt(code Code, start, end token.Position, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Source:   start.Source,
		Start:    start,
		End:      end,
	}
}

// Warning builds a warning-severity diagnostic anchored at a token.
func Warning(code Code, tok token.Token, format string, args ...interface{}) *Diagnostic {
	d := New(code, tok, format, args...)
	d.Severity = SeverityWarning
	return d
}

// Sink accumulates diagnostics for one compilation, in source order.
type Sink struct {
	diagnostics []*Diagnostic
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add records a diagnostic.
func (s *Sink) Add(d *Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// All returns every recorded diagnostic, in the order added (source order,
// or as close to it as error recovery allows).
func (s *Sink) All() []*Diagnostic {
	return s.diagnostics
}

// HasErrors reports whether any error-severity diagnostic was recorded.
// The specification requires later phases to be skipped once this is true.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Failed is an alias for HasErrors matching the terminology of section 7:
// a compilation is "failed" iff the sink holds any error-severity entry.
func (s *Sink) Failed() bool { return s.HasErrors() }
