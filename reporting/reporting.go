package reporting

import (
	"fmt"
	"io"
)

// Kind selects one of the built-in reporters.
type Kind string

const (
	KindDefault       Kind = "default"
	KindDocumentation Kind = "documentation"
	KindTable         Kind = "table"
)

// Kinds lists the built-in reporters.
var Kinds = []Kind{KindDefault, KindDocumentation, KindTable}

// ParseKind converts a reporter name, defaulting the empty string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case "":
		return KindDefault, nil
	case KindDefault, KindDocumentation, KindTable:
		return k, nil
	}
	return "", fmt.Errorf("unknown reporter %q, expected one of %v", s, Kinds)
}

// Summary is implemented by every built-in reporter.
type Summary interface {
	Counts() Counts
	MissingLabels() []string
	Exceptions() []Exception
	AtExit()
}

// New creates a built-in reporter writing to out.
func New(kind Kind, out io.Writer, fullBacktrace bool) (Summary, error) {
	switch kind {
	case KindDefault, "":
		r := NewReporter(out)
		r.FullBacktrace = fullBacktrace
		return r, nil
	case KindDocumentation:
		r := NewDocumentationReporter(out)
		r.FullBacktrace = fullBacktrace
		return r, nil
	case KindTable:
		return NewTableReporter(out, "Specifications", true), nil
	}
	return nil, fmt.Errorf("unknown reporter %q", kind)
}
