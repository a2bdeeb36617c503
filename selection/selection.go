// Package selection decides which contexts and specifications take part in a run.
package selection

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Selector is consulted once per context and once per specification while
// the registry flattens the run.
type Selector interface {
	SelectContext(label string) bool
	SelectSpecification(contextLabel, description string) bool
}

// Regexp selects contexts by label and specifications by description.
// A nil pattern matches everything.
type Regexp struct {
	Context       *regexp.Regexp
	Specification *regexp.Regexp
}

// MatchAll selects every context and specification.
func MatchAll() *Regexp {
	return &Regexp{}
}

// NewRegexp compiles the two patterns. Empty patterns match everything.
func NewRegexp(contextPattern, specificationPattern string) (*Regexp, error) {
	r := &Regexp{}
	if contextPattern != "" {
		re, err := regexp.Compile(contextPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid context selection %q: %w", contextPattern, err)
		}
		r.Context = re
	}
	if specificationPattern != "" {
		re, err := regexp.Compile(specificationPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid specification selection %q: %w", specificationPattern, err)
		}
		r.Specification = re
	}
	return r, nil
}

func (r *Regexp) SelectContext(label string) bool {
	return r.Context == nil || r.Context.MatchString(label)
}

func (r *Regexp) SelectSpecification(_, description string) bool {
	return r.Specification == nil || r.Specification.MatchString(description)
}

// Env is the environment visible to filter expressions.
type Env struct {
	Context     string `expr:"context"`
	Description string `expr:"description"`
	Label       string `expr:"label"`
}

// Expr selects specifications with a boolean expr-lang expression such as
//
//	context startsWith "Author" && !(description contains "slow")
type Expr struct {
	source  string
	program *vm.Program
}

// NewExpr compiles a filter expression. An empty expression selects everything.
func NewExpr(source string) (*Expr, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Expr{}, nil
	}
	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Expr{source: source, program: program}, nil
}

func (e *Expr) String() string {
	return e.source
}

// SelectContext always selects; expressions are evaluated per specification.
func (e *Expr) SelectContext(string) bool {
	return true
}

// SelectSpecification evaluates the expression. Evaluation errors deselect.
func (e *Expr) SelectSpecification(contextLabel, description string) bool {
	if e.program == nil {
		return true
	}
	env := Env{
		Context:     contextLabel,
		Description: description,
		Label:       strings.TrimSpace(contextLabel + " " + description),
	}
	out, err := expr.Run(e.program, env)
	if err != nil {
		return false
	}
	selected, ok := out.(bool)
	return ok && selected
}

type all []Selector

// All selects what every given selector selects.
func All(selectors ...Selector) Selector {
	return all(selectors)
}

func (a all) SelectContext(label string) bool {
	for _, s := range a {
		if !s.SelectContext(label) {
			return false
		}
	}
	return true
}

func (a all) SelectSpecification(contextLabel, description string) bool {
	for _, s := range a {
		if !s.SelectSpecification(contextLabel, description) {
			return false
		}
	}
	return true
}
