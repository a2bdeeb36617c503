// Package types contains the shared data model of the peck execution engine:
// contexts, specifications and the evaluation handle passed into bodies.
package types

import (
	"fmt"
	"strings"
	"time"
)

// DefaultContextTimeout is the timeout assigned to every new context.
// It is stored on the context but never enforced by the scheduler.
const DefaultContextTimeout = 10 * time.Second

// Callback is a before or after hook evaluated against a specification's T.
type Callback func(t *T)

// Body is the executable part of a specification.
type Body func(t *T)

// Registrar receives every context created through the builder, including
// nested ones, in creation order.
type Registrar interface {
	Register(ctx *Context)
}

// Context is an ordered, named group of specifications sharing before and
// after callback chains. A context is immutable once its building block has
// returned.
type Context struct {
	description    []any
	before         []Callback
	after          []Callback
	specifications []*Specification
	sourceFile     string

	// Timeout is declarative only. Nothing in the execution path reads it.
	Timeout time.Duration

	registrar Registrar
	once      []func(*Context)
	sealed    bool
}

// NewContext creates a context with copies of the given callback chains.
// Callers normally go through registry.Registry.Describe instead.
func NewContext(registrar Registrar, sourceFile string, before, after []Callback, description ...any) *Context {
	return &Context{
		description: append([]any(nil), description...),
		before:      append([]Callback(nil), before...),
		after:       append([]Callback(nil), after...),
		sourceFile:  sourceFile,
		Timeout:     DefaultContextTimeout,
		registrar:   registrar,
	}
}

// Build registers the context, applies the once hooks and evaluates the
// building block. The context is sealed when fn returns.
func (c *Context) Build(once []func(*Context), fn func(c *Context)) *Context {
	c.once = once
	for _, hook := range once {
		hook(c)
	}
	if c.registrar != nil {
		c.registrar.Register(c)
	}
	if fn != nil {
		fn(c)
	}
	c.sealed = true
	return c
}

// Label is the space-joined description of the context and its ancestors.
// Parts that render as the empty string are left out, so no doubled or
// trailing spaces appear.
func (c *Context) Label() string {
	parts := make([]string, 0, len(c.description))
	for _, part := range c.description {
		s := fmt.Sprint(part)
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Description returns the description parts in declaration order.
func (c *Context) Description() []any {
	return append([]any(nil), c.description...)
}

// SourceFile is the file the context was declared in, if known.
func (c *Context) SourceFile() string {
	return c.sourceFile
}

// Specifications returns the specifications of this context in declaration order.
func (c *Context) Specifications() []*Specification {
	return append([]*Specification(nil), c.specifications...)
}

// Before appends callbacks to the before chain of specifications declared after this call.
func (c *Context) Before(callbacks ...Callback) {
	c.mustBeOpen("before")
	c.before = append(c.before, callbacks...)
}

// Setup is an alias for Before.
func (c *Context) Setup(callbacks ...Callback) { c.Before(callbacks...) }

// After appends callbacks to the after chain of specifications declared after this call.
func (c *Context) After(callbacks ...Callback) {
	c.mustBeOpen("after")
	c.after = append(c.after, callbacks...)
}

// Teardown is an alias for After.
func (c *Context) Teardown(callbacks ...Callback) { c.After(callbacks...) }

// It declares a specification. A nil body declares a pending specification.
func (c *Context) It(description string, body Body) *Specification {
	c.mustBeOpen("it")
	spec := newSpecification(c, description, body)
	c.specifications = append(c.specifications, spec)
	return spec
}

// Pending declares a specification without a body.
func (c *Context) Pending(description string) *Specification {
	return c.It(description, nil)
}

// Describe declares a nested context. It inherits the description parts and
// the current callback chains of c.
func (c *Context) Describe(description any, fn func(c *Context)) *Context {
	parts := append(c.Description(), description)
	child := NewContext(c.registrar, c.sourceFile, c.before, c.after, parts...)
	return child.Build(c.once, fn)
}

func (c *Context) mustBeOpen(op string) {
	if c.sealed {
		panic(fmt.Sprintf("peck: %s called on sealed context %q", op, c.Label()))
	}
}
