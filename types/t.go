package types

import "fmt"

// T is the evaluation handle passed to callbacks and bodies. One T is shared
// by the before chain, the body and the after chain of a single run.
//
// T satisfies testify's assert.TestingT: a failing testify assertion is
// recorded as a non-fatal error. Successful testify assertions are not seen,
// so bodies that only use testify should also record through expect.
type T struct {
	spec   *Specification
	values map[string]any
}

func newT(spec *Specification) *T {
	return &T{spec: spec, values: make(map[string]any)}
}

// Specification returns the specification being run.
func (t *T) Specification() *Specification { return t.spec }

// Expect records one assertion attempt.
func (t *T) Expect(description string) {
	t.spec.expectations = append(t.spec.expectations, Expectation{Description: description})
}

// Fail raises the recognized assertion failure for an attempt already recorded.
func (t *T) Fail(description string) {
	panic(&AssertionError{Description: description})
}

// Flunk records an attempt and fails it immediately.
func (t *T) Flunk(format string, args ...any) {
	description := fmt.Sprintf(format, args...)
	t.Expect(description)
	t.Fail(description)
}

// Errorf records a failed attempt without stopping the body.
func (t *T) Errorf(format string, args ...any) {
	description := fmt.Sprintf(format, args...)
	t.Expect(description)
	t.spec.errors = append(t.spec.errors, &AssertionError{Description: description})
}

// Set stores a value visible to later callbacks and the body of this run.
func (t *T) Set(key string, value any) {
	t.values[key] = value
}

// Get returns a value stored with Set.
func (t *T) Get(key string) any {
	return t.values[key]
}

// Lookup returns a value stored with Set and whether it was present.
func (t *T) Lookup(key string) (any, bool) {
	v, ok := t.values[key]
	return v, ok
}
