// Package expect is the assertion library used inside specification bodies.
//
//	c.It("adds", func(t *types.T) {
//		expect.That(t, 1+1).Equal(2)
//		expect.That(t, err).Not().Nil()
//	})
//
// Every check records one expectation on the running specification. A failed
// check raises types.AssertionError, which ends the body and marks the
// specification as failed.
package expect

import (
	"errors"
	"fmt"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum-optimism/infra/peck/types"
)

// silent lets testify's assertion helpers be used as predicates.
type silent struct{}

func (silent) Errorf(string, ...any) {}

// Should is a pending check on one value.
type Should struct {
	t      *types.T
	actual any
	negate bool
}

// That starts a check on actual.
func That(t *types.T, actual any) *Should {
	return &Should{t: t, actual: actual}
}

// Not inverts the next check.
func (s *Should) Not() *Should {
	return &Should{t: s.t, actual: s.actual, negate: !s.negate}
}

func (s *Should) check(ok bool, format string, args ...any) {
	description := fmt.Sprintf(format, args...)
	if s.negate {
		ok = !ok
		description = "not " + description
	}
	description = fmt.Sprintf("expected %s to %s", show(s.actual), description)
	s.t.Expect(description)
	if !ok {
		s.t.Fail(description)
	}
}

func show(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

// Equal compares with testify's ObjectsAreEqual.
func (s *Should) Equal(expected any) {
	s.check(assert.ObjectsAreEqual(expected, s.actual), "equal %s", show(expected))
}

// EqualValues compares after converting to the same type.
func (s *Should) EqualValues(expected any) {
	s.check(assert.ObjectsAreEqualValues(expected, s.actual), "equal value %s", show(expected))
}

func (s *Should) Nil() {
	s.check(assert.Nil(silent{}, s.actual), "be nil")
}

func (s *Should) True() {
	s.check(s.actual == true, "be true")
}

func (s *Should) False() {
	s.check(s.actual == false, "be false")
}

func (s *Should) Empty() {
	s.check(assert.Empty(silent{}, s.actual), "be empty")
}

func (s *Should) Len(n int) {
	s.check(assert.Len(silent{}, s.actual, n), "have length %d", n)
}

// Contains checks strings, slices, arrays and map keys.
func (s *Should) Contains(element any) {
	s.check(assert.Contains(silent{}, s.actual, element), "contain %s", show(element))
}

// Match checks the value's string form against a regular expression.
func (s *Should) Match(pattern string) {
	s.check(assert.Regexp(silent{}, pattern, s.actual), "match /%s/", pattern)
}

// ErrorIs checks the value is an error wrapping target.
func (s *Should) ErrorIs(target error) {
	err, _ := s.actual.(error)
	s.check(errors.Is(err, target), "wrap %v", target)
}

// Satisfy checks an arbitrary predicate, described by description.
func (s *Should) Satisfy(description string, fn func(actual any) bool) {
	s.check(fn(s.actual), "%s", description)
}

// Panics checks that the value is a func() that panics when called.
func (s *Should) Panics() {
	fn, ok := s.actual.(func())
	s.check(ok && assert.Panics(silent{}, fn), "panic")
}
