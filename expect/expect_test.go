package expect

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/peck/types"
)

// evaluate runs body as a specification and returns it finished.
func evaluate(body types.Body) *types.Specification {
	var spec *types.Specification
	types.NewContext(nil, "", nil, nil, "Expect").Build(nil, func(c *types.Context) {
		spec = c.It("checks", body)
	})
	spec.Run(nil, nil)
	return spec
}

func TestChecks(t *testing.T) {
	errBase := errors.New("base")

	tests := []struct {
		name    string
		check   func(t *types.T)
		outcome types.Outcome
	}{
		{"equal", func(t *types.T) { That(t, 1).Equal(1) }, types.OutcomePassed},
		{"not equal", func(t *types.T) { That(t, 1).Equal(2) }, types.OutcomeFailed},
		{"equal is type strict", func(t *types.T) { That(t, int64(1)).Equal(1) }, types.OutcomeFailed},
		{"equal values", func(t *types.T) { That(t, int64(1)).EqualValues(1) }, types.OutcomePassed},
		{"nil", func(t *types.T) { That(t, nil).Nil() }, types.OutcomePassed},
		{"typed nil", func(t *types.T) { That(t, (*int)(nil)).Nil() }, types.OutcomePassed},
		{"not nil", func(t *types.T) { That(t, 3).Not().Nil() }, types.OutcomePassed},
		{"true", func(t *types.T) { That(t, true).True() }, types.OutcomePassed},
		{"false", func(t *types.T) { That(t, true).False() }, types.OutcomeFailed},
		{"empty", func(t *types.T) { That(t, []int{}).Empty() }, types.OutcomePassed},
		{"len", func(t *types.T) { That(t, "abc").Len(3) }, types.OutcomePassed},
		{"contains", func(t *types.T) { That(t, []string{"a", "b"}).Contains("b") }, types.OutcomePassed},
		{"not contains", func(t *types.T) { That(t, "peck").Not().Contains("x") }, types.OutcomePassed},
		{"match", func(t *types.T) { That(t, "spec 42").Match(`\d+$`) }, types.OutcomePassed},
		{"error is", func(t *types.T) { That(t, fmt.Errorf("wrapped: %w", errBase)).ErrorIs(errBase) }, types.OutcomePassed},
		{"satisfy", func(t *types.T) {
			That(t, 4).Satisfy("be even", func(v any) bool { return v.(int)%2 == 0 })
		}, types.OutcomePassed},
		{"panics", func(t *types.T) { That(t, func() { panic("x") }).Panics() }, types.OutcomePassed},
		{"panics needs a func", func(t *types.T) { That(t, 1).Panics() }, types.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := evaluate(tt.check)
			assert.Equal(t, tt.outcome, spec.Outcome())
			assert.Len(t, spec.Expectations(), 1)
		})
	}
}

func TestCheckStopsBodyOnFailure(t *testing.T) {
	reached := false
	spec := evaluate(func(t *types.T) {
		That(t, "a").Equal("b")
		reached = true
	})

	assert.False(t, reached)
	require.Len(t, spec.Errors(), 1)
	assert.Equal(t, `expected "a" to equal "b"`, spec.Errors()[0].Error())
	assert.True(t, types.IsAssertionError(spec.Errors()[0]))
}

func TestNotDescribesNegation(t *testing.T) {
	spec := evaluate(func(t *types.T) {
		That(t, 1).Not().Equal(1)
	})

	require.Len(t, spec.Errors(), 1)
	assert.Equal(t, "expected 1 to not equal 1", spec.Errors()[0].Error())
}

func TestRecordsEveryAttempt(t *testing.T) {
	spec := evaluate(func(t *types.T) {
		That(t, 1).Equal(1)
		That(t, 2).Equal(2)
		That(t, 3).Equal(3)
	})

	assert.Equal(t, types.OutcomePassed, spec.Outcome())
	assert.Len(t, spec.Expectations(), 3)
}
