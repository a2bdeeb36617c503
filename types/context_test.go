package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRegistrar struct {
	contexts []*Context
}

func (r *recordingRegistrar) Register(ctx *Context) {
	r.contexts = append(r.contexts, ctx)
}

func TestContext_Label(t *testing.T) {
	tests := []struct {
		name        string
		description []any
		expected    string
	}{
		{name: "single part", description: []any{"Author"}, expected: "Author"},
		{name: "multiple parts", description: []any{"Author", "with books"}, expected: "Author with books"},
		{name: "non-string parts", description: []any{"Retry", 3, "times"}, expected: "Retry 3 times"},
		{name: "empty parts are skipped", description: []any{"Author", "", "name"}, expected: "Author name"},
		{name: "no parts", description: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewContext(nil, "", nil, nil, tt.description...)
			assert.Equal(t, tt.expected, ctx.Label())
		})
	}
}

func TestContext_DescribeInheritsAncestors(t *testing.T) {
	registrar := &recordingRegistrar{}
	var child *Context
	var spec *Specification

	NewContext(registrar, "author_spec.go", nil, nil, "Author").Build(nil, func(c *Context) {
		c.Before(func(t *T) { t.Set("parent", true) })
		child = c.Describe("with books", func(c *Context) {
			spec = c.It("reads", func(t *T) {
				t.Expect("parent before ran")
				if t.Get("parent") != true {
					t.Fail("parent before did not run")
				}
			})
		})
	})

	require.Len(t, registrar.contexts, 2)
	assert.Equal(t, "Author", registrar.contexts[0].Label(), "parent registers before its children")
	assert.Same(t, child, registrar.contexts[1])
	assert.Equal(t, "Author with books", child.Label())
	assert.Equal(t, "author_spec.go", child.SourceFile())
	assert.Equal(t, "Author with books reads", spec.Label())

	spec.Run(&recordingDelegate{}, nil)
	assert.True(t, spec.Passed())
}

func TestContext_OnceHooksApplyToNestedContexts(t *testing.T) {
	seen := []string{}
	once := []func(*Context){
		func(c *Context) { seen = append(seen, c.Label()) },
	}

	NewContext(nil, "", nil, nil, "Outer").Build(once, func(c *Context) {
		c.Describe("inner", nil)
	})

	assert.Equal(t, []string{"Outer", "Outer inner"}, seen)
}

func TestContext_TimeoutIsStoredOnly(t *testing.T) {
	ctx := NewContext(nil, "", nil, nil, "Slow")
	assert.Equal(t, DefaultContextTimeout, ctx.Timeout)
}

func TestContext_SealedAfterBuild(t *testing.T) {
	ctx := NewContext(nil, "", nil, nil, "Sealed").Build(nil, func(c *Context) {
		c.It("one", nil)
	})

	assert.Panics(t, func() { ctx.It("two", nil) })
	assert.Panics(t, func() { ctx.Before(func(t *T) {}) })
	assert.Len(t, ctx.Specifications(), 1)
}

func TestContext_PendingHasNoBody(t *testing.T) {
	var spec *Specification
	NewContext(nil, "", nil, nil, "Pending").Build(nil, func(c *Context) {
		spec = c.Pending("is not implemented")
	})
	assert.False(t, spec.HasBody())
}
