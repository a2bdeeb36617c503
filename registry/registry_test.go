package registry

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/peck/selection"
	"github.com/ethereum-optimism/infra/peck/types"
)

func newTestRegistry(sel selection.Selector) *Registry {
	return NewRegistry(Config{
		Log:      log.NewLogger(log.DiscardHandler()),
		Selector: sel,
	})
}

func descriptions(specs []*types.Specification) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Label())
	}
	return out
}

func TestRegistry_FlattensInDeclarationOrder(t *testing.T) {
	reg := newTestRegistry(nil)

	reg.Describe("Author", func(c *types.Context) {
		c.It("reads", nil)
		c.Describe("with books", func(c *types.Context) {
			c.It("lends", nil)
		})
		c.It("writes", nil)
	})
	reg.Describe("Book", func(c *types.Context) {
		c.It("has pages", nil)
	})

	require.Len(t, reg.Contexts(), 3)
	assert.Equal(t, []string{
		"Author reads",
		"Author writes",
		"Author with books lends",
		"Book has pages",
	}, descriptions(reg.Specifications()))
}

func TestRegistry_CapturesSourceFile(t *testing.T) {
	reg := newTestRegistry(nil)
	ctx := reg.Describe("Source", nil)
	assert.True(t, strings.HasSuffix(ctx.SourceFile(), "registry_test.go"), ctx.SourceFile())
}

func TestRegistry_Selection(t *testing.T) {
	sel, err := selection.NewRegexp("^Author", "^r")
	require.NoError(t, err)
	reg := newTestRegistry(sel)

	reg.Describe("Author", func(c *types.Context) {
		c.It("reads", nil)
		c.It("writes", nil)
	})
	reg.Describe("Book", func(c *types.Context) {
		c.It("rots", nil)
	})

	assert.Equal(t, []string{"Author reads"}, descriptions(reg.Specifications()))

	reg.SetSelector(nil)
	assert.Len(t, reg.Specifications(), 3)
}

func TestRegistry_OnceHooks(t *testing.T) {
	reg := newTestRegistry(nil)
	var labels []string
	reg.Once(func(c *types.Context) { labels = append(labels, c.Label()) })

	reg.Describe("Outer", func(c *types.Context) {
		c.Describe("inner", nil)
	})

	assert.Equal(t, []string{"Outer", "Outer inner"}, labels)
}

func TestRegistry_Independent(t *testing.T) {
	a := newTestRegistry(nil)
	b := newTestRegistry(nil)

	a.Describe("A", func(c *types.Context) { c.It("one", nil) })

	assert.Len(t, a.Specifications(), 1)
	assert.Empty(t, b.Specifications())
}
