package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum-optimism/infra/peck"
	"github.com/ethereum-optimism/infra/peck/expect"
	"github.com/ethereum-optimism/infra/peck/types"
)

// ConcurrencyDemoSize is the number of always passing specifications in the
// concurrency demo.
const ConcurrencyDemoSize = 200

var errDivideByZero = errors.New("divide by zero")

type calculator struct {
	memory []int
}

func (c *calculator) push(v int) { c.memory = append(c.memory, v) }

func (c *calculator) add() int {
	sum := 0
	for _, v := range c.memory {
		sum += v
	}
	return sum
}

func (c *calculator) divide() (int, error) {
	if len(c.memory) != 2 {
		return 0, fmt.Errorf("need two operands, have %d", len(c.memory))
	}
	if c.memory[1] == 0 {
		return 0, errDivideByZero
	}
	return c.memory[0] / c.memory[1], nil
}

// registerSuites registers the example suites shipped with the binary.
func registerSuites(p *peck.Peck) {
	p.Describe("Calculator", func(c *types.Context) {
		c.Before(func(t *types.T) {
			t.Set("calculator", &calculator{})
		})
		c.After(func(t *types.T) {
			t.Get("calculator").(*calculator).memory = nil
		})

		c.It("adds the numbers in memory", func(t *types.T) {
			calc := t.Get("calculator").(*calculator)
			calc.push(2)
			calc.push(40)
			expect.That(t, calc.add()).Equal(42)
		})

		c.It("starts with an empty memory", func(t *types.T) {
			expect.That(t, t.Get("calculator").(*calculator).memory).Empty()
		})

		c.Describe("dividing", func(c *types.Context) {
			c.It("divides the first number by the second", func(t *types.T) {
				calc := t.Get("calculator").(*calculator)
				calc.push(84)
				calc.push(2)
				got, err := calc.divide()
				expect.That(t, err).Nil()
				expect.That(t, got).Equal(42)
			})

			c.It("refuses to divide by zero", func(t *types.T) {
				calc := t.Get("calculator").(*calculator)
				calc.push(1)
				calc.push(0)
				_, err := calc.divide()
				expect.That(t, err).ErrorIs(errDivideByZero)
			})
		})

		c.Pending("shows a history of operations")
	})

	p.Describe("Strings", func(c *types.Context) {
		c.It("upcases", func(t *types.T) {
			expect.That(t, strings.ToUpper("peck")).Equal("PECK")
		})
		c.It("splits on commas", func(t *types.T) {
			expect.That(t, strings.Split("a,b,c", ",")).Len(3)
			expect.That(t, "a,b,c").Not().Contains(";")
		})
	})

	p.Describe("Concurrency", func(c *types.Context) {
		for i := 0; i < ConcurrencyDemoSize; i++ {
			n := i
			c.It(fmt.Sprintf("passes %d", n), func(t *types.T) {
				expect.That(t, n*n).Satisfy("be non negative", func(v any) bool {
					return v.(int) >= 0
				})
			})
		}
	})
}
