package peck

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/peck/exitcodes"
	"github.com/ethereum-optimism/infra/peck/expect"
	"github.com/ethereum-optimism/infra/peck/reporting"
	"github.com/ethereum-optimism/infra/peck/service"
	"github.com/ethereum-optimism/infra/peck/types"
)

func testConfig(out *bytes.Buffer) *Config {
	cfg := DefaultConfig()
	cfg.Out = out
	cfg.Log = log.NewLogger(log.DiscardHandler())
	return cfg
}

func newTestPeck(t *testing.T, cfg *Config) *Peck {
	t.Helper()
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func passing(t *types.T) { t.Expect("passes") }

func TestNew_Defaults(t *testing.T) {
	p := newTestPeck(t, nil)
	assert.Equal(t, 1, p.Config().Concurrency)
	assert.IsType(t, &reporting.Reporter{}, p.Reporter())
	assert.Zero(t, p.Delegates().Len(), "the reporter is installed by RunAtExit")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Concurrency = -2
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
}

func TestRunAtExit_RunsOnce(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))

	var runs atomic.Int32
	p.Describe("Once", func(c *types.Context) {
		c.It("counts runs", func(t *types.T) {
			runs.Add(1)
			t.Expect("counted")
		})
	})

	assert.True(t, p.RunAtExit())
	assert.False(t, p.RunAtExit())
	assert.Equal(t, 1, p.Delegates().Len())

	assert.Equal(t, exitcodes.Success, p.Exit())
	assert.Equal(t, exitcodes.Success, p.Exit())

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 1, strings.Count(out.String(), "Started."))
	assert.Equal(t, 1, strings.Count(out.String(), "1 spec, 0 failures, 0 errors"))
}

func TestExit_WithoutRunAtExit(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))

	ran := false
	p.Describe("Idle", func(c *types.Context) {
		c.It("never runs", func(t *types.T) { ran = true })
	})

	assert.Equal(t, exitcodes.Success, p.Exit())
	assert.False(t, ran)
	assert.Empty(t, out.String())
}

func TestExit_PassedMissingErrored(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))

	p.Describe("Scenario", func(c *types.Context) {
		c.It("asserts one equals one", func(t *types.T) {
			expect.That(t, 1).Equal(1)
		})
		c.Pending("has no body")
		c.It("raises a runtime fault", func(t *types.T) {
			var m map[string]int
			m["boom"] = 1
		})
	})

	p.RunAtExit()
	assert.Equal(t, exitcodes.TestFailure, p.Exit())

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Started.\n.me\n"), got)
	assert.Contains(t, got, "Unimplemented specs:\n\n- Scenario has no body\n")
	assert.Contains(t, got, "In [ Scenario raises a runtime fault ]:")
	assert.Contains(t, got, "3 specs, 0 failures, 1 error")

	// Missing labels precede exceptions, which precede the summary.
	assert.Less(t, strings.Index(got, "Unimplemented"), strings.Index(got, "In ["))
	assert.Less(t, strings.Index(got, "In ["), strings.Index(got, "Finished in"))

	summary := p.Reporter().Counts()
	assert.Equal(t, reporting.Counts{Ran: 3, Passed: 1, Errored: 1, Missing: 1}, summary)
	assert.Equal(t, []string{"Scenario has no body"}, p.Reporter().MissingLabels())
	assert.Len(t, p.Reporter().Exceptions(), 1)
}

func TestExit_MissingOnlySucceeds(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))
	p.Describe("Pending", func(c *types.Context) {
		c.Pending("later")
		c.It("has no expectations", func(t *types.T) {})
	})

	p.RunAtExit()
	assert.Equal(t, exitcodes.Success, p.Exit())
	assert.Contains(t, out.String(), "mm")
}

func TestRun_Concurrent(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(&out)
	cfg.Concurrency = 9
	p := newTestPeck(t, cfg)

	p.Describe("Concurrency", func(c *types.Context) {
		for i := 0; i < 200; i++ {
			c.It("passes", passing)
		}
	})
	p.RunAtExit()
	assert.Equal(t, exitcodes.Success, p.Exit())

	result := p.Result()
	require.NotNil(t, result)
	assert.Equal(t, 200, result.Stats.Passed)
	assert.Equal(t, 9, result.Workers)
	assert.Equal(t, "Started.\n"+strings.Repeat(".", 200)+"\n", out.String()[:len("Started.\n")+201])
	assert.Contains(t, out.String(), "200 specs, 0 failures, 0 errors")
}

func TestConfigure_Selection(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))
	p.Describe("Calculator", func(c *types.Context) {
		c.It("adds", passing)
		c.It("divides", func(t *types.T) { t.Flunk("not selected") })
	})
	p.Describe("Parser", func(c *types.Context) {
		c.It("parses", func(t *types.T) { t.Flunk("not selected") })
	})

	cfg := testConfig(&out)
	cfg.SelectContext = "^Calc"
	cfg.Filter = `description == "adds"`
	require.NoError(t, p.Configure(cfg))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Total)
	assert.True(t, result.Succeeded())
}

func TestConfigure_ReplacesReporter(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))
	p.Describe("Docs", func(c *types.Context) {
		c.It("renders", passing)
	})
	p.RunAtExit()

	cfg := testConfig(&out)
	cfg.Reporter = reporting.KindDocumentation
	cfg.ShowProgress = true
	cfg.ProgressInterval = time.Hour
	require.NoError(t, p.Configure(cfg))

	// Reporter and progress logger.
	assert.Equal(t, 2, p.Delegates().Len())
	assert.IsType(t, &reporting.DocumentationReporter{}, p.Reporter())

	assert.Equal(t, exitcodes.Success, p.Exit())
	plain := stripansi.Strip(out.String())
	assert.Contains(t, plain, "Docs")
	assert.Contains(t, plain, "[x] renders")
	assert.NotContains(t, plain, "Started.")
}

func TestLifecycle_Start(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))
	p.Describe("Lifecycle", func(c *types.Context) {
		c.It("passes", passing)
	})

	closed := make(chan error, 1)
	p.shutdownCallback = func(err error) { closed <- err }

	require.NoError(t, p.Start(context.Background()))
	assert.False(t, p.Stopped())

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown callback was not called")
	}

	require.NoError(t, p.Stop(context.Background()))
	assert.True(t, p.Stopped())
	require.NoError(t, p.Stop(context.Background()))
}

func TestLifecycle_StartFailure(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))
	p.Describe("Lifecycle", func(c *types.Context) {
		c.It("fails", func(t *types.T) { t.Flunk("expected failure") })
	})

	err := p.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err))
	assert.Contains(t, out.String(), "1 spec, 1 failure, 0 errors")
}

func TestList(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(&out)
	cfg.List = true
	p := newTestPeck(t, cfg)

	ran := false
	p.Describe("Calculator", func(c *types.Context) {
		c.It("adds", func(t *types.T) { ran = true })
		c.Describe("dividing", func(c *types.Context) {
			c.Pending("by zero")
		})
	})

	closed := make(chan error, 1)
	p.shutdownCallback = func(err error) { closed <- err }
	require.NoError(t, p.Start(context.Background()))
	<-closed

	assert.False(t, ran)
	got := out.String()
	assert.Contains(t, got, "2 selected, 1 pending")
	assert.Contains(t, got, "└── Calculator\n    ├── adds\n    └── dividing\n        └── by zero (pending)\n")
}

func TestStatus(t *testing.T) {
	var out bytes.Buffer
	p := newTestPeck(t, testConfig(&out))

	var during service.Status
	p.Describe("Status", func(c *types.Context) {
		c.It("observes the run", func(t *types.T) {
			during = p.Status()
			t.Expect("observed")
		})
	})

	assert.Equal(t, service.Status{Run: service.RunIdle}, p.Status())

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, service.RunInProgress, during.Run)
	assert.Empty(t, during.Result)
	final := p.Status()
	assert.Equal(t, service.RunFinished, final.Run)
	assert.Contains(t, final.Result, "1 passed")
}
