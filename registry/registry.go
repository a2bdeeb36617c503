package registry

import (
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/ethereum-optimism/infra/peck/selection"
	"github.com/ethereum-optimism/infra/peck/types"
	"github.com/ethereum/go-ethereum/log"
)

// Registry holds every context declared for a run, in registration order.
// It is owned by the caller, so independent registries can coexist in one process.
type Registry struct {
	log      log.Logger
	contexts []*types.Context
	once     []func(*types.Context)
	selector selection.Selector
	mu       sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log      log.Logger
	Selector selection.Selector
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) *Registry {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if cfg.Selector == nil {
		cfg.Selector = selection.MatchAll()
	}
	return &Registry{
		log:      cfg.Log,
		selector: cfg.Selector,
	}
}

// Describe declares a top-level context and evaluates its building block.
func (r *Registry) Describe(description any, fn func(c *types.Context)) *types.Context {
	ctx := types.NewContext(r, callerFile(), nil, nil, description)
	return ctx.Build(r.onceHooks(), fn)
}

// Once registers a hook that runs for every context created after this call.
// It is a good place to install suite-wide callbacks:
//
//	reg.Once(func(c *types.Context) { c.Before(openDatabase) })
func (r *Registry) Once(hook func(c *types.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.once = append(r.once, hook)
}

// Register implements types.Registrar.
func (r *Registry) Register(ctx *types.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts = append(r.contexts, ctx)
	r.log.Debug("Registered context", "label", ctx.Label(), "source", ctx.SourceFile())
}

// SetSelector replaces the selector used by Specifications.
func (r *Registry) SetSelector(sel selection.Selector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sel == nil {
		sel = selection.MatchAll()
	}
	r.selector = sel
}

// Contexts returns every registered context in registration order.
func (r *Registry) Contexts() []*types.Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*types.Context(nil), r.contexts...)
}

// Specifications flattens the selected specifications: contexts in
// registration order, specifications in declaration order.
func (r *Registry) Specifications() []*types.Specification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var specs []*types.Specification
	for _, ctx := range r.contexts {
		label := ctx.Label()
		if !r.selector.SelectContext(label) {
			continue
		}
		for _, spec := range ctx.Specifications() {
			if r.selector.SelectSpecification(label, spec.Description()) {
				specs = append(specs, spec)
			}
		}
	}
	return specs
}

func (r *Registry) onceHooks() []func(*types.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.once)
}

// callerFile returns the file of the first caller outside this package.
func callerFile() string {
	_, self, _, _ := runtime.Caller(0)
	for skip := 1; ; skip++ {
		_, file, _, ok := runtime.Caller(skip)
		if !ok {
			return ""
		}
		if file != self {
			abs, err := filepath.Abs(file)
			if err != nil {
				return file
			}
			return abs
		}
	}
}
