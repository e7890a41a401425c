package runtime

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/roach88/janus/internal/config"
	"github.com/roach88/janus/internal/ir"
	"github.com/roach88/janus/internal/pallet/janus"
	"github.com/roach88/janus/internal/support"
)

// Env is what a pallet is bound to for a single dispatch.
type Env struct {
	Verifier support.Verifier
	KV       support.KV
	Events   support.Publisher
}

// Invoke runs a call whose arguments have already been decoded.
type Invoke func(ctx context.Context, env Env, origin ir.Origin) error

// Callable is one dispatchable pallet function.
type Callable struct {
	Module   string
	Function string
	// Bind decodes call arguments. Errors become INVALID_ARGS.
	Bind func(args ir.Object) (Invoke, error)
}

// JanusCalls returns the Janus pallet's callables in call-index order.
func JanusCalls() []Callable {
	return []Callable{{
		Module:   janus.PalletName,
		Function: janus.CallDoSomething,
		Bind: func(args ir.Object) (Invoke, error) {
			if err := onlyFields(args, "something"); err != nil {
				return nil, err
			}
			value, err := args.Uint32("something")
			if err != nil {
				return nil, err
			}
			return func(ctx context.Context, env Env, origin ir.Origin) error {
				return janus.New(env.Verifier, env.KV, env.Events).DoSomething(ctx, origin, value)
			}, nil
		},
	}}
}

func onlyFields(args ir.Object, allowed ...string) error {
	for _, k := range args.SortedKeys() {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("unexpected field %q", k)
		}
	}
	return nil
}

type callKey struct {
	module   string
	function string
}

// callTable resolves (module, function) pairs. A function may also be given
// as its decimal call index within the module.
type callTable struct {
	calls   map[callKey]Callable
	indexed map[string][]string // module -> function names in call-index order
}

// newCallTable registers callables for the pallets bound in cfg. A pallet's
// call indices come from cfg when it lists calls, otherwise from registration
// order. Calls of pallets absent from cfg are not dispatchable.
func newCallTable(cfg *config.Runtime, callables []Callable) (*callTable, error) {
	t := &callTable{
		calls:   make(map[callKey]Callable, len(callables)),
		indexed: make(map[string][]string),
	}

	declared := map[string][]string{}
	for _, c := range callables {
		k := callKey{c.Module, c.Function}
		if _, dup := t.calls[k]; dup {
			return nil, fmt.Errorf("call %s.%s registered twice", c.Module, c.Function)
		}
		t.calls[k] = c
		declared[c.Module] = append(declared[c.Module], c.Function)
	}

	for module, names := range declared {
		p, ok := cfg.Pallet(module)
		if !ok {
			for _, n := range names {
				delete(t.calls, callKey{module, n})
			}
			continue
		}
		if len(p.Calls) == 0 {
			t.indexed[module] = names
			continue
		}
		for _, n := range p.Calls {
			if !slices.Contains(names, n) {
				return nil, fmt.Errorf("runtime %q binds %s.%s but the pallet has no such call", cfg.Name, module, n)
			}
		}
		for _, n := range names {
			if !slices.Contains(p.Calls, n) {
				delete(t.calls, callKey{module, n})
			}
		}
		t.indexed[module] = p.Calls
	}
	return t, nil
}

func (t *callTable) resolve(module, function string) (Callable, error) {
	if i, err := strconv.Atoi(function); err == nil {
		names := t.indexed[module]
		if i < 0 || i >= len(names) {
			return Callable{}, newUnknownCall(module, function)
		}
		function = names[i]
	}
	c, ok := t.calls[callKey{module, function}]
	if !ok {
		return Callable{}, newUnknownCall(module, function)
	}
	return c, nil
}
