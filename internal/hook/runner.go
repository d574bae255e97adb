// Package hook executes the optional user-authored validation script bound
// to a recipe. Scripts run in a fresh Lua state per invocation so a broken
// script cannot poison later crafts. Script failures never abort a craft;
// they degrade to the same default an absent hook gets.
package hook

import (
	"context"

	"github.com/Shopify/go-lua"

	"github.com/forgelight/crucible/internal/domain"
	"github.com/forgelight/crucible/internal/logger"
)

// Result is the verdict a validation hook returns.
type Result struct {
	Success bool `json:"success"`
	Consume bool `json:"consume"`
}

// DefaultResult is what an absent or failing hook yields.
func DefaultResult() Result {
	return Result{Success: true, Consume: false}
}

// Input is the context handed to the script as Lua globals.
type Input struct {
	Actor      *domain.Actor
	Components []domain.Component
	Product    *domain.Product
	// ProductSnapshots are the resolved items the craft will deliver,
	// snapshotted before the script runs.
	ProductSnapshots []domain.PendingItem
	Extra            map[string]any
}

// Runner executes validation scripts
type Runner interface {
	// Run evaluates script against input. The script must return a table
	// with boolean fields success and consume. Any load or runtime error
	// downgrades to DefaultResult.
	Run(ctx context.Context, script string, input Input) Result
}

type luaRunner struct{}

// NewRunner creates a new Lua-backed hook runner
func NewRunner() Runner {
	return luaRunner{}
}

func (luaRunner) Run(ctx context.Context, script string, input Input) Result {
	if script == "" {
		return DefaultResult()
	}

	state := lua.NewState()
	lua.OpenLibraries(state)

	bindInput(state, input)

	if err := lua.LoadString(state, script); err != nil {
		logger.FromContext(ctx).Warn("Validation script failed to load",
			"error", err)
		return DefaultResult()
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		logger.FromContext(ctx).Warn("Validation script failed",
			"error", err)
		return DefaultResult()
	}

	result := DefaultResult()
	if state.TypeOf(-1) == lua.TypeTable {
		state.Field(-1, "success")
		if state.TypeOf(-1) == lua.TypeBoolean {
			result.Success = state.ToBoolean(-1)
		}
		state.Pop(1)

		state.Field(-1, "consume")
		if state.TypeOf(-1) == lua.TypeBoolean {
			result.Consume = state.ToBoolean(-1)
		}
		state.Pop(1)
	}
	state.Pop(1)

	return result
}

func bindInput(state *lua.State, input Input) {
	pushValue(state, actorToLua(input.Actor))
	state.SetGlobal("actor")

	comps := make([]any, 0, len(input.Components))
	for _, c := range input.Components {
		comps = append(comps, componentToLua(c))
	}
	pushValue(state, comps)
	state.SetGlobal("components")

	pushValue(state, productToLua(input.Product))
	state.SetGlobal("product")

	snaps := make([]any, 0, len(input.ProductSnapshots))
	for _, item := range input.ProductSnapshots {
		snaps = append(snaps, pendingItemToLua(item))
	}
	pushValue(state, snaps)
	state.SetGlobal("product_snapshots")

	pushValue(state, mapToAny(input.Extra))
	state.SetGlobal("extra")
}

func actorToLua(a *domain.Actor) any {
	if a == nil {
		return nil
	}
	items := make([]any, 0, len(a.Items))
	for _, it := range a.Items {
		items = append(items, map[string]any{
			"name":     it.Name,
			"quantity": it.Quantity,
			"tags":     stringsToAny(it.Tags),
		})
	}
	attrs := map[string]any{}
	for k, v := range a.Attributes {
		attrs[k] = v
	}
	return map[string]any{
		"id":         a.ID,
		"name":       a.Name,
		"items":      items,
		"attributes": attrs,
	}
}

func componentToLua(c domain.Component) any {
	return map[string]any{
		"name":     c.Name,
		"quantity": c.Quantity,
		"strategy": string(c.Strategy),
		"tags":     stringsToAny(c.Tags),
	}
}

func productToLua(p *domain.Product) any {
	if p == nil {
		return nil
	}
	comps := make([]any, 0, len(p.Components))
	for _, c := range p.Components {
		comps = append(comps, componentToLua(c))
	}
	return map[string]any{
		"name":       p.Name,
		"components": comps,
	}
}

func pendingItemToLua(item domain.PendingItem) any {
	return map[string]any{
		"name":     item.Name,
		"img":      item.Img,
		"quantity": item.Quantity,
		"tags":     stringsToAny(item.Tags),
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func mapToAny(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return in
}

func pushValue(state *lua.State, value any) {
	switch v := value.(type) {
	case nil:
		state.PushNil()
	case bool:
		state.PushBoolean(v)
	case string:
		state.PushString(v)
	case int:
		state.PushInteger(v)
	case int64:
		state.PushInteger(int(v))
	case float64:
		state.PushNumber(v)
	case []any:
		state.NewTable()
		for i, item := range v {
			pushValue(state, item)
			state.RawSetInt(-2, i+1)
		}
	case map[string]any:
		state.NewTable()
		for key, item := range v {
			pushValue(state, item)
			state.SetField(-2, key)
		}
	default:
		state.PushNil()
	}
}
