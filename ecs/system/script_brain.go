package system

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/combatcore/common"
	"github.com/milk9111/combatcore/ecs"
	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/prefabs"
)

// ScriptBrain steers entities with tengo scripts from prefabs/scripts. A
// script defines `update := func(engine, state) { ... }` and calls
// engine.move(x, z) to set its intent. state persists per entity.
type ScriptBrain struct {
	logger   *slog.Logger
	load     func(name string) ([]byte, error)
	runtimes map[ecs.Entity]*scriptRuntime
}

type scriptRuntime struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	failed   bool
	intent   common.Vec3
}

const scriptDispatch = `
update(__engine, __state)
`

func NewScriptBrain(logger *slog.Logger) *ScriptBrain {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptBrain{
		logger:   logger,
		load:     prefabs.LoadScript,
		runtimes: make(map[ecs.Entity]*scriptRuntime),
	}
}

// Invalidate drops compiled runtimes of the named script so the next tick
// recompiles it from disk. An empty name drops all of them.
func (b *ScriptBrain) Invalidate(name string) {
	name = strings.TrimSuffix(name, ".tengo")
	for e, rt := range b.runtimes {
		if name == "" || strings.TrimSuffix(rt.name, ".tengo") == name {
			delete(b.runtimes, e)
		}
	}
}

func (b *ScriptBrain) Intent(ctx *BrainContext) common.Vec3 {
	ctrl, ok := ecs.Get(ctx.World, ctx.Entity, component.ControllerComponent.Kind())
	if !ok || ctrl.Script == "" {
		return common.Vec3{}
	}
	b.prune(ctx.World)

	rt, err := b.runtime(ctx.Entity, ctrl.Script)
	if err != nil {
		// parked until Invalidate so the warning is not repeated every tick
		b.runtimes[ctx.Entity] = &scriptRuntime{name: ctrl.Script, failed: true}
		b.logger.Warn("ai: load script failed", slog.String("entity", ctx.Entity.String()), slog.String("script", ctrl.Script), slog.Any("err", err))
		return common.Vec3{}
	}
	if rt.failed {
		return common.Vec3{}
	}

	rt.intent = common.Vec3{}
	if err := rt.run(buildScriptEngine(ctx, rt)); err != nil {
		rt.failed = true
		b.logger.Warn("ai: script update failed", slog.String("entity", ctx.Entity.String()), slog.String("script", ctrl.Script), slog.Any("err", err))
		return common.Vec3{}
	}
	return rt.intent
}

func (b *ScriptBrain) prune(w *ecs.World) {
	for e := range b.runtimes {
		if !ecs.IsAlive(w, e) {
			delete(b.runtimes, e)
		}
	}
}

func (b *ScriptBrain) runtime(e ecs.Entity, name string) (*scriptRuntime, error) {
	if rt, ok := b.runtimes[e]; ok && rt.name == name {
		return rt, nil
	}
	src, err := b.load(name)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript(append(src, []byte("\n"+scriptDispatch)...))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	// A script without update fails here on the dispatch line's unresolved
	// reference; globals are not defined until the first Run.
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	rt := &scriptRuntime{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	b.runtimes[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func vecObject(v common.Vec3) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x": &tengo.Float{Value: v.X},
		"y": &tengo.Float{Value: v.Y},
		"z": &tengo.Float{Value: v.Z},
	}}
}

func buildScriptEngine(ctx *BrainContext, rt *scriptRuntime) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["self_pos"] = &tengo.UserFunction{Name: "self_pos", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecObject(ctx.Position), nil
	}}

	values["has_target"] = &tengo.UserFunction{Name: "has_target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx.HasTarget {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["target_pos"] = &tengo.UserFunction{Name: "target_pos", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !ctx.HasTarget {
			return tengo.UndefinedValue, nil
		}
		return vecObject(ctx.TargetPos), nil
	}}

	values["distance"] = &tengo.UserFunction{Name: "distance", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !ctx.HasTarget {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Float{Value: ctx.Target.Distance}, nil
	}}

	values["attack_range"] = &tengo.UserFunction{Name: "attack_range", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx.Weapon == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: ctx.Weapon.Range}, nil
	}}

	values["in_range"] = &tengo.UserFunction{Name: "in_range", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if ctx.InRange() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["dt"] = &tengo.UserFunction{Name: "dt", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: ctx.Dt}, nil
	}}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x, okX := objectAsFloat(args[0])
		z, okZ := objectAsFloat(args[1])
		if !okX || !okZ {
			return tengo.FalseValue, nil
		}
		rt.intent = common.V(x, 0, z)
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		slog.Debug("ai: script", slog.String("entity", ctx.Entity.String()), slog.String("msg", strings.Join(parts, " ")))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, true
	case *tengo.Int:
		return float64(v.Value), true
	default:
		return 0, false
	}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
