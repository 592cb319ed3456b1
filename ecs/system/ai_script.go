package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
)

// ScriptLoader resolves a script path to its source.
type ScriptLoader func(path string) ([]byte, error)

type aiScriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	broken   bool
}

const aiDispatchScript = `
if __phase == "update" {
	update(__engine, __state)
}
`

// AIScriptSystem runs each enemy's tengo script once per tick. Scripts see
// the enemy through an engine map of sensed predicates and actions; their
// own state map persists between ticks.
type AIScriptSystem struct {
	load     ScriptLoader
	runtimes map[ecs.Entity]*aiScriptRuntime
}

func NewAIScriptSystem(load ScriptLoader) *AIScriptSystem {
	return &AIScriptSystem{load: load, runtimes: map[ecs.Entity]*aiScriptRuntime{}}
}

// Invalidate drops compiled scripts loaded from path so the next tick picks
// up the new source.
func (s *AIScriptSystem) Invalidate(path string) {
	want := cleanScriptName(path)
	for e, rt := range s.runtimes {
		if cleanScriptName(rt.path) == want {
			delete(s.runtimes, e)
		}
	}
}

func (s *AIScriptSystem) Update(w *ecs.World, dt float64) {
	for e := range s.runtimes {
		if !ecs.IsAlive(w, e) {
			delete(s.runtimes, e)
		}
	}

	ecs.ForEach2(w, component.AIScriptComponent.Kind(), component.EnemyComponent.Kind(), func(e ecs.Entity, ai *component.AIScript, en *component.Enemy) {
		if en.Policy == nil || !Controllable(w, e) {
			return
		}
		rt := s.runtime(e, ai.Path)
		if rt.broken {
			return
		}
		if err := rt.run("update", buildAIScriptEngine(en, dt)); err != nil {
			log.Printf("ai: entity=%s script %s update: %v", e, ai.Path, err)
			rt.broken = true
		}
	})
}

func (s *AIScriptSystem) runtime(e ecs.Entity, path string) *aiScriptRuntime {
	if rt, ok := s.runtimes[e]; ok && rt.path == path {
		return rt
	}
	rt, err := s.compile(path)
	if err != nil {
		log.Printf("ai: entity=%s load script %s: %v", e, path, err)
		rt = &aiScriptRuntime{path: path, broken: true}
	}
	s.runtimes[e] = rt
	return rt
}

func (s *AIScriptSystem) compile(path string) (*aiScriptRuntime, error) {
	if s.load == nil || strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("no script")
	}
	src, err := s.load(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + aiDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return &aiScriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (rt *aiScriptRuntime) run(phase string, engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildAIScriptEngine(en *component.Enemy, dt float64) *tengo.ImmutableMap {
	p := en.Policy
	values := map[string]tengo.Object{
		"dt":   &tengo.Float{Value: dt},
		"kind": &tengo.String{Value: string(en.Kind)},
	}

	predicates := map[string]func() bool{
		"on_ground":         p.OnGround,
		"on_left_wall":      p.OnLeftWall,
		"on_right_wall":     p.OnRightWall,
		"is_falling":        p.IsFalling,
		"facing_right":      p.FacingRight,
		"player_ahead":      p.CheckForPlayer,
		"player_diagonal":   p.CheckForPlayerDiagonally,
		"check_trapped":     p.CheckTrapped,
		"check_turn_around": p.CheckTurnAround,
		"stopped":           p.Movement().Stopped,
	}
	for name, fn := range predicates {
		values[name] = predicate(name, fn)
	}

	actions := map[string]func(){
		"walk":        p.Walk,
		"run":         p.Run,
		"idle":        p.Idle,
		"turn_around": p.TurnAround,
		"trapped":     p.Trapped,
		"stop_moving": p.StopMoving,
		"stop_flying": p.StopFlying,
	}
	for name, fn := range actions {
		values[name] = action(name, fn)
	}

	values["wall_ahead"] = &tengo.UserFunction{Name: "wall_ahead", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(p.WallAhead(floatArg(args, 0, p.Tuning().SightForGround))), nil
	}}
	values["ground_ahead"] = &tengo.UserFunction{Name: "ground_ahead", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(p.GroundAhead(floatArg(args, 0, p.Tuning().SightForGround))), nil
	}}
	values["flap"] = &tengo.UserFunction{Name: "flap", Value: func(args ...tengo.Object) (tengo.Object, error) {
		fraction := floatArg(args, 1, 1)
		if floatArg(args, 0, 1) < 0 {
			p.FlapLeft(fraction)
		} else {
			p.FlapRight(fraction)
		}
		return tengo.TrueValue, nil
	}}
	values["dive"] = &tengo.UserFunction{Name: "dive", Value: func(args ...tengo.Object) (tengo.Object, error) {
		fraction := floatArg(args, 1, 1)
		angle := floatArg(args, 2, p.Tuning().DiveAngle)
		if floatArg(args, 0, 1) < 0 {
			p.DiveLeft(fraction, angle)
		} else {
			p.DiveRight(fraction, angle)
		}
		return tengo.TrueValue, nil
	}}
	values["float"] = &tengo.UserFunction{Name: "float", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p.Float(floatArg(args, 0, 1))
		return tengo.TrueValue, nil
	}}
	values["glide"] = &tengo.UserFunction{Name: "glide", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p.Glide(floatArg(args, 0, 1))
		return tengo.TrueValue, nil
	}}
	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: p.State().String()}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func predicate(name string, fn func() bool) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(fn()), nil
	}}
}

func action(name string, fn func()) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		fn()
		return tengo.TrueValue, nil
	}}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func floatArg(args []tengo.Object, i int, fallback float64) float64 {
	if i >= len(args) {
		return fallback
	}
	switch v := args[i].(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	case *tengo.Bool:
		if v.IsFalsy() {
			return -1
		}
		return 1
	}
	return fallback
}

func cleanScriptName(path string) string {
	s := strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
