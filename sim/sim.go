package sim

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/stfu/common"
	"github.com/milk9111/stfu/config"
	"github.com/milk9111/stfu/ecs"
	"github.com/milk9111/stfu/ecs/component"
	"github.com/milk9111/stfu/ecs/system"
	"github.com/milk9111/stfu/levels"
	"github.com/milk9111/stfu/locomotion"
	"github.com/milk9111/stfu/physics"
	"github.com/milk9111/stfu/prefabs"
)

var (
	ErrClosed      = errors.New("sim: simulation closed")
	ErrNoPlayer    = errors.New("sim: no such player")
	ErrPlayerTaken = errors.New("sim: player index already spawned")
)

// Intent is one tick of player input.
type Intent struct {
	MoveX float64 `yaml:"x,omitempty"`
	Jump  bool    `yaml:"j,omitempty"`
	Dash  bool    `yaml:"d,omitempty"`
	Shoot bool    `yaml:"s,omitempty"`
}

// Simulation owns everything one level needs: the physics world, the ECS
// world and the two logic passes. Players advance on their own fixed step;
// enemies, platforms and enemy health share the world step. Both passes
// consume the time the physics world actually simulated.
type Simulation struct {
	cfg     config.Config
	physics *physics.World
	world   *ecs.World

	playerPass    *physics.FixedStepScheduler
	worldPass     *physics.FixedStepScheduler
	playerSystems *ecs.Scheduler
	worldSystems  *ecs.Scheduler
	transforms    *system.TransformSystem

	scripts      *system.AIScriptSystem
	playerHealth *system.HealthSystem
	worldHealth  *system.HealthSystem

	level   *levels.Level
	players [physics.MaxPlayers]ecs.Entity
	specs   map[string]*prefabs.CharacterSpec
	events  []ecs.Event
	frame   uint64
	closed  bool
}

func New(cfg config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pw, err := physics.NewWorld(cfg.PhysicsSettings())
	if err != nil {
		return nil, fmt.Errorf("sim: physics world: %w", err)
	}

	s := &Simulation{
		cfg:          cfg,
		physics:      pw,
		world:        ecs.NewWorld(),
		scripts:      system.NewAIScriptSystem(prefabs.LoadScript),
		playerHealth: system.NewHealthSystem(true),
		worldHealth:  system.NewHealthSystem(false),
		transforms:   system.NewTransformSystem(pw),
		specs:        map[string]*prefabs.CharacterSpec{},
	}

	s.playerSystems = ecs.NewScheduler(
		system.NewControllerSystem(),
		system.NewLocomotionSystem(),
		system.NewWeaponSystem(),
		system.NewCheckpointSystem(),
		s.playerHealth,
	)
	s.worldSystems = ecs.NewScheduler(
		system.NewPlatformSystem(),
		s.scripts,
		system.NewEnemySystem(),
		s.worldHealth,
	)

	sc := cfg.Simulation
	s.playerPass, err = physics.NewFixedStepScheduler(sc.PlayerStep, sc.MaxSteps, func(dt float64) {
		s.playerSystems.Update(s.world, dt)
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("sim: player step: %w", err)
	}
	s.worldPass, err = physics.NewFixedStepScheduler(sc.WorldStep, sc.MaxSteps, func(dt float64) {
		s.worldSystems.Update(s.world, dt)
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("sim: world step: %w", err)
	}
	return s, nil
}

// Load builds a simulation for the named level with the configured number
// of players.
func Load(cfg config.Config, levelName string) (*Simulation, error) {
	lvl, err := levels.Load(levelName)
	if err != nil {
		return nil, err
	}
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.LoadLevel(lvl); err != nil {
		s.Close()
		return nil, err
	}
	for i := 1; i <= cfg.Simulation.Players; i++ {
		sp := lvl.Spawn(i)
		if _, err := s.SpawnPlayer(i, cp.Vector{X: common.ToUnits(sp.X), Y: common.ToUnits(sp.Y)}); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulation) Physics() *physics.World { return s.physics }
func (s *Simulation) World() *ecs.World       { return s.world }
func (s *Simulation) Config() config.Config   { return s.cfg }
func (s *Simulation) Level() *levels.Level    { return s.level }
func (s *Simulation) Frame() uint64           { return s.frame }

// Events returns the events raised during the last Update.
func (s *Simulation) Events() []ecs.Event { return s.events }

// LoadLevel adds the level's static geometry, checkpoints, platforms and
// enemies. Any construction failure aborts the load.
func (s *Simulation) LoadLevel(lvl *levels.Level) error {
	if s.closed {
		return ErrClosed
	}
	if err := lvl.Validate(); err != nil {
		return err
	}
	s.level = lvl
	fall := common.ToUnits(lvl.Height)
	s.playerHealth.FallLimit = fall
	s.worldHealth.FallLimit = fall

	for _, b := range lvl.Boxes {
		bb := cp.BB{
			L: common.ToUnits(b.X),
			B: common.ToUnits(b.Y),
			R: common.ToUnits(b.X + b.W),
			T: common.ToUnits(b.Y + b.H),
		}
		s.physics.AddStaticBox(bb, boxCategory(b.Kind), lvl)
	}

	for i, a := range lvl.Checkpoints {
		if _, err := s.SpawnCheckpoint(a); err != nil {
			return fmt.Errorf("sim: checkpoint %d: %w", i, err)
		}
	}

	for i, p := range lvl.Platforms {
		if _, err := s.spawnLevelPlatform(p); err != nil {
			return fmt.Errorf("sim: platform %d: %w", i, err)
		}
	}

	for i, e := range lvl.Enemies {
		pos := cp.Vector{X: common.ToUnits(e.X), Y: common.ToUnits(e.Y)}
		if _, err := s.SpawnEnemy(e.Prefab, pos, e.FacingRight); err != nil {
			return fmt.Errorf("sim: enemy %d: %w", i, err)
		}
	}
	return nil
}

func (s *Simulation) spawnLevelPlatform(p levels.Platform) (ecs.Entity, error) {
	from := units(p.From)
	to := units(p.To)
	w, h := common.ToUnits(p.W), common.ToUnits(p.H)
	switch p.Kind {
	case levels.PlatformCircular:
		return s.SpawnCircularPlatform(physics.CircularConfig{
			Initial:   from,
			Final:     to,
			Width:     w,
			Height:    h,
			Speed:     p.Speed,
			Clockwise: !p.CounterClockwise,
			Reverse:   p.Reverse,
		})
	case levels.PlatformFalling:
		fall, reset := p.Delays()
		return s.SpawnFallingPlatform(physics.FallingConfig{
			Position:   from,
			Width:      w,
			Height:     h,
			FallDelay:  fall,
			ResetDelay: reset,
		})
	}
	return s.SpawnPlatform(physics.PlatformConfig{
		Initial:    from,
		Final:      to,
		Width:      w,
		Height:     h,
		Speed:      p.Speed,
		SlowRadius: p.SlowRadius,
		Reverse:    p.Reverse,
	})
}

func units(p levels.Point) cp.Vector {
	return cp.Vector{X: common.ToUnits(p.X), Y: common.ToUnits(p.Y)}
}

func boxCategory(kind string) physics.Category {
	switch kind {
	case levels.KindPlatform:
		return physics.CategoryPlatform
	case levels.KindDeath:
		return physics.CategoryDeath
	default:
		return physics.CategoryGround
	}
}

// Spec returns the cached prefab spec for name, loading it on first use.
func (s *Simulation) Spec(name string) (*prefabs.CharacterSpec, error) {
	if spec, ok := s.specs[name]; ok {
		return spec, nil
	}
	spec, err := prefabs.LoadCharacterSpec(name)
	if err != nil {
		return nil, err
	}
	s.specs[name] = spec
	return spec, nil
}

func (s *Simulation) characterConfig(spec *prefabs.CharacterSpec, pos cp.Vector, cat, groundLike physics.Category) physics.CharacterConfig {
	tuning := s.cfg.CharacterTuning()
	if spec.RunSpeed != nil {
		tuning.RunSpeed = *spec.RunSpeed
	}
	density := spec.Density
	if density == 0 {
		density = s.cfg.Character.Density
	}
	return physics.CharacterConfig{
		Position:   pos,
		Width:      common.ToUnits(spec.Width),
		Height:     common.ToUnits(spec.Height),
		Density:    density,
		Category:   cat,
		GroundLike: groundLike,
		Tuning:     tuning,
	}
}

func healthFrom(spec *prefabs.CharacterSpec) *component.Health {
	h := &component.Health{
		Max:           spec.Health.Hitpoints,
		HitDelay:      spec.Health.HitDelay,
		RecoveryDelay: spec.Health.RecoveryDelay,
		RespawnDelay:  spec.Health.RespawnDelay,
	}
	system.ResetHealth(h)
	return h
}

// SpawnPlayer creates player index (1..4) at pos.
func (s *Simulation) SpawnPlayer(index int, pos cp.Vector) (ecs.Entity, error) {
	if s.closed {
		return 0, ErrClosed
	}
	cat, err := physics.PlayerCategory(index)
	if err != nil {
		return 0, err
	}
	if ecs.IsAlive(s.world, s.players[index-1]) {
		return 0, fmt.Errorf("%w: %d", ErrPlayerTaken, index)
	}
	spec, err := s.Spec("player")
	if err != nil {
		return 0, err
	}

	e := ecs.CreateEntity(s.world)
	body, err := physics.NewCharacter(s.physics, e, s.characterConfig(spec, pos, cat, physics.CategoryPlayer))
	if err != nil {
		ecs.DestroyEntity(s.world, e)
		return 0, fmt.Errorf("sim: player %d: %w", index, err)
	}
	h := healthFrom(spec)
	body.Sensor().ContactFilter = physics.ContactListeners{
		system.CheckpointContacts(s.world),
		system.PlayerContacts(h),
	}
	p := locomotion.NewPlayer(body, s.cfg.PlayerTuning(), system.Observe(s.world, e))

	w := s.world
	err = errors.Join(
		ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}),
		ecs.Add(w, e, component.CharacterComponent.Kind(), &component.Character{Body: body, Spawn: pos, Prefab: "player"}),
		ecs.Add(w, e, component.ControllerComponent.Kind(), &component.Controller{Index: index}),
		ecs.Add(w, e, component.LocomotionComponent.Kind(), &component.Locomotion{Player: p}),
		ecs.Add(w, e, component.HealthComponent.Kind(), h),
		ecs.Add(w, e, component.WeaponComponent.Kind(), s.weapon()),
		ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y}),
	)
	if err != nil {
		s.discard(e, body.Dispose)
		return 0, err
	}
	s.players[index-1] = e
	log.Printf("sim: player %d spawned at (%.2f, %.2f)", index, pos.X, pos.Y)
	return e, nil
}

func (s *Simulation) weapon() *component.Weapon {
	wc := s.cfg.Weapon
	return &component.Weapon{
		MaxBullets:      wc.MaxBullets,
		Speed:           wc.BulletSpeed,
		Width:           common.ToUnits(wc.BulletWidth),
		Height:          common.ToUnits(wc.BulletHeight),
		Range:           common.ToUnits(wc.BulletRange),
		Density:         wc.BulletDensity,
		GoneOnCollision: wc.GoneOnCollision,
	}
}

// SpawnEnemy creates an enemy from the named prefab at pos.
func (s *Simulation) SpawnEnemy(prefab string, pos cp.Vector, facingRight bool) (ecs.Entity, error) {
	if s.closed {
		return 0, ErrClosed
	}
	spec, err := s.Spec(prefab)
	if err != nil {
		return 0, err
	}
	kind := component.EnemyWalker
	switch spec.Kind {
	case prefabs.KindFlyer:
		kind = component.EnemyFlyer
	case prefabs.KindPlayer:
		return 0, fmt.Errorf("sim: prefab %q is a player", prefab)
	}

	e := ecs.CreateEntity(s.world)
	body, err := physics.NewCharacter(s.physics, e, s.characterConfig(spec, pos, physics.CategoryEnemy, physics.CategoryEnemy))
	if err != nil {
		ecs.DestroyEntity(s.world, e)
		return 0, fmt.Errorf("sim: enemy %s: %w", prefab, err)
	}
	h := healthFrom(spec)
	body.Sensor().ContactFilter = system.EnemyContacts(h)
	policy := locomotion.NewEnemy(body, s.cfg.EnemyTuning(), system.Observe(s.world, e))
	policy.SetFacingRight(facingRight)

	w := s.world
	err = errors.Join(
		ecs.Add(w, e, component.EnemyTagComponent.Kind(), &component.EnemyTag{}),
		ecs.Add(w, e, component.CharacterComponent.Kind(), &component.Character{Body: body, Spawn: pos, Prefab: prefab}),
		ecs.Add(w, e, component.EnemyComponent.Kind(), &component.Enemy{Policy: policy, Kind: kind}),
		ecs.Add(w, e, component.AIScriptComponent.Kind(), &component.AIScript{Path: spec.Script}),
		ecs.Add(w, e, component.HealthComponent.Kind(), h),
		ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y}),
	)
	if err != nil {
		s.discard(e, body.Dispose)
		return 0, err
	}
	return e, nil
}

// SpawnPlatform adds a platform shuttling between two points.
func (s *Simulation) SpawnPlatform(cfg physics.PlatformConfig) (ecs.Entity, error) {
	return s.spawnPlatform(func(e ecs.Entity) (physics.Platform, error) {
		return physics.NewLinearPlatform(s.physics, e, cfg)
	})
}

// SpawnCircularPlatform adds a platform orbiting between two points.
func (s *Simulation) SpawnCircularPlatform(cfg physics.CircularConfig) (ecs.Entity, error) {
	return s.spawnPlatform(func(e ecs.Entity) (physics.Platform, error) {
		return physics.NewCircularPlatform(s.physics, e, cfg)
	})
}

// SpawnFallingPlatform adds a platform that drops when stood on.
func (s *Simulation) SpawnFallingPlatform(cfg physics.FallingConfig) (ecs.Entity, error) {
	return s.spawnPlatform(func(e ecs.Entity) (physics.Platform, error) {
		return physics.NewFallingPlatform(s.physics, e, cfg)
	})
}

func (s *Simulation) spawnPlatform(build func(e ecs.Entity) (physics.Platform, error)) (ecs.Entity, error) {
	if s.closed {
		return 0, ErrClosed
	}
	e := ecs.CreateEntity(s.world)
	body, err := build(e)
	if err != nil {
		ecs.DestroyEntity(s.world, e)
		return 0, err
	}
	p := body.Position()
	err = errors.Join(
		ecs.Add(s.world, e, component.PlatformComponent.Kind(), &component.Platform{Body: body}),
		ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{X: p.X, Y: p.Y}),
	)
	if err != nil {
		s.discard(e, body.Dispose)
		return 0, err
	}
	return e, nil
}

// SpawnCheckpoint adds a checkpoint sensor over area, given in pixels. The
// first player to touch it moves every player's respawn point to its
// center.
func (s *Simulation) SpawnCheckpoint(area levels.Area) (ecs.Entity, error) {
	if s.closed {
		return 0, ErrClosed
	}
	e := ecs.CreateEntity(s.world)
	bb := cp.BB{
		L: common.ToUnits(area.X),
		B: common.ToUnits(area.Y),
		R: common.ToUnits(area.X + area.W),
		T: common.ToUnits(area.Y + area.H),
	}
	shape := s.physics.AddSensorBox(bb, physics.CategoryDefault, physics.CategoryPlayer, e)
	center := units(area.Center())
	err := errors.Join(
		ecs.Add(s.world, e, component.CheckpointComponent.Kind(), &component.Checkpoint{Spawn: center}),
		ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{X: center.X, Y: center.Y}),
	)
	if err != nil {
		s.discard(e, func() { s.physics.RemoveShape(shape) })
		return 0, err
	}
	return e, nil
}

func (s *Simulation) discard(e ecs.Entity, dispose func()) {
	dispose()
	ecs.DestroyEntity(s.world, e)
}

// Player returns the entity and policy of player index.
func (s *Simulation) Player(index int) (ecs.Entity, *locomotion.Player, error) {
	if index < 1 || index > physics.MaxPlayers {
		return 0, nil, fmt.Errorf("%w: %d", ErrNoPlayer, index)
	}
	e := s.players[index-1]
	loc, ok := ecs.Get(s.world, e, component.LocomotionComponent.Kind())
	if !ok {
		return 0, nil, fmt.Errorf("%w: %d", ErrNoPlayer, index)
	}
	return e, loc.Player, nil
}

// SetIntent sets the input player index acts on during the next Update.
func (s *Simulation) SetIntent(index int, in Intent) error {
	e, _, err := s.Player(index)
	if err != nil {
		return err
	}
	c, ok := ecs.Get(s.world, e, component.ControllerComponent.Kind())
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoPlayer, index)
	}
	c.MoveX = in.MoveX
	c.Jump = in.Jump
	c.Dash = in.Dash
	c.Shoot = in.Shoot
	return nil
}

// Update advances one frame: the physics frame first, then the player and
// world passes over the time physics simulated, then transforms.
func (s *Simulation) Update(frameDt float64) []ecs.Event {
	if s.closed {
		return nil
	}
	s.physics.Update(frameDt)
	dt := s.physics.SimulatedDelta()
	s.playerPass.Update(dt)
	s.worldPass.Update(dt)
	s.transforms.Update(s.world, dt)
	s.events = ecs.Events(s.world).Drain()
	s.frame++
	return s.events
}

// Reload drops cached content for an edited prefab or script file.
func (s *Simulation) Reload(c prefabs.Change) {
	if c.Script {
		s.scripts.Invalidate(c.Path)
		log.Printf("sim: reloaded script %s", filepath.Base(c.Path))
		return
	}
	name := strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path))
	delete(s.specs, name)
	log.Printf("sim: prefab %s will apply on next spawn", name)
}

// Close disposes every body. Calling it again is a no-op.
func (s *Simulation) Close() {
	if s.closed {
		return
	}
	ecs.ForEach(s.world, component.CharacterComponent.Kind(), func(_ ecs.Entity, c *component.Character) {
		c.Body.Dispose()
	})
	ecs.ForEach(s.world, component.PlatformComponent.Kind(), func(_ ecs.Entity, p *component.Platform) {
		p.Body.Dispose()
	})
	ecs.ForEach(s.world, component.WeaponComponent.Kind(), func(_ ecs.Entity, wp *component.Weapon) {
		for _, b := range wp.Bullets {
			b.Dispose()
		}
		wp.Bullets = nil
	})
	for _, e := range ecs.Entities(s.world) {
		ecs.DestroyEntity(s.world, e)
	}
	s.closed = true
}
