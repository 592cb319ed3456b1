package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/milk9111/stfu/locomotion"
	"github.com/milk9111/stfu/physics"
)

//go:embed default.yaml
var defaultYAML []byte

// EnvPrefix prefixes environment overrides, e.g. STFU_PHYSICS_GRAVITY.
const EnvPrefix = "STFU"

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Physics    PhysicsConfig    `mapstructure:"physics"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Character  CharacterConfig  `mapstructure:"character"`
	Player     PlayerConfig     `mapstructure:"player"`
	Enemy      EnemyConfig      `mapstructure:"enemy"`
	Weapon     WeaponConfig     `mapstructure:"weapon"`
}

type PhysicsConfig struct {
	Gravity            float64 `mapstructure:"gravity"`
	VelocityIterations int     `mapstructure:"velocity_iterations"`
	PositionIterations int     `mapstructure:"position_iterations"`
	CollisionSlop      float64 `mapstructure:"collision_slop"`
	FixedStep          float64 `mapstructure:"fixed_step"`
	MaxSteps           int     `mapstructure:"max_steps"`
}

// SimulationConfig sets the game-logic steps: players and the rest of the
// world advance on separate fixed steps.
type SimulationConfig struct {
	PlayerStep float64 `mapstructure:"player_step"`
	WorldStep  float64 `mapstructure:"world_step"`
	MaxSteps   int     `mapstructure:"max_steps"`
	Players    int     `mapstructure:"players"`
	Level      string  `mapstructure:"level"`
}

type CharacterConfig struct {
	Density               float64 `mapstructure:"density"`
	MaxMotorTorque        float64 `mapstructure:"max_motor_torque"`
	RunSpeed              float64 `mapstructure:"run_speed"`
	AirControlSpeed       float64 `mapstructure:"air_control_speed"`
	AirControlAbility     float64 `mapstructure:"air_control_ability"`
	AirStopTime           float64 `mapstructure:"air_stop_time"`
	JumpSpeed             float64 `mapstructure:"jump_speed"`
	WallJumpImpulse       float64 `mapstructure:"wall_jump_impulse"`
	TerminalVelocity      float64 `mapstructure:"terminal_velocity"`
	SlideTerminalVelocity float64 `mapstructure:"slide_terminal_velocity"`
	BrakeSpeed            float64 `mapstructure:"brake_speed"`
	TorsoFriction         float64 `mapstructure:"torso_friction"`
	HeadFriction          float64 `mapstructure:"head_friction"`
	WheelFriction         float64 `mapstructure:"wheel_friction"`
	DebounceDelay         float64 `mapstructure:"debounce_delay"`
	WallSlide             bool    `mapstructure:"wall_slide"`
}

type PlayerConfig struct {
	JumpDelay      float64 `mapstructure:"jump_delay"`
	StateBuffer    float64 `mapstructure:"state_buffer"`
	DashMultiplier float64 `mapstructure:"dash_multiplier"`
	DashDuration   float64 `mapstructure:"dash_duration"`
	DashCooldown   float64 `mapstructure:"dash_cooldown"`
}

type EnemyConfig struct {
	WalkPercent     float64 `mapstructure:"walk_percent"`
	SightForPlayer  float64 `mapstructure:"sight_for_player"`
	SightForGround  float64 `mapstructure:"sight_for_ground"`
	SightDelay      float64 `mapstructure:"sight_delay"`
	TurnAroundDelay float64 `mapstructure:"turn_around_delay"`
	FlySpeed        float64 `mapstructure:"fly_speed"`
	DiveAngle       float64 `mapstructure:"dive_angle"`
}

// WeaponConfig sets up every player's gun. Bullet sizes and range are in
// pixels, speed in units per second.
type WeaponConfig struct {
	MaxBullets      int     `mapstructure:"max_bullets"`
	BulletSpeed     float64 `mapstructure:"bullet_speed"`
	BulletWidth     float64 `mapstructure:"bullet_width"`
	BulletHeight    float64 `mapstructure:"bullet_height"`
	BulletRange     float64 `mapstructure:"bullet_range"`
	BulletDensity   float64 `mapstructure:"bullet_density"`
	GoneOnCollision bool    `mapstructure:"gone_on_collision"`
}

// Load reads the embedded defaults, merges the file at path over them when
// path is set, then applies STFU_* environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return Config{}, fmt.Errorf("config: read defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: merge %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the embedded configuration.
func Default() Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) Validate() error {
	switch {
	case c.Physics.FixedStep <= 0 || c.Physics.MaxSteps < 1:
		return fmt.Errorf("%w: physics step %v max %d", ErrInvalidConfig, c.Physics.FixedStep, c.Physics.MaxSteps)
	case c.Simulation.PlayerStep <= 0 || c.Simulation.WorldStep <= 0 || c.Simulation.MaxSteps < 1:
		return fmt.Errorf("%w: simulation steps %v/%v max %d", ErrInvalidConfig, c.Simulation.PlayerStep, c.Simulation.WorldStep, c.Simulation.MaxSteps)
	case c.Simulation.Players < 1 || c.Simulation.Players > physics.MaxPlayers:
		return fmt.Errorf("%w: players %d", ErrInvalidConfig, c.Simulation.Players)
	case c.Character.Density <= 0:
		return fmt.Errorf("%w: character density %v", ErrInvalidConfig, c.Character.Density)
	case c.Weapon.MaxBullets < 0:
		return fmt.Errorf("%w: max bullets %d", ErrInvalidConfig, c.Weapon.MaxBullets)
	case c.Weapon.MaxBullets > 0 && (c.Weapon.BulletWidth <= 0 || c.Weapon.BulletHeight <= 0 || c.Weapon.BulletRange <= 0 || c.Weapon.BulletDensity <= 0):
		return fmt.Errorf("%w: bullet %vx%v range %v density %v", ErrInvalidConfig, c.Weapon.BulletWidth, c.Weapon.BulletHeight, c.Weapon.BulletRange, c.Weapon.BulletDensity)
	}
	return nil
}

func (c Config) PhysicsSettings() physics.Settings {
	p := c.Physics
	return physics.Settings{
		Gravity:            p.Gravity,
		VelocityIterations: p.VelocityIterations,
		PositionIterations: p.PositionIterations,
		CollisionSlop:      p.CollisionSlop,
		FixedStep:          p.FixedStep,
		MaxSteps:           p.MaxSteps,
	}
}

func (c Config) CharacterTuning() physics.CharacterTuning {
	ch := c.Character
	return physics.CharacterTuning{
		MaxMotorTorque:        ch.MaxMotorTorque,
		RunSpeed:              ch.RunSpeed,
		AirControlSpeed:       ch.AirControlSpeed,
		AirControlAbility:     ch.AirControlAbility,
		AirStopTime:           ch.AirStopTime,
		JumpSpeed:             ch.JumpSpeed,
		WallJumpImpulse:       ch.WallJumpImpulse,
		TerminalVelocity:      ch.TerminalVelocity,
		SlideTerminalVelocity: ch.SlideTerminalVelocity,
		BrakeSpeed:            ch.BrakeSpeed,
		TorsoFriction:         ch.TorsoFriction,
		HeadFriction:          ch.HeadFriction,
		WheelFriction:         ch.WheelFriction,
		DebounceDelay:         ch.DebounceDelay,
		WallSlide:             ch.WallSlide,
	}
}

func (c Config) PlayerTuning() locomotion.PlayerTuning {
	return locomotion.PlayerTuning(c.Player)
}

func (c Config) EnemyTuning() locomotion.EnemyTuning {
	return locomotion.EnemyTuning(c.Enemy)
}
