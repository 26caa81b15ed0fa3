package prefabs

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("prefabs: invalid config")

const (
	PhysicsFile    = "physics.yaml"
	CharactersFile = "characters.yaml"
)

// LifeLoss decides what a lost life does to score and coins.
type LifeLoss string

const (
	LifeLossReset    LifeLoss = "reset"
	LifeLossPreserve LifeLoss = "preserve"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type WorldSpec struct {
	GridSize        int     `yaml:"grid_size"`
	Cols            int     `yaml:"cols"`
	Rows            int     `yaml:"rows"`
	SpawnX          float64 `yaml:"spawn_x"`
	SpawnY          float64 `yaml:"spawn_y"`
	Lives           int     `yaml:"lives"`
	HistoryCapacity int     `yaml:"history_capacity"`
	Seed            uint64  `yaml:"seed"`
}

type PhysicsSpec struct {
	Gravity          float64 `yaml:"gravity"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`
	JumpSpeed        float64 `yaml:"jump_speed"`
	JumpHoldTicks    int     `yaml:"jump_hold_ticks"`
	RunAccel         float64 `yaml:"run_accel"`
	WalkAccelFactor  float64 `yaml:"walk_accel_factor"`
	AirControl       float64 `yaml:"air_control"`
	GroundFriction   float64 `yaml:"ground_friction"`
	WalkSpeedMax     float64 `yaml:"walk_speed_max"`
	RunSpeedMax      float64 `yaml:"run_speed_max"`
	PMeterMax        int     `yaml:"p_meter_max"`
	PMeterTicks      int     `yaml:"p_meter_ticks"`
	PJumpFactor      float64 `yaml:"p_jump_factor"`
	StompBounce      float64 `yaml:"stomp_bounce"`
}

type EnemySpec struct {
	Speed      float64 `yaml:"speed"`
	JumpSpeed  float64 `yaml:"jump_speed"`
	JumpChance float64 `yaml:"jump_chance"`
}

type PowerupSpec struct {
	Speed float64 `yaml:"speed"`
}

type TimerSpec struct {
	DamageInvincible int `yaml:"damage_invincible"`
	StarInvincible   int `yaml:"star_invincible"`
	AnimTicks        int `yaml:"anim_ticks"`
}

type ScoreSpec struct {
	Stomp   int `yaml:"stomp"`
	Coin    int `yaml:"coin"`
	Powerup int `yaml:"powerup"`
	Brick   int `yaml:"brick"`
}

type PolicySpec struct {
	LifeLoss LifeLoss `yaml:"life_loss"`
}

// CharacterSpec scales the base physics for one playable character.
type CharacterSpec struct {
	Name         string  `yaml:"name"`
	JumpFactor   float64 `yaml:"jump_factor"`
	GravityScale float64 `yaml:"gravity_scale"`
	// FloatGravityScale replaces GravityScale while airborne with jump held.
	FloatGravityScale float64 `yaml:"float_gravity_scale"`
	RunFactor         float64 `yaml:"run_factor"`
}

type CharactersSpec struct {
	Default    string          `yaml:"default"`
	Characters []CharacterSpec `yaml:"characters"`
}

// Config is every tunable constant of the editor and its simulation.
type Config struct {
	World   WorldSpec   `yaml:"world"`
	Physics PhysicsSpec `yaml:"physics"`
	Enemy   EnemySpec   `yaml:"enemy"`
	Powerup PowerupSpec `yaml:"powerup"`
	Timers  TimerSpec   `yaml:"timers"`
	Score   ScoreSpec   `yaml:"score"`
	Policy  PolicySpec  `yaml:"policy"`

	Characters CharactersSpec `yaml:"-"`
}

// LoadConfig reads physics.yaml and characters.yaml and validates them.
func LoadConfig() (Config, error) {
	cfg, err := LoadSpec[Config](PhysicsFile)
	if err != nil {
		return Config{}, err
	}
	chars, err := LoadSpec[CharactersSpec](CharactersFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Characters = chars
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile overlays the physics file at path on top of the built-in
// defaults. Keys missing from the file keep their default value.
func LoadConfigFile(path string) (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("prefabs: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("prefabs: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustDefault returns the embedded configuration and panics if it is broken.
func MustDefault() Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	w := c.World
	check(w.GridSize > 0, "world.grid_size must be positive, got %d", w.GridSize)
	check(w.Cols > 0 && w.Rows > 0, "world size must be positive, got %dx%d", w.Cols, w.Rows)
	check(w.Lives > 0, "world.lives must be positive, got %d", w.Lives)
	check(w.HistoryCapacity > 0, "world.history_capacity must be positive, got %d", w.HistoryCapacity)
	if w.GridSize > 0 {
		check(w.SpawnX >= 0 && w.SpawnX+float64(w.GridSize) <= float64(w.Cols*w.GridSize), "world.spawn_x %v outside the level", w.SpawnX)
		check(w.SpawnY >= 0 && w.SpawnY+float64(w.GridSize) <= float64(w.Rows*w.GridSize), "world.spawn_y %v outside the level", w.SpawnY)
	}

	p := c.Physics
	check(p.Gravity > 0, "physics.gravity must be positive, got %v", p.Gravity)
	check(p.TerminalVelocity > 0, "physics.terminal_velocity must be positive, got %v", p.TerminalVelocity)
	check(p.JumpSpeed > 0, "physics.jump_speed must be positive, got %v", p.JumpSpeed)
	check(p.JumpHoldTicks >= 0, "physics.jump_hold_ticks must not be negative, got %d", p.JumpHoldTicks)
	check(p.RunAccel > 0, "physics.run_accel must be positive, got %v", p.RunAccel)
	check(p.WalkAccelFactor > 0 && p.WalkAccelFactor <= 1, "physics.walk_accel_factor must be in (0,1], got %v", p.WalkAccelFactor)
	check(p.AirControl >= 0 && p.AirControl <= 1, "physics.air_control must be in [0,1], got %v", p.AirControl)
	check(p.GroundFriction >= 0, "physics.ground_friction must not be negative, got %v", p.GroundFriction)
	check(p.WalkSpeedMax > 0, "physics.walk_speed_max must be positive, got %v", p.WalkSpeedMax)
	check(p.RunSpeedMax >= p.WalkSpeedMax, "physics.run_speed_max %v below walk_speed_max %v", p.RunSpeedMax, p.WalkSpeedMax)
	check(p.PMeterMax > 0, "physics.p_meter_max must be positive, got %d", p.PMeterMax)
	check(p.PMeterTicks > 0, "physics.p_meter_ticks must be positive, got %d", p.PMeterTicks)
	check(p.PJumpFactor >= 1, "physics.p_jump_factor must be at least 1, got %v", p.PJumpFactor)
	check(p.StompBounce >= 0, "physics.stomp_bounce must not be negative, got %v", p.StompBounce)

	check(c.Enemy.Speed >= 0, "enemy.speed must not be negative, got %v", c.Enemy.Speed)
	check(c.Enemy.JumpSpeed >= 0, "enemy.jump_speed must not be negative, got %v", c.Enemy.JumpSpeed)
	check(c.Enemy.JumpChance >= 0 && c.Enemy.JumpChance <= 1, "enemy.jump_chance must be in [0,1], got %v", c.Enemy.JumpChance)
	check(c.Powerup.Speed >= 0, "powerup.speed must not be negative, got %v", c.Powerup.Speed)

	check(c.Timers.DamageInvincible >= 0, "timers.damage_invincible must not be negative, got %d", c.Timers.DamageInvincible)
	check(c.Timers.StarInvincible >= 0, "timers.star_invincible must not be negative, got %d", c.Timers.StarInvincible)
	check(c.Timers.AnimTicks > 0, "timers.anim_ticks must be positive, got %d", c.Timers.AnimTicks)

	check(c.Policy.LifeLoss == LifeLossReset || c.Policy.LifeLoss == LifeLossPreserve, "policy.life_loss must be %q or %q, got %q", LifeLossReset, LifeLossPreserve, c.Policy.LifeLoss)

	seen := make(map[string]bool, len(c.Characters.Characters))
	for _, ch := range c.Characters.Characters {
		check(ch.Name != "" && !seen[ch.Name], "character name %q is empty or repeated", ch.Name)
		seen[ch.Name] = true
		check(ch.JumpFactor > 0 && ch.GravityScale > 0 && ch.FloatGravityScale > 0 && ch.RunFactor > 0, "character %q factors must be positive", ch.Name)
	}
	if len(c.Characters.Characters) > 0 {
		check(seen[c.Characters.Default], "default character %q is not defined", c.Characters.Default)
	}

	return errors.Join(errs...)
}

// Character looks up a character by name. An empty name selects the
// default. Configs without characters fall back to unscaled physics.
func (c Config) Character(name string) (CharacterSpec, error) {
	if name == "" {
		name = c.Characters.Default
	}
	if len(c.Characters.Characters) == 0 && name == "" {
		return CharacterSpec{Name: "default", JumpFactor: 1, GravityScale: 1, FloatGravityScale: 1, RunFactor: 1}, nil
	}
	for _, ch := range c.Characters.Characters {
		if ch.Name == name {
			return ch, nil
		}
	}
	return CharacterSpec{}, fmt.Errorf("%w: unknown character %q", ErrInvalidConfig, name)
}

// CharacterNames lists characters in file order.
func (c Config) CharacterNames() []string {
	names := make([]string, 0, len(c.Characters.Characters))
	for _, ch := range c.Characters.Characters {
		names = append(names, ch.Name)
	}
	return names
}
