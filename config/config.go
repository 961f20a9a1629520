// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Arena      ArenaConfig      `yaml:"arena"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Robot      RobotConfig      `yaml:"robot"`
	Projectile ProjectileConfig `yaml:"projectile"`
	Damage     DamageConfig     `yaml:"damage"`
	Fire       FireConfig       `yaml:"fire"`
	Reload     ReloadConfig     `yaml:"reload"`
	Sensors    SensorsConfig    `yaml:"sensors"`
	Buff       BuffConfig       `yaml:"buff"`
	Supply     SupplyConfig     `yaml:"supply"`
	Reward     RewardConfig     `yaml:"reward"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// Rect is an axis-aligned rectangle in metres, anchored at its lower-left corner.
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Contains reports whether (x, y) lies inside the rectangle (edges inclusive).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// ArenaConfig holds the battlefield dimensions and static obstacles.
type ArenaConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	WallThickness float64 `yaml:"wall_thickness"`
	Obstacles     []Rect  `yaml:"obstacles"`
}

// PhysicsConfig holds the fixed-timestep solver settings.
type PhysicsConfig struct {
	FPS                int     `yaml:"fps"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	GridCellSize       float64 `yaml:"grid_cell_size"`
	LinearSlop         float64 `yaml:"linear_slop"` // touching tolerance for contact begin
}

// RobotConfig holds chassis, turret and rule parameters shared by both robots.
type RobotConfig struct {
	MaxHealth           int     `yaml:"max_health"`
	InitialAmmo         int     `yaml:"initial_ammo"`
	ReloadOpportunities int     `yaml:"reload_opportunities"` // value restored on every refresh
	SupplyAmount        int     `yaml:"supply_amount"`        // ammo granted per consumed opportunity
	Radius              float64 `yaml:"radius"`
	MaxSpeed            float64 `yaml:"max_speed"`         // m/s at forward_back = 1
	MaxLateralSpeed     float64 `yaml:"max_lateral_speed"` // m/s at lateral = 1
	MaxAngularSpeed     float64 `yaml:"max_angular_speed"` // rad/s at angular = 1
	MaxAccel            float64 `yaml:"max_accel"`         // m/s^2, 0 = instant
	TurretRate          float64 `yaml:"turret_rate"`       // rad/s, 0 = snap to target
	MuzzleOffset        float64 `yaml:"muzzle_offset"`
	LinearDamping       float64 `yaml:"linear_damping"`
}

// ProjectileConfig holds bullet parameters.
type ProjectileConfig struct {
	Speed  float64 `yaml:"speed"`
	Radius float64 `yaml:"radius"`
}

// DamageConfig holds health deductions per contact type.
type DamageConfig struct {
	Bullet       int `yaml:"bullet"`
	BulletBuffed int `yaml:"bullet_buffed"`
	Collision    int `yaml:"collision"`
}

// FireConfig holds the shooting duty cycle.
type FireConfig struct {
	RateHz    int `yaml:"rate_hz"`    // gate opens fps/rate_hz ticks apart
	GatePhase int `yaml:"gate_phase"` // tick residue on which the gate is open
}

// ReloadConfig holds the reload-opportunity refresh cadence.
type ReloadConfig struct {
	IntervalSec int `yaml:"interval_sec"`
}

// SensorsConfig holds the ray fan used for perception.
type SensorsConfig struct {
	RayStartDeg int     `yaml:"ray_start_deg"`
	RayEndDeg   int     `yaml:"ray_end_deg"` // exclusive
	RayStepDeg  int     `yaml:"ray_step_deg"`
	RayOffset   float64 `yaml:"ray_offset"` // ray origin distance ahead of the robot centre
	Range       float64 `yaml:"range"`
}

// ZoneConfig places a team-owned rectangular zone.
type ZoneConfig struct {
	Team int     `yaml:"team"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	W    float64 `yaml:"w"`
	H    float64 `yaml:"h"`
}

// Rect returns the zone rectangle.
func (z ZoneConfig) Rect() Rect {
	return Rect{X: z.X, Y: z.Y, W: z.W, H: z.H}
}

// BuffConfig holds defence buff zone parameters.
type BuffConfig struct {
	DwellSec    float64      `yaml:"dwell_sec"`
	DurationSec float64      `yaml:"duration_sec"`
	Zones       []ZoneConfig `yaml:"zones"`
}

// SupplyConfig holds ammunition supply zone parameters.
type SupplyConfig struct {
	Enabled bool         `yaml:"enabled"`
	Zones   []ZoneConfig `yaml:"zones"`
}

// RewardConfig holds reward shaping parameters.
type RewardConfig struct {
	HealthScale float64 `yaml:"health_scale"`
	DetectBonus float64 `yaml:"detect_bonus"`
}

// SpawnConfig holds the safe spawn catalog and its pairing table.
type SpawnConfig struct {
	Positions [][2]float64 `yaml:"positions"`
	Adjacency [][]int      `yaml:"adjacency"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int  `yaml:"perf_window"`
	Digest     bool `yaml:"digest"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT             float64 // 1 / fps
	FireInterval   int     // ticks between fire gate openings
	ReloadInterval int     // ticks between reload-opportunity refreshes
	ScanRays       int     // rays per scan
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints and recomputes derived values.
// Call it again after mutating a loaded config.
func (c *Config) Validate() error {
	var errs []error
	if c.Physics.FPS <= 0 {
		errs = append(errs, fmt.Errorf("physics.fps must be positive, got %d", c.Physics.FPS))
	}
	if c.Fire.RateHz <= 0 || (c.Physics.FPS > 0 && c.Physics.FPS/c.Fire.RateHz < 1) {
		errs = append(errs, fmt.Errorf("fire.rate_hz %d incompatible with fps %d", c.Fire.RateHz, c.Physics.FPS))
	}
	if c.Fire.GatePhase < 0 {
		errs = append(errs, fmt.Errorf("fire.gate_phase must not be negative, got %d", c.Fire.GatePhase))
	}
	if c.Reload.IntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("reload.interval_sec must be positive, got %d", c.Reload.IntervalSec))
	}
	if c.Sensors.RayStepDeg <= 0 || c.Sensors.RayEndDeg <= c.Sensors.RayStartDeg {
		errs = append(errs, fmt.Errorf("sensors ray fan [%d, %d) step %d is empty",
			c.Sensors.RayStartDeg, c.Sensors.RayEndDeg, c.Sensors.RayStepDeg))
	}
	if c.Reward.HealthScale == 0 {
		errs = append(errs, errors.New("reward.health_scale must be non-zero"))
	}
	if len(c.Spawn.Positions) == 0 {
		errs = append(errs, errors.New("spawn.positions is empty"))
	}
	if len(c.Spawn.Adjacency) != len(c.Spawn.Positions) {
		errs = append(errs, fmt.Errorf("spawn.adjacency has %d rows, want %d",
			len(c.Spawn.Adjacency), len(c.Spawn.Positions)))
	}
	for i, row := range c.Spawn.Adjacency {
		if len(row) == 0 {
			errs = append(errs, fmt.Errorf("spawn.adjacency[%d] is empty", i))
		}
		for _, j := range row {
			if j < 0 || j >= len(c.Spawn.Positions) {
				errs = append(errs, fmt.Errorf("spawn.adjacency[%d] references %d out of range", i, j))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = 1.0 / float64(c.Physics.FPS)
	c.Derived.FireInterval = c.Physics.FPS / c.Fire.RateHz
	c.Derived.ReloadInterval = c.Reload.IntervalSec * c.Physics.FPS

	span := c.Sensors.RayEndDeg - c.Sensors.RayStartDeg
	c.Derived.ScanRays = int(math.Ceil(float64(span) / float64(c.Sensors.RayStepDeg)))
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Arena.Obstacles = append([]Rect(nil), c.Arena.Obstacles...)
	out.Buff.Zones = append([]ZoneConfig(nil), c.Buff.Zones...)
	out.Supply.Zones = append([]ZoneConfig(nil), c.Supply.Zones...)
	out.Spawn.Positions = append([][2]float64(nil), c.Spawn.Positions...)
	out.Spawn.Adjacency = make([][]int, len(c.Spawn.Adjacency))
	for i, row := range c.Spawn.Adjacency {
		out.Spawn.Adjacency[i] = append([]int(nil), row...)
	}
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
