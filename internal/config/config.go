// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GridConfig sets the bounded search area dimensions.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SimulationConfig is the root configuration for one search-and-rescue run.
// All options take effect at initialization only.
type SimulationConfig struct {
	Grid         GridConfig `yaml:"grid"`
	Drones       int        `yaml:"num_drones"`
	Victims      int        `yaml:"num_victims"`
	Hubs         int        `yaml:"num_hubs"`
	Obstacles    int        `yaml:"num_obstacles"`
	MaxBattery   int        `yaml:"max_battery"`
	SensorProb   float64    `yaml:"sensor_success_probability"`
	CommRadius   int        `yaml:"communication_radius"`
	RandomSeed   string     `yaml:"random_seed"`
	VictimHealth float64    `yaml:"victim_health"`
	DecayRate    float64    `yaml:"victim_decay_rate"`
	LowBattery   float64    `yaml:"low_battery_fraction"`
	RechargeRate int        `yaml:"recharge_rate"`
	MaxTicks     int        `yaml:"max_ticks"`
	StopRescued  bool       `yaml:"stop_when_all_rescued"`
}

// Defaults mirror the reference model: 20x20 area, health 100 with 0.5 decay
// per tick, low-battery threshold at 25% of capacity.
func (c *SimulationConfig) applyDefaults() {
	if c.Grid.Width == 0 {
		c.Grid.Width = 20
	}
	if c.Grid.Height == 0 {
		c.Grid.Height = 20
	}
	if c.VictimHealth == 0 {
		c.VictimHealth = 100
	}
	if c.DecayRate == 0 {
		c.DecayRate = 0.5
	}
	if c.LowBattery == 0 {
		c.LowBattery = 0.25
	}
	if c.RechargeRate == 0 {
		c.RechargeRate = 20
	}
}

// Validate rejects out-of-range options with a descriptive error. Values are
// never clamped; a bad config fails initialization.
func (c *SimulationConfig) Validate() error {
	if c.Grid.Width < 5 || c.Grid.Height < 5 {
		return fmt.Errorf("grid must be at least 5x5, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Drones < 1 || c.Drones > 30 {
		return fmt.Errorf("num_drones must be in [1,30], got %d", c.Drones)
	}
	if c.Victims < 0 || c.Victims > 50 {
		return fmt.Errorf("num_victims must be in [0,50], got %d", c.Victims)
	}
	if c.Hubs < 1 || c.Hubs > 4 {
		return fmt.Errorf("num_hubs must be in [1,4], got %d", c.Hubs)
	}
	if c.Obstacles < 0 || c.Obstacles > 200 {
		return fmt.Errorf("num_obstacles must be in [0,200], got %d", c.Obstacles)
	}
	if c.MaxBattery < 10 || c.MaxBattery > 300 {
		return fmt.Errorf("max_battery must be in [10,300], got %d", c.MaxBattery)
	}
	if c.SensorProb < 0.1 || c.SensorProb > 1.0 {
		return fmt.Errorf("sensor_success_probability must be in [0.1,1.0], got %g", c.SensorProb)
	}
	if c.CommRadius < 0 || c.CommRadius > 6 {
		return fmt.Errorf("communication_radius must be in [0,6], got %d", c.CommRadius)
	}
	if c.DecayRate < 0 {
		return fmt.Errorf("victim_decay_rate must not be negative, got %g", c.DecayRate)
	}
	if c.LowBattery < 0 || c.LowBattery >= 1 {
		return fmt.Errorf("low_battery_fraction must be in [0,1), got %g", c.LowBattery)
	}
	if c.RechargeRate < 1 {
		return fmt.Errorf("recharge_rate must be at least 1, got %d", c.RechargeRate)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("max_ticks must not be negative, got %d", c.MaxTicks)
	}
	cells := c.Grid.Width * c.Grid.Height
	if c.Obstacles+c.Hubs+c.Victims > cells {
		return fmt.Errorf("grid capacity exceeded: %d obstacles + %d hubs + %d victims > %d cells",
			c.Obstacles, c.Hubs, c.Victims, cells)
	}
	if _, err := c.SeedValue(); err != nil {
		return err
	}
	return nil
}

// SeedValue parses random_seed. The literal "random" (or an empty value)
// requests a non-reproducible run; callers substitute an entropy seed then.
func (c *SimulationConfig) SeedValue() (int64, error) {
	if !c.Seeded() {
		return 0, nil
	}
	v, err := strconv.ParseInt(c.RandomSeed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("random_seed must be an integer or \"random\", got %q", c.RandomSeed)
	}
	return v, nil
}

// Seeded reports whether an explicit seed was configured.
func (c *SimulationConfig) Seeded() bool {
	return c.RandomSeed != "" && c.RandomSeed != "random"
}

// Load loads YAML config, validates it against a CUE schema, applies
// defaults, and range-checks the result.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
