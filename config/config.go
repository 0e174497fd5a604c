// Package config provides configuration loading and access for the terrain pipeline.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/terrain/imageio"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Generator kinds.
const (
	KindDiamondSquare = "diamond_square"
	KindSimplex       = "simplex"
	KindVoronoi       = "voronoi"
	KindImage         = "image"
)

// Filter names accepted in the filters list.
const (
	FilterThermal   = "thermal"
	FilterHydraulic = "hydraulic"
	FilterStrata    = "strata"
)

// Config holds all pipeline configuration parameters.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Input     InputConfig     `yaml:"input"`
	Filters   []string        `yaml:"filters"` // applied in order
	Thermal   ThermalConfig   `yaml:"thermal"`
	Hydraulic HydraulicConfig `yaml:"hydraulic"`
	Strata    StrataConfig    `yaml:"strata"`
	Executor  ExecutorConfig  `yaml:"executor"`
	Output    OutputConfig    `yaml:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GeneratorConfig selects and parameterizes the source heightmap.
type GeneratorConfig struct {
	Kind         string        `yaml:"kind"`          // diamond_square, simplex, voronoi or image
	SizeExponent int           `yaml:"size_exponent"` // grid side is 2^n+1
	Roughness    float64       `yaml:"roughness"`     // diamond-square displacement decay
	Seed         int64         `yaml:"seed"`          // 0 = derive from time at the CLI
	Simplex      SimplexConfig `yaml:"simplex"`
	Voronoi      VoronoiConfig `yaml:"voronoi"`
}

// SimplexConfig holds fBm noise parameters.
type SimplexConfig struct {
	Scale      float64 `yaml:"scale"`      // Base noise frequency
	Octaves    int     `yaml:"octaves"`    // FBM octaves (detail level)
	Lacunarity float64 `yaml:"lacunarity"` // Frequency multiplier per octave
	Gain       float64 `yaml:"gain"`       // Amplitude multiplier per octave
}

// VoronoiConfig holds feature point settings.
type VoronoiConfig struct {
	Points int `yaml:"points"`
}

// InputConfig holds settings for the image generator.
type InputConfig struct {
	Path     string `yaml:"path"`
	Resample int    `yaml:"resample"` // 0 keeps the cropped side
}

// ThermalConfig holds thermal erosion parameters.
type ThermalConfig struct {
	Iterations   int     `yaml:"iterations"`
	Power        float64 `yaml:"power"`
	TalusAngle   float64 `yaml:"talus_angle"`
	Neighborhood string  `yaml:"neighborhood"` // von_neumann or moore
	Tiled        bool    `yaml:"tiled"`        // run each pass through the executor
}

// HydraulicConfig holds hydraulic erosion parameters.
type HydraulicConfig struct {
	Iterations  int     `yaml:"iterations"`
	Rainfall    float64 `yaml:"rainfall"`
	Solubility  float64 `yaml:"solubility"`
	Capacity    float64 `yaml:"capacity"`
	Evaporation float64 `yaml:"evaporation"`
}

// StrataConfig holds terracing parameters.
type StrataConfig struct {
	Levels float64 `yaml:"levels"`
}

// ExecutorConfig holds tiled executor parameters.
type ExecutorConfig struct {
	Workers  int `yaml:"workers"`   // 0 = one per CPU
	TileEdge int `yaml:"tile_edge"` // tile side length in cells
}

// OutputConfig holds output locations.
type OutputConfig struct {
	Path         string `yaml:"path"`
	BitDepth     string `yaml:"bit_depth"` // float, 8, 16 or 32
	TelemetryDir string `yaml:"telemetry_dir"`
	SnapshotDir  string `yaml:"snapshot_dir"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Side    int // 2^SizeExponent+1, after clamping the exponent
	Workers int // effective executor worker count
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

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
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
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects unknown generator kinds and filter names, and an output
// bit depth the output format cannot hold.
func (c *Config) Validate() error {
	switch c.Generator.Kind {
	case KindDiamondSquare, KindSimplex, KindVoronoi:
	case KindImage:
		if c.Input.Path == "" {
			return fmt.Errorf("config: generator %q needs input.path", KindImage)
		}
	default:
		return fmt.Errorf("config: unknown generator kind %q", c.Generator.Kind)
	}
	for i, name := range c.Filters {
		switch strings.ToLower(name) {
		case FilterThermal, FilterHydraulic, FilterStrata:
		default:
			return fmt.Errorf("config: filters[%d]: unknown filter %q", i, name)
		}
	}

	depth, err := imageio.ParseBitDepth(c.Output.BitDepth)
	if err != nil {
		return fmt.Errorf("config: output.bit_depth: %w", err)
	}
	format, err := imageio.FormatFromPath(c.Output.Path)
	if err != nil {
		return fmt.Errorf("config: output.path: %w", err)
	}
	if err := imageio.CheckEncodable(depth, format); err != nil {
		return fmt.Errorf("config: output: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	exp := max(1, min(13, c.Generator.SizeExponent))
	c.Derived.Side = 1<<exp + 1

	c.Derived.Workers = c.Executor.Workers
	if c.Derived.Workers <= 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
	for i, name := range c.Filters {
		c.Filters[i] = strings.ToLower(name)
	}
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
