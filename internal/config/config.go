package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/extrema/internal/calculus"
	"github.com/san-kum/extrema/internal/logging"
)

const (
	DefaultFunction    = "x^2 - 4x"
	DefaultCurveStep   = 0.1
	DefaultPlotWidth   = 72
	DefaultPlotHeight  = 16
	DefaultDataDir     = "runs"
	DefaultLogLevel    = "warn"
	DefaultMaxIter     = calculus.DefaultMaxIterations
	DefaultScanStep    = calculus.DefaultStep
	DefaultScanTol     = calculus.DefaultTolerance
	DefaultRangeLo     = calculus.DefaultLo
	DefaultRangeHi     = calculus.DefaultHi
	DefaultVariable    = calculus.DefaultVariable
	DefaultPlotEnabled = true
)

type Config struct {
	Function string             `yaml:"function"`
	Range    RangeConfig        `yaml:"range"`
	Search   SearchConfig       `yaml:"search"`
	Scope    map[string]float64 `yaml:"scope,omitempty"`
	Plot     PlotConfig         `yaml:"plot"`
	Log      logging.Config     `yaml:"log"`
	DataDir  string             `yaml:"data_dir"`
}

type RangeConfig struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

type SearchConfig struct {
	Step                 float64 `yaml:"step"`
	Tolerance            float64 `yaml:"tolerance"`
	ConvergenceTolerance float64 `yaml:"convergence_tolerance,omitempty"`
	MaxIterations        int     `yaml:"max_iterations"`
	Variable             string  `yaml:"variable"`
}

type PlotConfig struct {
	Enabled bool    `yaml:"enabled"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	Step    float64 `yaml:"step"`
}

func DefaultConfig() *Config {
	return &Config{
		Function: DefaultFunction,
		Range:    RangeConfig{Lo: DefaultRangeLo, Hi: DefaultRangeHi},
		Search: SearchConfig{
			Step:          DefaultScanStep,
			Tolerance:     DefaultScanTol,
			MaxIterations: DefaultMaxIter,
			Variable:      DefaultVariable,
		},
		Plot: PlotConfig{
			Enabled: DefaultPlotEnabled,
			Width:   DefaultPlotWidth,
			Height:  DefaultPlotHeight,
			Step:    DefaultCurveStep,
		},
		Log: logging.Config{
			Level: DefaultLogLevel,
		},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg; keys absent from the file
// keep their current values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Interval() calculus.Interval {
	return calculus.Interval{Lo: c.Range.Lo, Hi: c.Range.Hi}
}

func (c *Config) SetInterval(iv calculus.Interval) {
	c.Range = RangeConfig{Lo: iv.Lo, Hi: iv.Hi}
}

// FinderConfig maps the search section onto the finder's knobs. Zero values
// fall back to the finder defaults.
func (c *Config) FinderConfig() calculus.Config {
	return calculus.Config{
		Step:                 c.Search.Step,
		Tolerance:            c.Search.Tolerance,
		ConvergenceTolerance: c.Search.ConvergenceTolerance,
		MaxIterations:        c.Search.MaxIterations,
		Variable:             c.Search.Variable,
	}
}

// Apply copies a preset's function and range onto c.
func (c *Config) Apply(p *Preset) {
	c.Function = p.Function
	c.Range = p.Range
}
