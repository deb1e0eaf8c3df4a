package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/user/lotuslake_go/internal/analysis"
	"github.com/user/lotuslake_go/internal/lake"
	"github.com/user/lotuslake_go/internal/parser"
)

// EnvPrefix prefixes the environment variables that override the file.
const EnvPrefix = "LOTUSLAKE"

const (
	DefaultParametersKey = "simulation_parameters"
	DefaultVariablesKey  = "study_parameters"
	DefaultSkipRows      = 100
	DefaultFigureWidth   = 8.0
	DefaultFigureHeight  = 6.0
)

// Config describes one lake study.
type Config struct {
	ProjectName      string               `yaml:"project_name" validate:"required"`
	RootPath         string               `yaml:"root_path" validate:"required"`
	MarkerFile       string               `yaml:"marker_file" validate:"required"`
	OutputDir        string               `yaml:"output_dir" validate:"required"`
	SimulationNumber int                  `yaml:"simulation_number" validate:"gte=0"`
	GridProps        map[string]float64   `yaml:"grid_props,omitempty"`
	ParametersKey    string               `yaml:"parameters_key" validate:"required"`
	VariablesKey     string               `yaml:"variables_key" validate:"required"`
	AllowOverride    bool                 `yaml:"allow_override"`
	Groups           map[string]ColumnMap `yaml:"groups" validate:"required"`
	Signal           SignalConfig         `yaml:"signal"`
	Plot             PlotConfig           `yaml:"plot"`
	Export           ExportConfig         `yaml:"export"`
	Logging          LoggingConfig        `yaml:"logging"`
}

// SignalConfig controls force file post-processing and signal figures.
type SignalConfig struct {
	Layout      string    `yaml:"layout" validate:"oneof=2d 3d"`
	SkipRows    int       `yaml:"skip_rows" validate:"gte=0"`
	Range       []float64 `yaml:"range" validate:"len=2,dive,gte=0,lte=1"`
	ShowViscous bool      `yaml:"show_viscous"`
	PlotStats   bool      `yaml:"plot_stats"`
	WidthIn     float64   `yaml:"width_in" validate:"gt=0"`
	HeightIn    float64   `yaml:"height_in" validate:"gt=0"`
	PDF         bool      `yaml:"pdf"`
}

// PlotConfig selects the study plot drawn from the lake table.
type PlotConfig struct {
	X        string  `yaml:"x"`
	Y        string  `yaml:"y"`
	GroupBy  string  `yaml:"group_by" validate:"required_if=Subplots true"`
	Subplots bool    `yaml:"subplots"`
	WidthIn  float64 `yaml:"width_in" validate:"gt=0"`
	HeightIn float64 `yaml:"height_in" validate:"gt=0"`
	Format   string  `yaml:"format" validate:"oneof=png jpg jpeg pdf svg tif tiff eps"`
	Heatmap  string  `yaml:"heatmap,omitempty"`
}

// ExportConfig selects the table exports written after a run.
type ExportConfig struct {
	CSV    bool `yaml:"csv"`
	XLSX   bool `yaml:"xlsx"`
	Report bool `yaml:"report"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// envOverrides are read from LOTUSLAKE_* variables and win over the file.
type envOverrides struct {
	RootPath   string `envconfig:"ROOT"`
	MarkerFile string `envconfig:"MARKER"`
	OutputDir  string `envconfig:"OUTPUT_DIR"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns a configuration with every optional field set.
func DefaultConfig() *Config {
	return &Config{
		MarkerFile:    lake.DefaultMarkerFile,
		OutputDir:     ".",
		ParametersKey: DefaultParametersKey,
		VariablesKey:  DefaultVariablesKey,
		Signal: SignalConfig{
			Layout:      string(parser.Layout3D),
			SkipRows:    DefaultSkipRows,
			Range:       []float64{analysis.DefaultRange.From, analysis.DefaultRange.To},
			ShowViscous: true,
			PlotStats:   true,
			WidthIn:     10,
			HeightIn:    5,
			PDF:         true,
		},
		Plot: PlotConfig{
			WidthIn:  DefaultFigureWidth,
			HeightIn: DefaultFigureHeight,
			Format:   "png",
		},
		Export:  ExportConfig{CSV: true},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML configuration on top of the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration bytes; see Load.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LOTUSLAKE_* environment variables.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}
	if o.RootPath != "" {
		c.RootPath = o.RootPath
	}
	if o.MarkerFile != "" {
		c.MarkerFile = o.MarkerFile
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.LogLevel != "" {
		c.Logging.Level = strings.ToLower(o.LogLevel)
	}
	return nil
}

// Validate checks field constraints and that the referenced groups exist.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return lake.NewConfigError("invalid configuration: "+strings.Join(msgs, "; "), err)
		}
		return lake.NewConfigError("invalid configuration", err)
	}

	if _, ok := c.Groups[c.ParametersKey]; !ok {
		return lake.NewConfigError("parameters group "+c.ParametersKey, lake.ErrMissingGroup)
	}
	if _, ok := c.Groups[c.VariablesKey]; !ok {
		return lake.NewConfigError("variables group "+c.VariablesKey, lake.ErrMissingGroup)
	}
	if _, err := c.SignalRange(); err != nil {
		return lake.NewConfigError("signal range", err)
	}
	return nil
}

// SignalRange returns the configured stats window.
func (c *Config) SignalRange() (analysis.Range, error) {
	if len(c.Signal.Range) != 2 {
		return analysis.Range{}, fmt.Errorf("range needs two values, got %d", len(c.Signal.Range))
	}
	r := analysis.Range{From: c.Signal.Range[0], To: c.Signal.Range[1]}
	return r, r.Validate()
}

// AnalysisOptions returns the post-processing options for each simulation.
func (c *Config) AnalysisOptions() analysis.Options {
	r, _ := c.SignalRange()
	return analysis.Options{
		Layout:   parser.Layout(c.Signal.Layout),
		SkipRows: c.Signal.SkipRows,
		Range:    r,
	}
}

// Descriptor converts the configuration into a lake descriptor.
func (c *Config) Descriptor() lake.Descriptor {
	groups := make(map[string][]lake.Column, len(c.Groups))
	for name, cols := range c.Groups {
		out := make([]lake.Column, len(cols))
		for i, e := range cols {
			out[i] = lake.Column{Name: e.Name, Key: e.Key}
		}
		groups[name] = out
	}
	return lake.Descriptor{
		ProjectName:      c.ProjectName,
		GridProps:        c.GridProps,
		SimulationNumber: c.SimulationNumber,
		Groups:           groups,
	}
}

// Example returns the gap study configuration written by init-config.
func Example() *Config {
	cfg := DefaultConfig()
	cfg.ProjectName = "Circular cylinder array gap study"
	cfg.RootPath = "gStarStudy_64ppd_re100"
	cfg.GridProps = map[string]float64{"ppd": 64}
	cfg.Groups = map[string]ColumnMap{
		DefaultParametersKey: {{Name: "dimensions", Key: "d"}, {Name: "gap", Key: "g"}},
		DefaultVariablesKey:  {{Name: "lift_mad", Key: "lMad"}, {Name: "drag_mean", Key: "dMean"}},
	}
	cfg.Plot.X = "gap"
	cfg.Plot.Y = "lift_mad"
	cfg.Plot.GroupBy = "dimensions"
	return cfg
}

// Write encodes the configuration as YAML to path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
