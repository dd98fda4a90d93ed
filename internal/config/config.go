package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the pdfdiff run configuration.
type Config struct {
	OldDocumentsDir  string        `yaml:"old_documents_dir"`
	NewDocumentsDir  string        `yaml:"new_documents_dir"`
	OutputDir        string        `yaml:"output_dir"`
	RenderScale      float64       `yaml:"render_scale"`
	TintColor        []int         `yaml:"tint_color"`
	OverlayOpacity   *float64      `yaml:"overlay_opacity"`
	LabelFontSize    float64       `yaml:"label_font_size"` // points, scaled by render_scale
	LineTolerance    float64       `yaml:"line_tolerance"`
	WordXTolerance   float64       `yaml:"word_x_tolerance"`
	WordYTolerance   float64       `yaml:"word_y_tolerance"`
	WorkerCount      int           `yaml:"worker_count"`
	BatchSize        int           `yaml:"batch_size"`
	HighlightRegions bool          `yaml:"highlight_regions"`
	Output           OutputConfig  `yaml:"output"`
	ReportDB         string        `yaml:"report_db"`
	MetricsFile      string        `yaml:"metrics_file"`
	Logging          LoggingConfig `yaml:"logging"`
}

// OutputConfig holds artifact settings.
type OutputConfig struct {
	JPEGQuality int   `yaml:"jpeg_quality"`
	PDF         *bool `yaml:"pdf"` // default: true
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // prod, dev, local (default: local)
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.OldDocumentsDir == "" {
		c.OldDocumentsDir = "Old_Documents"
	}
	if c.NewDocumentsDir == "" {
		c.NewDocumentsDir = "New_Documents"
	}
	if c.OutputDir == "" {
		c.OutputDir = "Output"
	}
	if c.RenderScale == 0 {
		c.RenderScale = 4.0
	}
	if len(c.TintColor) == 0 {
		c.TintColor = []int{170, 51, 106}
	}
	if c.OverlayOpacity == nil {
		v := 0.5
		c.OverlayOpacity = &v
	}
	if c.LabelFontSize == 0 {
		c.LabelFontSize = 12
	}
	if c.LineTolerance == 0 {
		c.LineTolerance = 2.0
	}
	if c.WordXTolerance == 0 {
		c.WordXTolerance = 3.0
	}
	if c.WordYTolerance == 0 {
		c.WordYTolerance = 3.0
	}
	if c.WorkerCount == 0 {
		c.WorkerCount = runtime.NumCPU()
	}
	if c.BatchSize == 0 {
		c.BatchSize = 16
	}
	if c.Output.JPEGQuality == 0 {
		c.Output.JPEGQuality = 85
	}
	if c.Output.PDF == nil {
		v := true
		c.Output.PDF = &v
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if !(c.RenderScale > 0) || math.IsInf(c.RenderScale, 0) {
		return fmt.Errorf("render_scale must be > 0, got %v", c.RenderScale)
	}
	if len(c.TintColor) != 3 {
		return fmt.Errorf("tint_color must have 3 components, got %d", len(c.TintColor))
	}
	for i, v := range c.TintColor {
		if v < 0 || v > 255 {
			return fmt.Errorf("tint_color[%d] must be between 0 and 255, got %d", i, v)
		}
	}
	if o := c.Opacity(); math.IsNaN(o) || o < 0 || o > 1 {
		return fmt.Errorf("overlay_opacity must be between 0 and 1, got %v", o)
	}
	if !(c.LabelFontSize > 0) {
		return fmt.Errorf("label_font_size must be > 0, got %v", c.LabelFontSize)
	}
	if !(c.LineTolerance > 0) {
		return fmt.Errorf("line_tolerance must be > 0, got %v", c.LineTolerance)
	}
	if !(c.WordXTolerance > 0) || !(c.WordYTolerance > 0) {
		return fmt.Errorf("word_x_tolerance and word_y_tolerance must be > 0, got %v, %v", c.WordXTolerance, c.WordYTolerance)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker_count must be > 0, got %d", c.WorkerCount)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0, got %d", c.BatchSize)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100, got %d", c.Output.JPEGQuality)
	}
	if c.OutputDir == c.OldDocumentsDir || c.OutputDir == c.NewDocumentsDir {
		return fmt.Errorf("output_dir %q must differ from the input directories", c.OutputDir)
	}
	return nil
}

// Opacity returns the overlay opacity.
func (c *Config) Opacity() float64 {
	if c.OverlayOpacity == nil {
		return 0.5
	}
	return *c.OverlayOpacity
}

// PDFOutput reports whether a diff PDF is assembled per pair.
func (c *Config) PDFOutput() bool {
	return c.Output.PDF == nil || *c.Output.PDF
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
