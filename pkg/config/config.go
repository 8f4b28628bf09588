package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kacperjurak/goarraycore/pkg/models"
)

// ArrayFlags collects repeated float flags, e.g. -g 0.2 -g 0.4.
type ArrayFlags []float64

func (a *ArrayFlags) String() string {
	return "ArrayFlags"
}

func (a *ArrayFlags) Set(value string) error {
	if val, err := strconv.ParseFloat(value, 64); err == nil {
		*a = append(*a, val)
		return nil
	} else {
		return err
	}
}

// Config holds all configuration settings for the field solver
type Config struct {
	Field models.FieldRequest `yaml:"field"`
	// Gap multiples, in wavelengths, swept by the CLI.
	Gaps            ArrayFlags `yaml:"gaps"`
	ImgOut          bool       `yaml:"img_out"`
	ImgSize         uint       `yaml:"img_size"`
	Concurrency     bool       `yaml:"concurrency"`
	Threads         uint       `yaml:"threads"`
	Quiet           bool       `yaml:"quiet"`
	HTTPServer      bool       `yaml:"http_server"`
	EnableProfiling bool       `yaml:"enable_profiling"`
	// TimingFile receives one CSV row of batch statistics per batch.
	TimingFile string `yaml:"timing_file"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string `yaml:"port"`
	WorkerCount     int    `yaml:"worker_count"`
	WebhookURL      string `yaml:"webhook_url"`
	EnableMetrics   bool   `yaml:"enable_metrics"`
	EnableProfiling bool   `yaml:"enable_profiling"`
	ProfilingPort   string `yaml:"profiling_port"`
}

// DefaultConfig returns a configuration with sensible defaults: a six-ring
// 9.5 mm probe at 4 MHz in water focused at 10 mm.
func DefaultConfig() *Config {
	return &Config{
		Field: models.FieldRequest{
			Frequency:      4e6,
			SoundSpeed:     1500,
			Velocity:       1e3,
			Pressure:       1e3,
			OuterRadius:    9.5e-3,
			GapWavelengths: 0.5,
			Rings:          6,
			Focal:          10e-3,
			Mode:           "angular",
			AngleGrid:      models.Range{Start: -math.Pi / 10, Stop: math.Pi / 10, Steps: 201},
			Distance:       10e-3,
			DistanceGrid:   models.Range{Start: 1e-3, Stop: 40e-3, Steps: 400},
			FocusMethod:    "nelder-mead",
		},
		Threads:    5,
		ImgSize:    6,
		Quiet:      false,
		HTTPServer: false,
	}
}

// DefaultServerConfig returns server configuration with sensible defaults
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            "8080",
		WorkerCount:     5,
		WebhookURL:      "http://webplot:3001/webhook",
		EnableMetrics:   true,
		EnableProfiling: false,
		ProfilingPort:   "6060",
	}
}

type fileConfig struct {
	Solver *Config       `yaml:"solver"`
	Server *ServerConfig `yaml:"server"`
}

// Load overlays a YAML file on the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, *ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{
		Solver: DefaultConfig(),
		Server: DefaultServerConfig(),
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}
	return fc.Solver, fc.Server, nil
}

// PathFromArgs finds the value of -config in raw command line arguments so
// the file can be loaded before the remaining flags override it.
func PathFromArgs(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// LoadFromArgs loads the file named by -config, or the defaults when absent.
func LoadFromArgs(args []string) (*Config, *ServerConfig, error) {
	path := PathFromArgs(args)
	if path == "" {
		return DefaultConfig(), DefaultServerConfig(), nil
	}
	return Load(path)
}
