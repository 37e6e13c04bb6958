package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
)

//go:embed config.schema.json
var configSchema string

type Config struct {
	// Engine parameters, fixed for the life of the world
	Flock flock.Config `json:"flock" toml:"flock"`

	// Window Dimensions, the unit torus is stretched over them
	WindowWidth  int `json:"windowWidth" toml:"windowWidth"`
	WindowHeight int `json:"windowHeight" toml:"windowHeight"`

	// TimeStep is the simulated time, in seconds, of one tick
	TimeStep float64 `json:"timeStep" toml:"timeStep"`

	// Debug overlay: force and velocity of every boid, in pixels per unit
	DebugVectors     bool    `json:"debugVectors" toml:"debugVectors"`
	DebugVectorScale float64 `json:"debugVectorScale" toml:"debugVectorScale"`
}

func DefaultConfig() *Config {
	return &Config{
		Flock:            flock.DefaultConfig(),
		WindowWidth:      800,
		WindowHeight:     800,
		TimeStep:         1.0 / 60,
		DebugVectors:     false,
		DebugVectorScale: 200,
	}
}

// Validate checks the engine parameters and the host ones.
func (c *Config) Validate() error {
	if err := c.Flock.Validate(); err != nil {
		return err
	}
	switch {
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return fmt.Errorf("window must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	case !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0):
		return fmt.Errorf("timeStep must be a positive number of seconds, got %v", c.TimeStep)
	case c.DebugVectorScale < 0:
		return fmt.Errorf("debugVectorScale must be >= 0, got %v", c.DebugVectorScale)
	}
	return nil
}

// Tick returns the message that advances the world by one TimeStep.
func (c *Config) Tick() *durationpb.Duration {
	return durationpb.New(time.Duration(math.Round(c.TimeStep * float64(time.Second))))
}

// LoadConfig reads a JSON or TOML file over the defaults.
// JSON files are validated against schemaFile, or against the embedded schema
// when schemaFile is empty. An empty configFile yields the defaults.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		return cfg, cfg.Validate()
	}

	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
	case ".json":
		if err := loadJSON(configFile, schemaFile, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .json or .toml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadJSON(configFile, schemaFile string, cfg *Config) error {
	// 1. Compile Schema
	var sch *jsonschema.Schema
	var err error
	if schemaFile != "" {
		sch, err = jsonschema.Compile(schemaFile)
	} else {
		sch, err = jsonschema.CompileString("config.schema.json", configSchema)
	}
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File once, it is decoded twice
	b, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	if err := json.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
