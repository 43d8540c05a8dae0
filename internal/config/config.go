// Package config provides configuration helpers for objectwatch commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

// Environment variables read by the command.
const (
	EnvModel      = "OBJECTWATCH_MODEL"
	EnvLogLevel   = "LOG_LEVEL"
	EnvResolution = "OBJECTWATCH_RESOLUTION"
)

// Defaults used when neither a flag nor the environment sets a value.
const (
	DefaultModelPath  = "models/yolov8n.onnx"
	DefaultLogLevel   = "info"
	DefaultResolution = "default"
)

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// ModelPath returns the model path from OBJECTWATCH_MODEL or the default.
func ModelPath() string {
	return envOr(EnvModel, DefaultModelPath)
}

// LogLevel returns the log level from LOG_LEVEL or the default.
func LogLevel() string {
	return envOr(EnvLogLevel, DefaultLogLevel)
}

// Resolution returns the camera preset name from OBJECTWATCH_RESOLUTION or the default.
func Resolution() string {
	return envOr(EnvResolution, DefaultResolution)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Config is the resolved command configuration.
type Config struct {
	ModelPath  string
	LogLevel   string
	Resolution string
	Debug      bool
	Plain      bool
}

// Default returns a Config populated from the environment.
func Default() Config {
	return Config{
		ModelPath:  ModelPath(),
		LogLevel:   LogLevel(),
		Resolution: Resolution(),
	}
}

// Validate checks the config against the known resolution presets.
// All problems are reported together.
func (c Config) Validate(resolutions []string) error {
	var errs []error
	if strings.TrimSpace(c.ModelPath) == "" {
		errs = append(errs, errors.New("model path is required"))
	}
	if !lo.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if !lo.Contains(resolutions, c.Resolution) {
		errs = append(errs, fmt.Errorf("unknown resolution %q (want one of %s)", c.Resolution, strings.Join(resolutions, ", ")))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
