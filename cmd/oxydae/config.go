package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-collada/engine/loader"
	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
	"github.com/pelletier/go-toml/v2"
)

// Log levels accepted by the log_level setting.
const (
	LogLevelWarn   = "warn"
	LogLevelError  = "error"
	LogLevelSilent = "silent"
)

// config is the CLI configuration read from a TOML file and overridden by flags.
type config struct {
	FilePath string `toml:"file_path"`
	Workers  int    `toml:"workers"`
	Catalog  string `toml:"catalog"`
	LogLevel string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		FilePath: scene.DefaultFilePath,
		Workers:  loader.DefaultWorkers,
		LogLevel: LogLevelWarn,
	}
}

// loadConfig decodes a TOML file over the defaults. Unknown keys are rejected.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) validate() error {
	switch c.LogLevel {
	case LogLevelWarn, LogLevelError, LogLevelSilent:
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// newLogger builds the loader logger for a log level. Lines are filtered by their
// [WARN] or [ERROR] marker.
func (c config) newLogger(w io.Writer) *log.Logger {
	switch c.LogLevel {
	case LogLevelSilent:
		return log.New(io.Discard, "", 0)
	case LogLevelError:
		return log.New(&levelWriter{w: w, drop: "[WARN]"}, "", 0)
	default:
		return log.New(w, "", 0)
	}
}

// levelWriter drops log lines containing a marker.
type levelWriter struct {
	w    io.Writer
	drop string
}

func (lw *levelWriter) Write(p []byte) (int, error) {
	if strings.Contains(string(p), lw.drop) {
		return len(p), nil
	}
	return lw.w.Write(p)
}
