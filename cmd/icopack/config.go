package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/esimov/icopack"
	"github.com/esimov/icopack/render"
	"github.com/esimov/icopack/utils"
)

// Config holds the persistent command line defaults.
type Config struct {
	Sizes         []int  `json:"sizes"`
	CanonicalSize int    `json:"canonical_size"`
	Filter        string `json:"filter"`
	Shape         string `json:"shape"`
	Background    string `json:"background,omitempty"`
	Foreground    string `json:"foreground"`
	Fit           *bool  `json:"fit"`
	Workers       int    `json:"workers"`
}

// defaultConfigPath returns ~/.config/icopack/config.json.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "icopack", "config.json")
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	fit := true
	sizes := make([]int, len(icopack.DefaultSizes))
	copy(sizes, icopack.DefaultSizes)

	return Config{
		Sizes:         sizes,
		CanonicalSize: icopack.DefaultCanonicalSize,
		Filter:        icopack.Box.String(),
		Shape:         "square",
		Foreground:    "#ffffff",
		Fit:           &fit,
	}
}

// configFit dereferences Fit with a default of true.
func configFit(cfg Config) bool {
	if cfg.Fit == nil {
		return true
	}
	return *cfg.Fit
}

// loadConfig reads the config file at path. A missing file yields the defaults.
// Missing fields keep their defaults via json.Unmarshal into a pre-populated struct.
func loadConfig(path string) Config {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to read config %s: %v", path, err)
		}
		return cfg
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("Failed to parse config %s: %v", path, err)
		return defaultConfig()
	}

	defaults := defaultConfig()
	if !validSizes(cfg.Sizes) {
		log.Printf("Invalid sizes %v in config, using default %v", cfg.Sizes, defaults.Sizes)
		cfg.Sizes = defaults.Sizes
	}
	if !validCanonical(cfg.CanonicalSize) {
		log.Printf("Invalid canonical_size %d in config, using default %d", cfg.CanonicalSize, defaults.CanonicalSize)
		cfg.CanonicalSize = defaults.CanonicalSize
	}
	if !validFilter(cfg.Filter) {
		log.Printf("Unknown filter %q in config, using default %q", cfg.Filter, defaults.Filter)
		cfg.Filter = defaults.Filter
	}
	if !validShape(cfg.Shape) {
		log.Printf("Unknown shape %q in config, using default %q", cfg.Shape, defaults.Shape)
		cfg.Shape = defaults.Shape
	}
	if cfg.Background != "" && !validColor(cfg.Background) {
		log.Printf("Invalid background %q in config, ignoring it", cfg.Background)
		cfg.Background = ""
	}
	if !validColor(cfg.Foreground) {
		log.Printf("Invalid foreground %q in config, using default %q", cfg.Foreground, defaults.Foreground)
		cfg.Foreground = defaults.Foreground
	}
	if cfg.Fit == nil {
		cfg.Fit = defaults.Fit
	}
	if cfg.Workers < 0 {
		log.Printf("Invalid workers %d in config, using the number of CPUs", cfg.Workers)
		cfg.Workers = 0
	}

	return cfg
}

func validSizes(sizes []int) bool { return icopack.ValidateSizes(sizes) == nil }

func validCanonical(n int) bool { return n > 0 && n <= 4096 }

func validFilter(s string) bool {
	_, err := icopack.ParseFilter(s)
	return err == nil
}

func validShape(s string) bool {
	_, err := render.ParseShape(s)
	return err == nil
}

func validColor(s string) bool {
	_, err := utils.ParseHexColor(s)
	return err == nil
}

// overrides holds CLI flag values for config overrides.
type overrides struct {
	Sizes         string
	CanonicalSize int
	Filter        string
	Shape         string
	Background    string
	Foreground    string
	Fit           *bool
	Workers       int
}

// applyOverrides applies env vars and flags to config. Priority: flag > env > config file.
// Invalid env values are logged and ignored, an invalid flag value is an error.
func applyOverrides(cfg *Config, o overrides) error {
	if err := applySizesOverride(&cfg.Sizes, "ICOPACK_SIZES", o.Sizes); err != nil {
		return err
	}
	applyIntOverride(&cfg.CanonicalSize, "ICOPACK_CANONICAL", o.CanonicalSize, validCanonical)
	applyIntOverride(&cfg.Workers, "ICOPACK_CONC", o.Workers, func(i int) bool { return i > 0 })

	for _, so := range []struct {
		target       *string
		envKey, flag string
		flagVal      string
		valid        func(string) bool
	}{
		{&cfg.Filter, "ICOPACK_FILTER", "filter", o.Filter, validFilter},
		{&cfg.Shape, "ICOPACK_SHAPE", "shape", o.Shape, validShape},
		{&cfg.Background, "ICOPACK_BG", "bg", o.Background, validColor},
		{&cfg.Foreground, "ICOPACK_FG", "fg", o.Foreground, validColor},
	} {
		if err := applyStringOverride(so.target, so.envKey, so.flag, so.flagVal, so.valid); err != nil {
			return err
		}
	}

	if v := os.Getenv("ICOPACK_FIT"); v != "" {
		if b, err := strconv.ParseBool(v); err != nil {
			log.Printf("Ignoring invalid ICOPACK_FIT=%q", v)
		} else {
			cfg.Fit = &b
		}
	}
	if o.Fit != nil {
		cfg.Fit = o.Fit
	}
	return nil
}

// applySizesOverride applies a size list override from env var and flag.
func applySizesOverride(target *[]int, envKey, flagVal string) error {
	if v := os.Getenv(envKey); v != "" {
		if sizes, err := icopack.ParseSizes(v); err != nil {
			log.Printf("Ignoring invalid %s=%q: %v", envKey, v, err)
		} else {
			*target = sizes
		}
	}
	if flagVal != "" {
		sizes, err := icopack.ParseSizes(flagVal)
		if err != nil {
			return fmt.Errorf("invalid -sizes %q: %w", flagVal, err)
		}
		*target = sizes
	}
	return nil
}

// applyIntOverride applies an int override from env var and flag.
// The env value is parsed with Atoi; both env and flag values are accepted only if valid returns true.
func applyIntOverride(target *int, envKey string, flagVal int, valid func(int) bool) {
	if v := os.Getenv(envKey); v != "" {
		if i, err := strconv.Atoi(v); err != nil || !valid(i) {
			log.Printf("Ignoring invalid %s=%q", envKey, v)
		} else {
			*target = i
		}
	}
	if valid(flagVal) {
		*target = flagVal
	}
}

// applyStringOverride applies a string override from env var and flag.
// Non-empty values are accepted only if valid returns true.
func applyStringOverride(target *string, envKey, flagName, flagVal string, valid func(string) bool) error {
	if v := os.Getenv(envKey); v != "" {
		if !valid(v) {
			log.Printf("Ignoring invalid %s=%q", envKey, v)
		} else {
			*target = v
		}
	}
	if flagVal != "" {
		if !valid(flagVal) {
			return fmt.Errorf("invalid -%s %q", flagName, flagVal)
		}
		*target = flagVal
	}
	return nil
}
