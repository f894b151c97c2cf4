// Copyright (C) 2025 Aman Sharma
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/amsharma23/mitodyn/pkg/logging"
	"github.com/amsharma23/mitodyn/services/dynamics/match"
)

// Config is the analysis configuration, loadable from a YAML file and
// overridable per flag.
type Config struct {
	// DistanceThreshold is the spatial matching radius in scaled voxel
	// units.
	DistanceThreshold float64 `yaml:"distance_threshold" validate:"gt=0"`

	// XYResolution and ZResolution are the physical voxel sampling
	// intervals in microns. The z anisotropy scale is their ratio
	// unless ZScale overrides it.
	XYResolution float64 `yaml:"xy_resolution" validate:"gte=0"`
	ZResolution  float64 `yaml:"z_resolution" validate:"gte=0"`

	// ZScale overrides the derived anisotropy factor when positive.
	ZScale float64 `yaml:"z_scale" validate:"gte=0"`

	// PersistenceWindow is the temporal validation window in frames.
	// 1 disables persistence checking.
	PersistenceWindow int `yaml:"persistence_window" validate:"gte=1"`

	// InferenceMethod selects the default objective for `mitodyn infer`.
	InferenceMethod string `yaml:"method" validate:"omitempty,oneof=minimize_total minimize_discrepancy"`

	// OutputFolder is the default artifact directory. Empty means the
	// series root.
	OutputFolder string `yaml:"output_folder"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
	Quiet bool   `yaml:"quiet"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		DistanceThreshold: 5.0,
		XYResolution:      match.DefaultXYResolution,
		ZResolution:       match.DefaultZResolution,
		PersistenceWindow: 1,
		InferenceMethod:   "minimize_total",
		Log:               LogConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML config file over the defaults and validates
// the result. An empty path returns the validated defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// EffectiveZScale resolves the anisotropy factor: an explicit ZScale
// wins, otherwise it is derived from the physical resolutions.
func (c Config) EffectiveZScale() float64 {
	if c.ZScale > 0 {
		return c.ZScale
	}
	return match.ZScaleFromResolutions(c.XYResolution, c.ZResolution)
}

// Logger builds the process logger from the log section.
func (c Config) Logger() *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.ParseLevel(c.Log.Level),
		LogDir:  c.Log.Dir,
		Service: "mitodyn",
		JSON:    c.Log.JSON,
		Quiet:   c.Log.Quiet,
	})
}
