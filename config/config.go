// Package config holds the runtime settings of a full linking run:
// every tunable of the pipeline with its default, optionally overridden
// from a configuration file, plus the logger construction.
package config

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/avisser/celltrack/compare"
	"github.com/avisser/celltrack/consistency"
	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/flowlink"
	"github.com/avisser/celltrack/nnlink"
	"github.com/avisser/celltrack/resolver"
)

// Config manages pipeline configuration using Viper.
type Config struct {
	v *viper.Viper
}

// New returns a configuration holding the defaults of every stage.
func New() *Config {
	v := viper.New()

	// Dataset resolution, micrometers per pixel and minutes per frame.
	v.SetDefault("resolution.pixel_size_x_um", 0.32)
	v.SetDefault("resolution.pixel_size_y_um", 0.32)
	v.SetDefault("resolution.pixel_size_z_um", 2.0)
	v.SetDefault("resolution.time_interval_minutes", 12.0)

	// Candidate graph construction.
	v.SetDefault("linking.tolerance", nnlink.DefaultTolerance)
	v.SetDefault("linking.z_factor", core.DefaultZFactor)
	v.SetDefault("linking.max_candidates", nnlink.DefaultMaxCandidates)
	v.SetDefault("linking.workers", 0)
	v.SetDefault("linking.flow_radius_xy", nnlink.DefaultFlowRadiusXY)
	v.SetDefault("linking.flow_radius_z", nnlink.DefaultFlowRadiusZ)

	// Preferred-edge repair.
	v.SetDefault("resolver.passes", resolver.DefaultPasses)
	v.SetDefault("resolver.score_margin", resolver.DefaultScoreMargin)
	v.SetDefault("resolver.swap_improvement", resolver.DefaultSwapImprovement)

	// Global min-cost-flow weights.
	w := flowlink.DefaultWeights()
	v.SetDefault("flow.link_weight", w.Link)
	v.SetDefault("flow.detection_weight", w.Detection)
	v.SetDefault("flow.division_weight", w.Division)
	v.SetDefault("flow.appearance_weight", w.Appearance)
	v.SetDefault("flow.disappearance_weight", w.Disappearance)

	// Consistency checks.
	v.SetDefault("consistency.min_age_for_division", consistency.DefaultMinAgeForDivision)
	v.SetDefault("consistency.max_distance_um", consistency.DefaultMaxDistanceUm)
	v.SetDefault("consistency.shrink_ratio", consistency.DefaultShrinkRatio)

	// Lineage comparison.
	v.SetDefault("compare.max_distance_um", compare.DefaultMaxDistanceUm)
	v.SetDefault("compare.start_radius_um", 0.0)

	// Logging.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)

	return &Config{v: v}
}

// LoadFromFile merges settings from a file over the defaults. The
// format follows the file extension (yaml, json, toml).
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Set overrides one setting programmatically.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// Resolution returns the configured dataset resolution.
func (c *Config) Resolution() (core.Resolution, error) {
	return core.NewResolution(
		c.v.GetFloat64("resolution.pixel_size_z_um"),
		c.v.GetFloat64("resolution.pixel_size_y_um"),
		c.v.GetFloat64("resolution.pixel_size_x_um"),
		c.v.GetFloat64("resolution.time_interval_minutes"),
	)
}

// Linking returns the candidate graph options.
func (c *Config) Linking(logger zerolog.Logger) *nnlink.Options {
	return &nnlink.Options{
		Tolerance:     c.v.GetFloat64("linking.tolerance"),
		ZFactor:       c.v.GetFloat64("linking.z_factor"),
		MaxCandidates: c.v.GetInt("linking.max_candidates"),
		Workers:       c.v.GetInt("linking.workers"),
		Logger:        logger,
	}
}

// FlowRefine returns the drift refinement options.
func (c *Config) FlowRefine(logger zerolog.Logger) *nnlink.FlowOptions {
	return &nnlink.FlowOptions{
		RadiusXY: c.v.GetFloat64("linking.flow_radius_xy"),
		RadiusZ:  c.v.GetFloat64("linking.flow_radius_z"),
		ZFactor:  c.v.GetFloat64("linking.z_factor"),
		Logger:   logger,
	}
}

// Resolver returns the preferred-edge repair options.
func (c *Config) Resolver(logger zerolog.Logger) *resolver.Options {
	return &resolver.Options{
		Passes:          c.v.GetInt("resolver.passes"),
		ScoreMargin:     c.v.GetFloat64("resolver.score_margin"),
		SwapImprovement: c.v.GetFloat64("resolver.swap_improvement"),
		ZFactor:         c.v.GetFloat64("linking.z_factor"),
		Logger:          logger,
	}
}

// FlowWeights returns the min-cost-flow cost multipliers.
func (c *Config) FlowWeights() flowlink.Weights {
	return flowlink.Weights{
		Link:          c.v.GetFloat64("flow.link_weight"),
		Detection:     c.v.GetFloat64("flow.detection_weight"),
		Division:      c.v.GetFloat64("flow.division_weight"),
		Appearance:    c.v.GetFloat64("flow.appearance_weight"),
		Disappearance: c.v.GetFloat64("flow.disappearance_weight"),
	}
}

// Consistency returns the annotation options.
func (c *Config) Consistency(logger zerolog.Logger) *consistency.Options {
	return &consistency.Options{
		MinAgeForDivision: c.v.GetInt("consistency.min_age_for_division"),
		MaxDistanceUm:     c.v.GetFloat64("consistency.max_distance_um"),
		ShrinkRatio:       c.v.GetFloat64("consistency.shrink_ratio"),
		Logger:            logger,
	}
}

// Compare returns the lineage comparison options.
func (c *Config) Compare(logger zerolog.Logger) *compare.Options {
	return &compare.Options{
		MaxDistanceUm: c.v.GetFloat64("compare.max_distance_um"),
		StartRadiusUm: c.v.GetFloat64("compare.start_radius_um"),
		Logger:        logger,
	}
}

// LogLevel returns the configured logging level name.
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// CreateLogger builds a zerolog logger per the logging settings:
// human-readable console output by default, plain JSON otherwise.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if c.v.GetBool("logging.console") {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "celltrack").Logger()
}
