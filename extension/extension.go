// Package extension provides the Forge extension adapter for Letterpress.
//
// It implements the forge.Extension interface to integrate Letterpress
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.letterpress" or
// "letterpress" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/letterpress"
	"github.com/xraph/letterpress/store"
	"github.com/xraph/letterpress/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "letterpress"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Letter lifecycle and discount-redemption engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Letterpress as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *letterpress.Letterpress
	store      store.Store
	engineOpts []letterpress.Option
	useGrove   bool
}

// New creates a new Letterpress Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Letterpress instance.
// This is nil until Register is called.
func (e *Extension) Engine() *letterpress.Letterpress { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the letterpress engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build engine options from resolved config.
	opts := e.buildEngineOpts()

	eng := letterpress.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*letterpress.Letterpress, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("letterpress: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("letterpress: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildEngineOpts constructs letterpress.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []letterpress.Option {
	opts := make([]letterpress.Option, 0, len(e.engineOpts)+3)

	if e.config.GenerationTimeout > 0 {
		opts = append(opts, letterpress.WithGenerationTimeout(e.config.GenerationTimeout))
	}
	if e.config.CommissionBps > 0 {
		opts = append(opts, letterpress.WithCommissionRate(e.config.CommissionBps))
	}
	if e.config.PointsPerRedemption > 0 {
		opts = append(opts, letterpress.WithPointsPerRedemption(e.config.PointsPerRedemption))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("letterpress: configuration is required but not found in config files; " +
				"ensure 'extensions.letterpress' or 'letterpress' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("letterpress: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("generation_timeout", e.config.GenerationTimeout),
		forge.F("commission_bps", e.config.CommissionBps),
		forge.F("points_per_redemption", e.config.PointsPerRedemption),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.letterpress" first (namespaced pattern).
	if cm.IsSet("extensions.letterpress") {
		if err := cm.Bind("extensions.letterpress", &cfg); err == nil {
			e.Logger().Debug("letterpress: loaded config from file",
				forge.F("key", "extensions.letterpress"),
			)
			return cfg, true
		}
		e.Logger().Warn("letterpress: failed to bind extensions.letterpress config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "letterpress" key.
	if cm.IsSet("letterpress") {
		if err := cm.Bind("letterpress", &cfg); err == nil {
			e.Logger().Debug("letterpress: loaded config from file",
				forge.F("key", "letterpress"),
			)
			return cfg, true
		}
		e.Logger().Warn("letterpress: failed to bind letterpress config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.GenerationTimeout == 0 {
		cfg.GenerationTimeout = defaults.GenerationTimeout
	}
	if cfg.CommissionBps == 0 {
		cfg.CommissionBps = defaults.CommissionBps
	}
	if cfg.PointsPerRedemption == 0 {
		cfg.PointsPerRedemption = defaults.PointsPerRedemption
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.GroveDatabase == "" && programmaticConfig.GroveDatabase != "" {
		yamlConfig.GroveDatabase = programmaticConfig.GroveDatabase
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.GenerationTimeout == 0 && programmaticConfig.GenerationTimeout != 0 {
		yamlConfig.GenerationTimeout = programmaticConfig.GenerationTimeout
	}
	if yamlConfig.CommissionBps == 0 && programmaticConfig.CommissionBps != 0 {
		yamlConfig.CommissionBps = programmaticConfig.CommissionBps
	}
	if yamlConfig.PointsPerRedemption == 0 && programmaticConfig.PointsPerRedemption != 0 {
		yamlConfig.PointsPerRedemption = programmaticConfig.PointsPerRedemption
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
