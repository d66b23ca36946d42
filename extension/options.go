package extension

import (
	"time"

	"github.com/xraph/letterpress"
	"github.com/xraph/letterpress/plugin"
	"github.com/xraph/letterpress/store"
)

// Option configures the Letterpress Forge extension.
type Option func(*Extension)

// WithStore sets the store for the letterpress engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a letterpress.Option through to the underlying engine.
func WithEngineOption(opt letterpress.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a letterpress plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, letterpress.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithGenerationTimeout bounds the external draft generation call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.GenerationTimeout = d }
}

// WithCommissionBps sets the partner commission rate in basis points.
func WithCommissionBps(bps int) Option {
	return func(e *Extension) { e.config.CommissionBps = bps }
}

// WithPointsPerRedemption sets the referral points awarded per redemption.
func WithPointsPerRedemption(points int) Option {
	return func(e *Extension) { e.config.PointsPerRedemption = points }
}

// WithGroveDatabase sets the name of the grove.DB to resolve from the DI container.
// The extension will auto-construct the appropriate store backend (postgres/sqlite/mongo)
// based on the grove driver type. Pass an empty string to use the default (unnamed) grove.DB.
func WithGroveDatabase(name string) Option {
	return func(e *Extension) {
		e.config.GroveDatabase = name
		e.useGrove = true
	}
}
