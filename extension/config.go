package extension

import "time"

// Config holds the Letterpress extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.letterpress" or "letterpress" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// GenerationTimeout bounds the external draft generation call
	// (default: 30s).
	GenerationTimeout time.Duration `json:"generation_timeout" mapstructure:"generation_timeout" yaml:"generation_timeout"`

	// CommissionBps is the partner commission rate in basis points applied to
	// the pre-discount charge (default: 1000, i.e. 10%).
	CommissionBps int `json:"commission_bps" mapstructure:"commission_bps" yaml:"commission_bps"`

	// PointsPerRedemption is the number of referral points awarded to the
	// partner per committed redemption (default: 1).
	PointsPerRedemption int `json:"points_per_redemption" mapstructure:"points_per_redemption" yaml:"points_per_redemption"`

	// GroveDatabase is the name of a grove.DB registered in the DI container.
	// When set, the extension resolves this named database and auto-constructs
	// the appropriate store based on the driver type (pg/sqlite/mongo).
	// When empty and WithGroveDatabase was called, the default (unnamed) DB is used.
	GroveDatabase string `json:"grove_database" mapstructure:"grove_database" yaml:"grove_database"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GenerationTimeout:   30 * time.Second,
		CommissionBps:       1000,
		PointsPerRedemption: 1,
	}
}
