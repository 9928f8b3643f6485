package customers

import "time"

// Config holds settings for the customers feature.
type Config struct {
	// Enabled toggles the HTTP routes.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Table is the company table holding customers.
	Table string `mapstructure:"table" default:"customers"`
	// KeyColumn holds the business key.
	KeyColumn string `mapstructure:"key_column" default:"company_id"`
	// NameColumn holds the display name.
	NameColumn string `mapstructure:"name_column" default:"name"`
	// FaxColumn holds the secondary attribute.
	FaxColumn string `mapstructure:"fax_column" default:"fax"`
	// ActiveColumn, when set, skips rows whose value is not truthy.
	ActiveColumn string `mapstructure:"active_column" default:""`
	// CacheTTLSeconds caches the loaded list. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
	// ArchivePrefix is the object prefix for reports.
	ArchivePrefix string `mapstructure:"archive_prefix" default:"reports/customers"`
	// ArchiveRetain is how many reports to keep. Zero keeps all.
	ArchiveRetain int `mapstructure:"archive_retain" default:"50"`
	// LockKey names the run lock.
	LockKey string `mapstructure:"lock_key" default:"customer-sync:reconcile"`
}

// CacheTTL returns the source cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Columns returns the columns read by the source.
func (c Config) Columns() []string {
	cols := []string{c.KeyColumn, c.NameColumn, c.FaxColumn}
	if c.ActiveColumn != "" {
		cols = append(cols, c.ActiveColumn)
	}
	return cols
}
