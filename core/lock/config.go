package lock

// Config holds configuration for the Redis lock backend.
type Config struct {
	// Addr is the Redis address. Empty selects the in-process locker.
	Addr string `mapstructure:"addr" default:""`
	// Password is the Redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis database index.
	DB int `mapstructure:"db" default:"0"`
	// TTLSeconds is how long a lock lives without a refresh. Held locks are
	// refreshed every half TTL until released.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"300"`
	// WaitSeconds is how long Obtain keeps retrying a held lock, for both the
	// Redis and the in-process locker.
	WaitSeconds int `mapstructure:"wait_seconds" default:"10"`
}
