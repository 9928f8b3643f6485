package directory

const (
	DriverBridge = "bridge"
	DriverMemory = "memory"
)

// Config holds configuration for the external directory.
type Config struct {
	// Driver selects the implementation (bridge, memory).
	Driver string `mapstructure:"driver" default:"bridge"`
	// Endpoint is the base URL of the request processor bridge.
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:8765"`
	// AppName identifies this application to the accounting product.
	AppName string `mapstructure:"app_name" default:"Customer Sync"`
	// TimeoutSeconds bounds a single request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Retries is the number of extra attempts after a connection failure.
	Retries int `mapstructure:"retries" default:"2"`
	// MaxFieldLength is the maximum length of name and fax fields.
	MaxFieldLength int `mapstructure:"max_field_length" default:"20"`
}

// IsValidDriver checks if the configured driver is known.
func (c Config) IsValidDriver() bool {
	switch c.Driver {
	case DriverBridge, DriverMemory:
		return true
	default:
		return false
	}
}
