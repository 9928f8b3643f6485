// Package config provides configuration management for customer-sync.
//
// Values come from the environment, optionally seeded from a .env file, with
// defaults declared on the struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP listen address and API key
//   - Log: logging level and format
//   - Database: company database connection
//   - Storage: S3/MinIO settings for the report archive
//   - Directory: external directory driver, endpoint and limits
//   - Redis: run lock backend (empty address keeps the lock in process)
//   - Customers: company table mapping, cache and archive settings
//
// Nested keys map to environment variables by replacing dots with
// underscores, so directory.endpoint is read from DIRECTORY_ENDPOINT.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
