// Package config provides configuration management for the comment mirror.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Api: upstream comment API address, auth key, and retry tuning
//   - Mirror: local store path
//   - Sync: worker counts, batch size, and the media catalog path
//   - Activity: Discord feed token and channel
//   - Server: read-only HTTP API settings (port, API key)
//   - Storage: S3/MinIO credentials for snapshot uploads
//   - Database: export database connection details
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Api.BaseURL)
package config
