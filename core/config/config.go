package config

import (
	"reflect"
	"strings"

	"comment-mirror/core/database"
	"comment-mirror/core/logger"
	"comment-mirror/core/server"
	"comment-mirror/core/storage"
	"comment-mirror/feature/activity"
	"comment-mirror/feature/comments/api"
	"comment-mirror/feature/comments/mirror"
	"comment-mirror/feature/comments/sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Api holds configuration for the upstream comment API.
	Api api.Config `mapstructure:"api"`
	// Mirror holds configuration for the local comment store.
	Mirror mirror.Config `mapstructure:"mirror"`
	// Sync holds configuration for the reconciliation strategies.
	Sync sync.Config `mapstructure:"sync"`
	// Activity holds configuration for the Discord activity feed.
	Activity activity.Config `mapstructure:"activity"`
	// Server holds configuration for the read-only HTTP API.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for snapshot object storage.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the export database.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. CI).
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. API_BASE_URL -> api.base_url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
