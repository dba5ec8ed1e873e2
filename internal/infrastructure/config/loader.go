package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override, e.g. MP_SERVER_PORT
const EnvPrefix = "MP"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// envOverrides maps short environment names to config keys. Every other key can be
// overridden by its full name, e.g. MP_STORE_LOCKTIMEOUTMS.
var envOverrides = map[string]string{
	"MP_DB_HOST":        "database.host",
	"MP_DB_PORT":        "database.port",
	"MP_DB_USERNAME":    "database.username",
	"MP_DB_PASSWORD":    "database.password",
	"MP_DB_NAME":        "database.database",
	"MP_JWT_SECRET":     "auth.jwtSecret",
	"MP_ADMIN_PASSWORD": "market.adminPassword",
	"MP_STORE_BACKEND":  "store.backend",
	"MP_DATA_DIR":       "store.dataDir",
	"MP_LOGGER_LEVEL":   "logger.level",
}

// LoadConfig loads configuration for the environment named by MP_ENV
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	return Load(getEnvironment(), ConfigPaths...)
}

// Load reads <env>.yaml from the first of paths that has it and applies environment overrides
func Load(env string, paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	processDurations(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// loadDotEnvFile loads the first .env file found; existing variables win
func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical settings
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.readTimeout", 10)      // seconds
	v.SetDefault("server.writeTimeout", 30)     // seconds
	v.SetDefault("server.idleTimeout", 60)      // seconds
	v.SetDefault("server.readHeaderTimeout", 5) // seconds
	v.SetDefault("server.shutdownTimeout", 10)  // seconds
	v.SetDefault("server.allowedOrigins", []string{"*"})

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.dataDir", "./data")
	v.SetDefault("store.journalName", "journal.json")
	v.SetDefault("store.lockTimeoutMs", 5000)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds
	v.SetDefault("database.logLevel", "warn")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.file.enabled", false)
	v.SetDefault("logger.file.path", "./logs/marketplace.log")
	v.SetDefault("logger.file.maxSizeMB", 64)
	v.SetDefault("logger.file.maxBackups", 7)
	v.SetDefault("logger.file.maxAgeDays", 7)
	v.SetDefault("logger.file.compress", true)

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "marketplace")
	v.SetDefault("auth.tokenTTL", 24*60) // minutes
	v.SetDefault("auth.bcryptCost", 12)

	v.SetDefault("assets.imageDir", "./static/images")
	v.SetDefault("assets.defaultImage", "default_item.jpg")
	v.SetDefault("assets.maxUploadBytes", 5<<20)

	v.SetDefault("market.startingBalance", "100.00")
	v.SetDefault("market.adminName", "admin")
	v.SetDefault("market.adminPassword", "")
	v.SetDefault("market.adminBalance", "1000.00")
}

// getEnvironment determines the environment to use based on the MP_ENV environment variable
func getEnvironment() string {
	env := os.Getenv("MP_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides applies the short environment names over file values
func processEnvOverrides(v *viper.Viper) {
	for name, key := range envOverrides {
		if value := os.Getenv(name); value != "" {
			v.Set(key, value)
		}
	}
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second

	config.Auth.TokenTTL = time.Duration(config.Auth.TokenTTL) * time.Minute
}
