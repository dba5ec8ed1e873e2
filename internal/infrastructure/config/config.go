package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Store       StoreConfig    `mapstructure:"store"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Auth        AuthConfig     `mapstructure:"auth"`
	Assets      AssetsConfig   `mapstructure:"assets"`
	Market      MarketConfig   `mapstructure:"market"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Mode              string        `mapstructure:"mode"`              // gin mode: debug, release or test
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
	AllowedOrigins    []string      `mapstructure:"allowedOrigins"`
}

// StoreConfig selects and tunes the record store
type StoreConfig struct {
	Backend       string `mapstructure:"backend"` // file, memory or postgres
	DataDir       string `mapstructure:"dataDir"`
	JournalName   string `mapstructure:"journalName"`
	LockTimeoutMs int64  `mapstructure:"lockTimeoutMs"`
}

// DatabaseConfig contains database connection settings for the postgres backend
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	LogLevel        string        `mapstructure:"logLevel"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"` // console or json
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig enables a rotating log file next to stdout
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig contains session and credential settings
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwtSecret"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"tokenTTL"` // minutes
	BcryptCost int           `mapstructure:"bcryptCost"`
}

// AssetsConfig contains item image settings
type AssetsConfig struct {
	ImageDir       string `mapstructure:"imageDir"`
	DefaultImage   string `mapstructure:"defaultImage"`
	MaxUploadBytes int64  `mapstructure:"maxUploadBytes"`
}

// MarketConfig contains balances and the seed administrator. Amounts are decimal strings.
type MarketConfig struct {
	StartingBalance string `mapstructure:"startingBalance"`
	AdminName       string `mapstructure:"adminName"`
	AdminPassword   string `mapstructure:"adminPassword"`
	AdminBalance    string `mapstructure:"adminBalance"`
}
