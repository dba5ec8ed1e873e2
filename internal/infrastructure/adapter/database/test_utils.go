package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/marketplace/internal/domain/port/core"
	timeprovider "github.com/amirhossein-jamali/marketplace/internal/infrastructure/adapter/time"
)

// TestDBManager provides utilities for testing against a real postgres
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager creates a test database manager, skipping the test when TEST_DB_HOST is unset
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	host, ok := os.LookupEnv("TEST_DB_HOST")
	if !ok || host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}

	timeProvider := timeprovider.NewRealTimeProvider()

	config := DefaultConfig()
	config.Host = host
	config.Port = getEnvIntOrDefault("TEST_DB_PORT", 5432)
	config.Username = getEnvOrDefault("TEST_DB_USERNAME", "postgres")
	config.Password = getEnvOrDefault("TEST_DB_PASSWORD", "postgres")
	config.Database = getEnvOrDefault("TEST_DB_DATABASE", "marketplace_test")
	config.SSLMode = getEnvOrDefault("TEST_DB_SSL_MODE", "disable")
	config.LogLevel = "silent"
	config.RetryAttempts = 1
	config.QueryTimeout = 5 * time.Second

	return &TestDBManager{
		Manager:      NewManager(config, logger, timeProvider),
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}

// Connect connects, migrates and empties the snapshot table
func (m *TestDBManager) Connect(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	if _, err := m.Manager.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := m.Manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	m.TruncateSnapshots(t)
}

// Close closes the test database connection
func (m *TestDBManager) Close(t *testing.T) {
	t.Helper()

	if err := m.Manager.Close(); err != nil {
		t.Logf("Warning: Failed to close test database connection: %v", err)
	}
}

// TruncateSnapshots removes every stored family snapshot
func (m *TestDBManager) TruncateSnapshots(t *testing.T) {
	t.Helper()

	if err := m.Manager.DB().Exec("TRUNCATE TABLE family_snapshots").Error; err != nil {
		t.Fatalf("Failed to truncate family_snapshots: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
