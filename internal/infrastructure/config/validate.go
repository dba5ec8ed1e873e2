package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
)

// Store backends
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// MinJWTSecretLength is the shortest accepted signing secret
const MinJWTSecretLength = 16

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.DataDir == "" {
			errs = append(errs, errors.New("store.dataDir is required for the file backend"))
		}
	case BackendMemory:
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.Username == "" || c.Database.Database == "" {
			errs = append(errs, errors.New("database host, username and database are required for the postgres backend"))
		}
		if port, err := strconv.Atoi(c.Database.Port); err != nil || port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("database.port %q is invalid", c.Database.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}
	if c.Store.LockTimeoutMs <= 0 {
		errs = append(errs, errors.New("store.lockTimeoutMs must be positive"))
	}

	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwtSecret must be at least %d bytes", MinJWTSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.tokenTTL must be positive"))
	}

	if c.Assets.ImageDir == "" {
		errs = append(errs, errors.New("assets.imageDir is required"))
	}

	if _, err := c.Market.StartingBalanceCents(); err != nil {
		errs = append(errs, fmt.Errorf("market.startingBalance: %w", err))
	}
	if _, err := c.Market.AdminBalanceCents(); err != nil {
		errs = append(errs, fmt.Errorf("market.adminBalance: %w", err))
	}
	if c.Market.AdminName != "" && c.Market.AdminPassword == "" {
		errs = append(errs, errors.New("market.adminPassword is required when a seed admin is configured"))
	}

	return errors.Join(errs...)
}

// StartingBalanceCents parses the registration balance
func (m MarketConfig) StartingBalanceCents() (int64, error) {
	return entity.ValidateAndConvertAmount(m.StartingBalance)
}

// AdminBalanceCents parses the seed admin balance
func (m MarketConfig) AdminBalanceCents() (int64, error) {
	return entity.ValidateAndConvertAmount(m.AdminBalance)
}
