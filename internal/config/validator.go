package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var (
	ErrInvalidStorageDriver = errors.New("storage driver must be postgres or memory")
	ErrInvalidSiteURL       = errors.New("server site_url must be an absolute http(s) URL")
	ErrMissingAdminPassword = errors.New("admin password is required")
	ErrMissingNonceSecret   = errors.New("admin nonce_secret is required")
	ErrUnknownKeyVersion    = errors.New("current crypto key version has no key")
)

type Validator interface {
	Validate(cfg *Config) error
}

type validator struct{}

func NewValidator() Validator {
	return validator{}
}

func (validator) Validate(cfg *Config) error {
	if !slices.Contains([]string{"postgres", "memory"}, cfg.Storage.Driver) {
		return fmt.Errorf("%w: %q", ErrInvalidStorageDriver, cfg.Storage.Driver)
	}

	u, err := url.Parse(cfg.Server.SiteURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidSiteURL, cfg.Server.SiteURL)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", cfg.Server.Port)
	}

	if cfg.Admin.Password == "" {
		return ErrMissingAdminPassword
	}
	if cfg.Admin.NonceSecret == "" {
		return ErrMissingNonceSecret
	}

	if cfg.Crypto.CurrentVersion != 0 {
		if _, ok := cfg.Crypto.Keys[cfg.Crypto.CurrentVersion]; !ok {
			return fmt.Errorf("%w: v%d", ErrUnknownKeyVersion, cfg.Crypto.CurrentVersion)
		}
	}

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("unknown logger level: %q", cfg.Logger.Level)
	}

	return nil
}
