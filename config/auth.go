package config

import (
	"github.com/habiliai/tutorwise/errors"
)

type AuthConfig struct {
	SecretKey     string `env:"JWT_SECRET_KEY" yaml:"secretKey"`
	ExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" yaml:"expireMinutes"`
}

func NewAuthConfig() *AuthConfig {
	return &AuthConfig{
		ExpireMinutes: 60 * 24,
	}
}

func (c *AuthConfig) Validate() error {
	if c.SecretKey == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "JWT_SECRET_KEY is required")
	}
	if c.ExpireMinutes <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "invalid token lifetime %d", c.ExpireMinutes)
	}
	return nil
}
