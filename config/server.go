package config

import (
	"fmt"

	"github.com/habiliai/tutorwise/errors"
)

type ServerConfig struct {
	Host string `env:"HOST" yaml:"host"`
	Port int    `env:"PORT" yaml:"port"`

	// AuthRequired puts the spaces, contents and chat routes behind bearer
	// token authentication. Off by default: those routes trust the owner and
	// user ids sent by the client.
	AuthRequired bool `env:"AUTH_REQUIRED" yaml:"authRequired"`
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Host: "0.0.0.0",
		Port: 8000,
	}
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Wrapf(errors.ErrInvalidConfig, "invalid port %d", c.Port)
	}
	return nil
}

type DatabaseConfig struct {
	// DatabaseUrl is either a postgres:// URL or a path to a sqlite file.
	DatabaseUrl         string `env:"DATABASE_URL" yaml:"url"`
	DatabaseAutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE" yaml:"autoMigrate"`
}

func NewDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		DatabaseUrl:         "data/tutorwise.sqlite",
		DatabaseAutoMigrate: true,
	}
}
