package config

import (
	"github.com/habiliai/tutorwise/errors"
)

const (
	MemoryBackendSqlite = "sqlite"
	MemoryBackendMemory = "memory"
)

type MemoryConfig struct {
	// Backend selects the vector index implementation
	// Values: "sqlite" (sqlite-vec, persistent) or "memory" (process local)
	// Default: "sqlite"
	Backend string `env:"MEMORY_BACKEND" yaml:"backend"`

	// Path is the sqlite file holding the vector index
	// Default: db_vec.sqlite
	Path string `env:"MEMORY_PATH" yaml:"path"`

	// EmbedDim is the expected embedding length; vectors of any other length are rejected
	// Default: 768
	EmbedDim int `env:"EMBED_DIM" yaml:"embedDim"`

	// EmbedCacheTTLSeconds caches query embeddings in process. 0 disables the cache.
	EmbedCacheTTLSeconds int `env:"EMBED_CACHE_TTL" yaml:"embedCacheTtlSeconds"`
}

func NewMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		Backend:  MemoryBackendSqlite,
		Path:     "db_vec.sqlite",
		EmbedDim: 768,
	}
}

func (c *MemoryConfig) Validate() error {
	switch c.Backend {
	case MemoryBackendSqlite, MemoryBackendMemory:
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", c.Backend)
	}
	if c.EmbedDim <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "invalid embedding dimension %d", c.EmbedDim)
	}
	return nil
}
