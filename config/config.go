package config

import (
	"github.com/habiliai/tutorwise/errors"
)

// Config aggregates every section. Values resolve as defaults, then the
// optional YAML file, then .env (and .env.test when testing), then the
// process environment.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Memory    MemoryConfig    `yaml:"memory"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Chat      ChatConfig      `yaml:"chat"`
}

func NewConfig() *Config {
	return &Config{
		Log:       *NewLogConfig(),
		Server:    *NewServerConfig(),
		Database:  *NewDatabaseConfig(),
		Gemini:    *NewGeminiConfig(),
		Memory:    *NewMemoryConfig(),
		Extractor: *NewExtractorConfig(),
		Storage:   *NewStorageConfig(),
		Auth:      *NewAuthConfig(),
		Ingest:    *NewIngestConfig(),
		Chat:      *NewChatConfig(),
	}
}

func Load(file string, testing bool) (*Config, error) {
	conf := NewConfig()
	if file != "" {
		if err := loadYAMLFile(file, conf); err != nil {
			return nil, err
		}
	}

	if err := errors.Join(
		resolveConfig(&conf.Log, testing),
		resolveConfig(&conf.Server, testing),
		resolveConfig(&conf.Database, testing),
		resolveConfig(&conf.Gemini, testing),
		resolveConfig(&conf.Memory, testing),
		resolveConfig(&conf.Extractor, testing),
		resolveConfig(&conf.Storage, testing),
		resolveConfig(&conf.Auth, testing),
		resolveConfig(&conf.Ingest, testing),
		resolveConfig(&conf.Chat, testing),
	); err != nil {
		return nil, err
	}

	return conf, nil
}

// Validate checks the sections needed to serve traffic.
func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{
		&c.Server,
		&c.Gemini,
		&c.Memory,
		&c.Auth,
		&c.Ingest,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
