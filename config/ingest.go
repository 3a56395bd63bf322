package config

import (
	"github.com/habiliai/tutorwise/errors"
)

const (
	QueueBackendMemory = "memory"
	QueueBackendRedis  = "redis"
)

type IngestConfig struct {
	// Workers is the number of ingestion tasks processed concurrently
	// Default: 4
	Workers int `env:"INGEST_WORKERS" yaml:"workers"`

	// QueueSize bounds the in-process queue. Enqueue fails once it is full.
	// Default: 256
	QueueSize int `env:"INGEST_QUEUE_SIZE" yaml:"queueSize"`

	// QueueBackend is "memory" or "redis"
	QueueBackend string `env:"INGEST_QUEUE_BACKEND" yaml:"queueBackend"`
	RedisURL     string `env:"REDIS_URL" yaml:"redisUrl"`
	RedisKey     string `env:"INGEST_REDIS_KEY" yaml:"redisKey"`

	// SweepIntervalSeconds re-enqueues contents stuck in pending. 0 disables the sweeper.
	SweepIntervalSeconds int `env:"PENDING_SWEEP_INTERVAL" yaml:"sweepIntervalSeconds"`

	// SweepAgeSeconds is how old a pending content must be before it is replayed
	// Default: 600
	SweepAgeSeconds int `env:"PENDING_SWEEP_AGE" yaml:"sweepAgeSeconds"`

	// TaskTTLSeconds bounds how long a queued or running task stays tracked.
	// Default: 1800
	TaskTTLSeconds int `env:"INGEST_TASK_TTL" yaml:"taskTtlSeconds"`
}

func NewIngestConfig() *IngestConfig {
	return &IngestConfig{
		Workers:         4,
		QueueSize:       256,
		QueueBackend:    QueueBackendMemory,
		RedisKey:        "tutorwise:ingest",
		SweepAgeSeconds: 600,
		TaskTTLSeconds:  1800,
	}
}

func (c *IngestConfig) Validate() error {
	if c.Workers <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "invalid worker count %d", c.Workers)
	}
	switch c.QueueBackend {
	case QueueBackendMemory:
		if c.QueueSize <= 0 {
			return errors.Wrapf(errors.ErrInvalidConfig, "invalid queue size %d", c.QueueSize)
		}
	case QueueBackendRedis:
		if c.RedisURL == "" {
			return errors.Wrapf(errors.ErrInvalidConfig, "REDIS_URL is required for the redis queue")
		}
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown queue backend %q", c.QueueBackend)
	}
	return nil
}
