package config

type LogConfig struct {
	LogLevel   string `env:"LOG_LEVEL" yaml:"level"`
	LogHandler string `env:"LOG_HANDLER" yaml:"handler"`
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		LogLevel:   "debug",
		LogHandler: "default",
	}
}
