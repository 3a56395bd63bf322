package config

type ChatConfig struct {
	DefaultK           int     `env:"CHAT_DEFAULT_K" yaml:"defaultK"`
	DefaultTemperature float64 `env:"CHAT_DEFAULT_TEMPERATURE" yaml:"defaultTemperature"`
	MaxTokens          int     `env:"CHAT_MAX_TOKENS" yaml:"maxTokens"`
	HistoryTurns       int     `env:"CHAT_HISTORY_TURNS" yaml:"historyTurns"`
}

func NewChatConfig() *ChatConfig {
	return &ChatConfig{
		DefaultK:           5,
		DefaultTemperature: 0.3,
		MaxTokens:          4096,
		HistoryTurns:       6,
	}
}
