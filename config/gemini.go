package config

import (
	"github.com/habiliai/tutorwise/errors"
)

type GeminiConfig struct {
	// APIKey authenticates every remote call (embedding, chat completion,
	// captioning, video summarization).
	APIKey string `env:"GOOGLE_API_KEY" yaml:"apiKey"`

	// BaseURL overrides the Gemini API endpoint. Empty uses the SDK default.
	BaseURL string `env:"GEMINI_BASE_URL" yaml:"baseUrl"`

	EmbedModel string `env:"EMBED_MODEL" yaml:"embedModel"`
	LLMModel   string `env:"LLM_MODEL" yaml:"llmModel"`
	ImageModel string `env:"IMAGE_MODEL" yaml:"imageModel"`
	VideoModel string `env:"VIDEO_MODEL" yaml:"videoModel"`

	// Shared HTTP pool settings
	// TimeoutSeconds bounds every single remote request
	// Default: 30
	TimeoutSeconds int `env:"HTTP_TIMEOUT" yaml:"timeoutSeconds"`

	// MaxConns caps concurrent connections per host
	// Default: 50
	MaxConns int `env:"HTTP_MAX_CONNS" yaml:"maxConns"`

	// MaxIdleConns is the keep-alive pool size
	// Default: 20
	MaxIdleConns int `env:"HTTP_MAX_IDLE_CONNS" yaml:"maxIdleConns"`

	CaptionPrompt string `env:"CAPTION_PROMPT" yaml:"captionPrompt"`
	VideoPrompt   string `env:"VIDEO_PROMPT" yaml:"videoPrompt"`
}

func NewGeminiConfig() *GeminiConfig {
	return &GeminiConfig{
		EmbedModel:     "text-embedding-004",
		LLMModel:       "gemini-2.0-flash-lite",
		ImageModel:     "gemma-3-12b-it",
		VideoModel:     "gemma-3-12b-it",
		TimeoutSeconds: 30,
		MaxConns:       50,
		MaxIdleConns:   20,
		CaptionPrompt:  "Describe this image.",
		VideoPrompt:    "Summarize this video. Then create a quiz with an answer key based on the information in this video.",
	}
}

func (c *GeminiConfig) Validate() error {
	if c.APIKey == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "GOOGLE_API_KEY is required")
	}
	if c.TimeoutSeconds <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "invalid http timeout %d", c.TimeoutSeconds)
	}
	return nil
}
