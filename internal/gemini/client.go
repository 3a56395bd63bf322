package gemini

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/habiliai/tutorwise/config"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mylog"
	"google.golang.org/genai"
)

// Client is the single gateway to the Gemini API. Every remote operation of
// the application (embedding, chat completion, image captioning and video
// summarization) goes through one genai client sharing one HTTP pool.
type Client struct {
	client *genai.Client

	embedModel    string
	llmModel      string
	imageModel    string
	videoModel    string
	embedDim      int32
	captionPrompt string
	videoPrompt   string
	pollInterval  time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithEmbedDimension(dim int) Option {
	return func(c *Client) {
		c.embedDim = int32(dim)
	}
}

// WithPollInterval sets how often an uploaded video is checked for readiness.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// NewHTTPClient builds the pooled HTTP client shared by every remote call.
func NewHTTPClient(conf *config.GeminiConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxConnsPerHost:     conf.MaxConns,
		MaxIdleConns:        conf.MaxIdleConns,
		MaxIdleConnsPerHost: conf.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(conf.TimeoutSeconds) * time.Second,
	}
}

func New(ctx context.Context, conf *config.GeminiConfig, opts ...Option) (*Client, error) {
	if conf.APIKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "GOOGLE_API_KEY is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     conf.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: NewHTTPClient(conf),
	}
	if conf.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: conf.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create genai client")
	}

	c := &Client{
		client:        client,
		embedModel:    conf.EmbedModel,
		llmModel:      conf.LLMModel,
		imageModel:    conf.ImageModel,
		videoModel:    conf.VideoModel,
		embedDim:      768,
		captionPrompt: conf.CaptionPrompt,
		videoPrompt:   conf.VideoPrompt,
		pollInterval:  2 * time.Second,
		logger:        mylog.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// remoteError marks a failure of the model provider. It matches
// errors.ErrRemote and the underlying cause.
type remoteError struct {
	op  string
	err error
}

func (e *remoteError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *remoteError) Unwrap() []error {
	return []error{errors.ErrRemote, e.err}
}

func (c *Client) observe(op string, started time.Time, err error) {
	c.metrics.ObserveRemote(op, started, err)
	if err != nil {
		c.logger.Warn("remote call failed", "op", op, "err", err, "elapsed", time.Since(started))
	}
}
