package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mylog"
	"github.com/habiliai/tutorwise/memory"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4096
)

type (
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	Request struct {
		UserID  string    `json:"user_id"`
		SpaceID string    `json:"space_id"`
		Message string    `json:"message"`
		History []Message `json:"history,omitempty"`
		// K defaults to 5 when not positive
		K int `json:"k,omitempty"`
		// Temperature defaults to 0.3 when nil
		Temperature *float64 `json:"temperature,omitempty"`
	}

	Response struct {
		Answer  string   `json:"answer"`
		Context []string `json:"context"`
	}

	GenerateRequest struct {
		Prompt      string
		Temperature float64
		MaxTokens   int
	}

	Generator interface {
		Generate(ctx context.Context, req GenerateRequest) (string, error)
	}

	Retriever interface {
		Retrieve(ctx context.Context, req memory.RetrieveRequest) ([]string, error)
	}

	Service struct {
		retriever    Retriever
		generator    Generator
		maxTokens    int
		historyTurns int
		defaultK     int
		defaultTemp  float64
		logger       *slog.Logger
		metrics      *metrics.Metrics
	}

	Option func(*Service)
)

func WithMaxTokens(n int) Option {
	return func(s *Service) {
		s.maxTokens = n
	}
}

func WithHistoryTurns(n int) Option {
	return func(s *Service) {
		s.historyTurns = n
	}
}

func WithDefaults(k int, temperature float64) Option {
	return func(s *Service) {
		s.defaultK = k
		s.defaultTemp = temperature
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(retriever Retriever, generator Generator, opts ...Option) *Service {
	s := &Service{
		retriever:    retriever,
		generator:    generator,
		maxTokens:    DefaultMaxTokens,
		historyTurns: DefaultHistoryTurns,
		defaultK:     memory.DefaultK,
		defaultTemp:  DefaultTemperature,
		logger:       mylog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScopedQuery prefixes the message with the space id so retrieval leans
// towards records mentioning that space.
func ScopedQuery(spaceID, message string) string {
	return "[" + spaceID + "] " + message
}

func (r *Request) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "user_id is required")
	}
	if strings.TrimSpace(r.SpaceID) == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "space_id is required")
	}
	for i, m := range r.History {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return errors.Wrapf(errors.ErrInvalidParams, "history[%d]: role must be user or assistant, got %q", i, m.Role)
		}
	}
	return nil
}

// Answer retrieves context for the message, builds the prompt and asks the
// generator. Retrieval and generation failures are returned unchanged.
func (s *Service) Answer(ctx context.Context, req Request) (resp *Response, err error) {
	started := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ObserveChat(outcome, started)
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	k := req.K
	if k <= 0 {
		k = s.defaultK
	}
	temperature := s.defaultTemp
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	snippets, err := s.retriever.Retrieve(ctx, memory.RetrieveRequest{
		UserID: req.UserID,
		Query:  ScopedQuery(req.SpaceID, req.Message),
		K:      k,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to retrieve context")
	}
	if snippets == nil {
		snippets = []string{}
	}

	prompt, err := BuildPrompt(PromptValues{
		Snippets: snippets,
		History:  req.History,
		Message:  req.Message,
	}, s.historyTurns)
	if err != nil {
		return nil, err
	}

	answer, err := s.generator.Generate(ctx, GenerateRequest{
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate answer")
	}

	s.logger.Debug("answered chat", "user_id", req.UserID, "space_id", req.SpaceID, "snippets", len(snippets))

	return &Response{
		Answer:  strings.TrimSpace(answer),
		Context: snippets,
	}, nil
}
