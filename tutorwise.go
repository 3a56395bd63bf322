package tutorwise

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/habiliai/tutorwise/auth"
	"github.com/habiliai/tutorwise/blob"
	"github.com/habiliai/tutorwise/chat"
	"github.com/habiliai/tutorwise/config"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/extractor"
	"github.com/habiliai/tutorwise/ingest"
	"github.com/habiliai/tutorwise/internal/db"
	"github.com/habiliai/tutorwise/internal/gemini"
	"github.com/habiliai/tutorwise/internal/metrics"
	"github.com/habiliai/tutorwise/internal/mylog"
	"github.com/habiliai/tutorwise/memory"
	"github.com/habiliai/tutorwise/server"
	"github.com/habiliai/tutorwise/space"
	"gorm.io/gorm"
)

type (
	// App wires every service of the backend from one Config. Each collaborator
	// is created here and passed down explicitly.
	App struct {
		conf    *config.Config
		logger  *slog.Logger
		metrics *metrics.Metrics

		db      *gorm.DB
		gemini  *gemini.Client
		gcs     *blob.GCS
		storage blob.Storage

		embedder   memory.Embedder
		generator  chat.Generator
		captioner  extractor.Captioner
		summarizer extractor.VideoSummarizer
		ocr        extractor.OCR

		memory       *memory.Service
		spaces       *space.Service
		auth         *auth.Service
		chat         *chat.Service
		extractor    *extractor.Extractor
		orchestrator *ingest.Orchestrator
		queue        ingest.Queue
		pool         *ingest.Pool
		sweeper      *ingest.Sweeper
	}

	Option func(*App)
)

func WithConfig(conf *config.Config) Option {
	return func(a *App) {
		a.conf = conf
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithEmbedder replaces the Gemini embedder.
func WithEmbedder(e memory.Embedder) Option {
	return func(a *App) {
		a.embedder = e
	}
}

// WithGenerator replaces the Gemini chat model.
func WithGenerator(g chat.Generator) Option {
	return func(a *App) {
		a.generator = g
	}
}

func WithCaptioner(c extractor.Captioner) Option {
	return func(a *App) {
		a.captioner = c
	}
}

func WithVideoSummarizer(s extractor.VideoSummarizer) Option {
	return func(a *App) {
		a.summarizer = s
	}
}

func WithOCR(o extractor.OCR) Option {
	return func(a *App) {
		a.ocr = o
	}
}

// New builds the application. The Gemini client is only created when the
// embedder or the generator was not supplied through options.
func New(ctx context.Context, opts ...Option) (_ *App, err error) {
	a := &App{
		conf:    config.NewConfig(),
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = mylog.NewLogger(a.conf.Log.LogLevel, a.conf.Log.LogHandler)
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if err := a.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := a.initRemote(ctx); err != nil {
		return nil, err
	}
	if err := a.initMemory(); err != nil {
		return nil, err
	}
	if err := a.initStorage(ctx); err != nil {
		return nil, err
	}

	a.spaces = space.NewService(a.db, a.logger.With("component", "space"))
	if a.conf.Auth.SecretKey != "" {
		a.auth, err = auth.NewService(a.db, &a.conf.Auth, auth.WithLogger(a.logger.With("component", "auth")))
		if err != nil {
			return nil, err
		}
	} else {
		a.logger.Warn("JWT_SECRET_KEY is not set, auth routes are disabled")
	}

	a.chat = chat.NewService(
		a.memory,
		a.generator,
		chat.WithDefaults(a.conf.Chat.DefaultK, a.conf.Chat.DefaultTemperature),
		chat.WithMaxTokens(a.conf.Chat.MaxTokens),
		chat.WithHistoryTurns(a.conf.Chat.HistoryTurns),
		chat.WithLogger(a.logger.With("component", "chat")),
		chat.WithMetrics(a.metrics),
	)

	if err := a.initIngest(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *App) initDatabase(ctx context.Context) error {
	gormDB, err := db.OpenDB(a.conf.Database.DatabaseUrl)
	if err != nil {
		return err
	}
	a.db = gormDB

	if a.conf.Database.DatabaseAutoMigrate {
		if err := db.AutoMigrate(ctx, a.db); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) initRemote(ctx context.Context) error {
	if a.embedder != nil && a.generator != nil {
		return nil
	}

	client, err := gemini.New(
		ctx,
		&a.conf.Gemini,
		gemini.WithLogger(a.logger.With("component", "gemini")),
		gemini.WithMetrics(a.metrics),
		gemini.WithEmbedDimension(a.conf.Memory.EmbedDim),
	)
	if err != nil {
		return err
	}
	a.gemini = client

	if a.embedder == nil {
		a.embedder = client
	}
	if a.generator == nil {
		a.generator = client
	}
	if a.captioner == nil {
		a.captioner = client
	}
	if a.summarizer == nil {
		a.summarizer = client
	}
	return nil
}

func (a *App) initMemory() error {
	var store memory.Store
	switch a.conf.Memory.Backend {
	case config.MemoryBackendMemory:
		store = memory.NewInMemoryStore()
	case config.MemoryBackendSqlite, "":
		s, err := memory.NewSqliteStore(a.conf.Memory.Path, a.conf.Memory.EmbedDim)
		if err != nil {
			return err
		}
		store = s
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", a.conf.Memory.Backend)
	}

	embedder := a.embedder
	if ttl := a.conf.Memory.EmbedCacheTTLSeconds; ttl > 0 {
		embedder = memory.NewCachedEmbedder(embedder, time.Duration(ttl)*time.Second)
	}

	a.memory = memory.NewService(
		store,
		embedder,
		memory.WithDimension(a.conf.Memory.EmbedDim),
		memory.WithLogger(a.logger.With("component", "memory")),
	)
	return nil
}

func (a *App) initStorage(ctx context.Context) error {
	local, err := blob.NewLocal(a.conf.Storage.UploadDir)
	if err != nil {
		return err
	}
	if a.conf.Storage.GCSBucket != "" {
		if a.gcs, err = blob.NewGCS(ctx, a.conf.Storage.GCSBucket); err != nil {
			return err
		}
	}
	a.storage = blob.NewMux(local, a.gcs)
	return nil
}

func (a *App) initIngest() error {
	if a.ocr == nil {
		a.ocr = &extractor.Tesseract{Languages: a.conf.Extractor.Languages()}
	}
	a.extractor = extractor.New(
		extractor.WithPDFParser(a.conf.Extractor.PDFParser),
		extractor.WithCaptioner(a.captioner),
		extractor.WithVideoSummarizer(a.summarizer),
		extractor.WithOCR(a.ocr),
		extractor.WithLogger(a.logger.With("component", "extractor")),
	)

	a.orchestrator = ingest.NewOrchestrator(
		a.spaces,
		a.storage,
		a.extractor,
		a.memory,
		ingest.WithLogger(a.logger.With("component", "ingest")),
		ingest.WithMetrics(a.metrics),
	)

	switch a.conf.Ingest.QueueBackend {
	case config.QueueBackendRedis:
		q, err := ingest.NewRedisQueue(a.conf.Ingest.RedisURL, a.conf.Ingest.RedisKey)
		if err != nil {
			return err
		}
		a.queue = q
	default:
		a.queue = ingest.NewMemoryQueue(a.conf.Ingest.QueueSize)
	}

	a.pool = ingest.NewPool(
		a.queue,
		a.orchestrator,
		ingest.WithWorkers(a.conf.Ingest.Workers),
		ingest.WithTracker(ingest.NewTracker(
			ingest.DefaultTrackerRetention,
			ingest.WithActiveTTL(time.Duration(a.conf.Ingest.TaskTTLSeconds)*time.Second),
		)),
		ingest.WithPoolLogger(a.logger.With("component", "ingest-pool")),
		ingest.WithPoolMetrics(a.metrics),
	)

	if interval := a.conf.Ingest.SweepIntervalSeconds; interval > 0 {
		a.sweeper = ingest.NewSweeper(
			a.spaces,
			a.pool,
			time.Duration(interval)*time.Second,
			time.Duration(a.conf.Ingest.SweepAgeSeconds)*time.Second,
			a.logger.With("component", "sweeper"),
		)
	}
	return nil
}

func (a *App) Config() *config.Config {
	return a.conf
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Spaces() *space.Service {
	return a.spaces
}

func (a *App) Memory() *memory.Service {
	return a.memory
}

func (a *App) Chat() *chat.Service {
	return a.chat
}

func (a *App) Pool() *ingest.Pool {
	return a.pool
}

// Ingest runs the ingestion of one content synchronously.
func (a *App) Ingest(ctx context.Context, contentID string) error {
	return a.orchestrator.Ingest(ctx, contentID)
}

// Handler returns the HTTP surface of the application.
func (a *App) Handler() http.Handler {
	return server.NewHandler(server.Deps{
		Spaces:       a.spaces,
		Chat:         a.chat,
		Ingest:       a.pool,
		Storage:      a.storage,
		Auth:         a.auth,
		Metrics:      a.metrics,
		Logger:       a.logger.With("component", "server"),
		AuthRequired: a.conf.Server.AuthRequired,
	})
}

// RunWorkers processes queued ingestion tasks, and sweeps stale pending
// contents when enabled, until ctx is done.
func (a *App) RunWorkers(ctx context.Context) error {
	if a.sweeper != nil {
		if err := a.sweeper.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := a.sweeper.Stop(); err != nil {
				a.logger.Warn("failed to stop sweeper", "err", err)
			}
		}()
	}
	return a.pool.Run(ctx)
}

func (a *App) Close() error {
	var errs []error
	if a.queue != nil {
		errs = append(errs, a.queue.Close())
	}
	if a.memory != nil {
		errs = append(errs, a.memory.Close())
	}
	if a.gcs != nil {
		errs = append(errs, a.gcs.Close())
	}
	if a.db != nil {
		errs = append(errs, db.CloseDB(a.db))
	}
	return errors.Join(errs...)
}
