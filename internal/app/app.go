// -----------------------------------------------------------------------
// App - constructs and owns every application component
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/handlers"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/services/extraction"
	"github.com/ternarybob/formforge/internal/services/fill"
	"github.com/ternarybob/formforge/internal/services/inference"
	"github.com/ternarybob/formforge/internal/services/llm"
	"github.com/ternarybob/formforge/internal/services/mailer"
	"github.com/ternarybob/formforge/internal/services/ratelimit"
	"github.com/ternarybob/formforge/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	ExtractionService *extraction.Service
	InferenceService  *inference.Service
	FillService       *fill.Service
	MailerService     *mailer.Service
	RateLimiter       *ratelimit.Limiter

	UploadHandler     *handlers.UploadHandler
	FormHandler       *handlers.FormHandler
	SubmissionHandler *handlers.SubmissionHandler
	StatusHandler     *handlers.StatusHandler

	llmProvider llm.Provider
	scheduler   *cron.Cron
}

// New wires the application together: storage, engines, notifier, limiter
// and handlers.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provider := newLLMProvider(config, logger)

	retry := llm.NewDefaultRetryConfig()
	if config.LLM.MaxRetries >= 0 {
		retry.MaxRetries = config.LLM.MaxRetries
	}

	extractionService := extraction.NewService(&config.OCR, logger)
	inferenceService := inference.NewService(provider, retry, logger)
	fillService := fill.NewService(logger)
	mailerService := mailer.NewService(&config.SMTP, logger)
	limiter := ratelimit.NewLimiter(&config.RateLimit, logger)

	a := &App{
		Config:            config,
		Logger:            logger,
		StorageManager:    storageManager,
		ExtractionService: extractionService,
		InferenceService:  inferenceService,
		FillService:       fillService,
		MailerService:     mailerService,
		RateLimiter:       limiter,
		llmProvider:       provider,
	}

	a.UploadHandler = handlers.NewUploadHandler(
		config,
		extractionService,
		inferenceService,
		storageManager.FormStorage(),
		storageManager.FileStorage(),
		logger,
	)
	a.FormHandler = handlers.NewFormHandler(storageManager.FormStorage(), fillService, logger)
	a.SubmissionHandler = handlers.NewSubmissionHandler(
		storageManager.FormStorage(),
		storageManager.SubmissionStorage(),
		storageManager.FileStorage(),
		fillService,
		mailerService,
		config.SMTP.OwnerEmail,
		logger,
	)
	a.StatusHandler = handlers.NewStatusHandler(config, logger)

	if err := a.startScheduler(); err != nil {
		storageManager.Close()
		return nil, err
	}

	return a, nil
}

// newLLMProvider builds the configured provider. A missing API key is not
// fatal: the AI strategy then resolves to the sample fallback.
func newLLMProvider(config *common.Config, logger arbor.ILogger) llm.Provider {
	var provider llm.Provider
	var err error

	switch config.LLM.DefaultProvider {
	case "claude":
		provider, err = llm.NewClaudeProvider(&config.Claude, &config.LLM, logger)
	default:
		provider, err = llm.NewGeminiProvider(&config.Gemini, &config.LLM, logger)
	}
	if err != nil {
		logger.Warn().Err(err).Str("provider", config.LLM.DefaultProvider).
			Msg("LLM provider unavailable, AI inference will use the sample fallback")
		return nil
	}
	return provider
}

// startScheduler runs the rate limiter expiry sweep on its configured
// schedule.
func (a *App) startScheduler() error {
	a.scheduler = cron.New()

	schedule := a.Config.RateLimit.SweepSchedule
	if schedule == "" {
		schedule = "@every 1m"
	}
	if _, err := a.scheduler.AddFunc(schedule, a.RateLimiter.Sweep); err != nil {
		return fmt.Errorf("invalid rate limit sweep schedule %q: %w", schedule, err)
	}

	a.scheduler.Start()
	a.Logger.Debug().Str("schedule", schedule).Msg("Rate limiter sweep scheduled")
	return nil
}

// Close shuts down background work and the storage layer.
func (a *App) Close() error {
	if a.scheduler != nil {
		ctx := a.scheduler.Stop()
		<-ctx.Done()
	}

	if a.llmProvider != nil {
		if err := a.llmProvider.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM provider")
		}
	}

	if a.StorageManager != nil {
		return a.StorageManager.Close()
	}
	return nil
}

// Shutdown is a context-aware alias for Close used by the server lifecycle.
func (a *App) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- a.Close() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
