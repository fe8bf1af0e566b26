// cmd/voice-worker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shopsense-voice/internal/api"
	"shopsense-voice/internal/catalog"
	"shopsense-voice/internal/common/camunda"
	"shopsense-voice/internal/common/config"
	"shopsense-voice/internal/common/database"
	apperrors "shopsense-voice/internal/common/errors"
	"shopsense-voice/internal/common/logger"
	"shopsense-voice/internal/common/observability"
	"shopsense-voice/internal/nlu"
	"shopsense-voice/internal/nlu/classifier"
	"shopsense-voice/internal/nlu/session"
	"shopsense-voice/internal/nlu/vocabulary"

	pvc "shopsense-voice/internal/workers/voice/parse-voice-command"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting voice worker...",
		zap.String("environment", cfg.App.Environment),
		zap.String("classifier", cfg.Classifier.Backend),
	)

	obs, err := observability.New(cfg.App.Name, nil)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]api.Check{}

	// --- Vocabulary ---
	vocab, err := loadVocabulary(cfg.NLU.VocabularyFile)
	if err != nil {
		zapLog.Fatal("vocabulary load failed", zap.Error(err))
	}

	// --- Redis (optional classifier cache) ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Enabled() {
		redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		checks["redis"] = redis.Ping
		zapLog.Info("Redis connected successfully")
	}

	// --- Classifier backend ---
	backend := newBackend(cfg, log)
	if redis != nil && cfg.Classifier.CacheTTL > 0 {
		backend = classifier.NewCaching(backend, redis.Client, config.GetDuration(cfg.Classifier.CacheTTL), log)
	}

	engine := nlu.New(backend, nlu.Options{
		Vocabulary:          vocab,
		NormalizerThreshold: cfg.NLU.NormalizerThreshold,
		MinFuzzyLength:      cfg.NLU.MinFuzzyLength,
		EntityThreshold:     cfg.NLU.EntityThreshold,
		MinConfidence:       cfg.NLU.MinConfidence,
	}, log)

	// --- PostgreSQL (optional product catalog) ---
	var products catalog.Source
	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			// Test the connection with context
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			return nil
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		checks["postgres"] = pg.Ping
		products = catalog.NewRepository(pg.DB, 5*time.Second)
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Session ordering ---
	sessions := session.NewTracker()
	go pruneSessions(ctx, sessions, config.GetDuration(cfg.Session.PruneInterval), config.GetDuration(cfg.Session.MaxIdle), log)

	wcfg := pvc.LoadConfig(cfg)
	handler := pvc.NewHandler(wcfg, engine, products, sessions, obs, log)

	// --- Zeebe worker (optional) ---
	var jobWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, pvc.TaskType) {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		checks["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		jobWorker = camunda.NewWorker(zeebe.GetClient(), pvc.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, handler, log)
	}

	// --- Parse API, health & metrics ---
	server := api.NewServer(api.Options{
		Parser:       handler,
		Checks:       checks,
		ParseTimeout: config.GetDuration(cfg.HTTP.ParseTimeout),
		Obs:          obs,
		Logger:       log,
	})

	err = server.Run(ctx,
		cfg.HTTP.Address,
		config.GetDuration(cfg.HTTP.ReadTimeout),
		config.GetDuration(cfg.HTTP.WriteTimeout),
		config.GetDuration(cfg.HTTP.ShutdownTimeout),
	)
	if err != nil {
		zapLog.Error("http server failed", zap.Error(err))
	}

	// --- Graceful Shutdown ---
	zapLog.Info("Shutdown signal received, stopping worker...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if jobWorker != nil {
		jobWorker.Stop(shutdownCtx)
	}

	zapLog.Info("Voice worker stopped gracefully")
}

// loadVocabulary returns the built-in vocabulary, or the one described by
// path when set.
func loadVocabulary(path string) (*vocabulary.Vocabulary, error) {
	if path == "" {
		return vocabulary.Default(), nil
	}
	v, err := vocabulary.LoadFile(path)
	if err != nil {
		return nil, apperrors.NewVocabularyInvalidError(err)
	}
	return v, nil
}

// newBackend selects the zero-shot backend. Remote models load lazily so a
// cold or missing model never blocks startup.
func newBackend(cfg *config.Config, log logger.Logger) classifier.Classifier {
	switch cfg.Classifier.Backend {
	case config.BackendHTTP:
		h := cfg.Classifier.HTTP
		return classifier.NewHTTP(classifier.HTTPConfig{
			URL:         h.URL,
			APIKey:      h.APIKey,
			Timeout:     config.GetDuration(h.Timeout),
			MaxRetries:  h.MaxRetries,
			BaseBackoff: config.GetDuration(h.Backoff),
		}, log)

	case config.BackendGenAI:
		g := cfg.Classifier.GenAI
		return classifier.NewLoader(func(ctx context.Context) (classifier.Classifier, error) {
			embedder, err := classifier.NewGeminiEmbedder(ctx, g.APIKey, g.Model)
			if err != nil {
				return nil, err
			}
			e := classifier.NewEmbedding(embedder, g.Temperature)
			if err := e.Warm(ctx, classifier.LabelTexts()); err != nil {
				return nil, err
			}
			log.Info("embedding classifier loaded", map[string]interface{}{"model": g.Model})
			return e, nil
		})

	default:
		return classifier.NewKeyword()
	}
}

func pruneSessions(ctx context.Context, sessions *session.Tracker, every, maxIdle time.Duration, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(maxIdle); n > 0 {
				log.Debug("pruned idle sessions", map[string]interface{}{
					"pruned":    n,
					"remaining": sessions.Len(),
				})
			}
		}
	}
}
