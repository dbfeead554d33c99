// cmd/review-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appaws "review-pipeline/internal/common/aws"
	"review-pipeline/internal/common/config"
	"review-pipeline/internal/common/database"
	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/common/observability"
	"review-pipeline/internal/common/validation"
	"review-pipeline/internal/corpus"
	"review-pipeline/internal/judge"
	"review-pipeline/internal/models"
	"review-pipeline/internal/pipeline"
	"review-pipeline/internal/server"
	"review-pipeline/internal/store"
	"review-pipeline/internal/tables"

	"review-pipeline/internal/stages/categorization"
	"review-pipeline/internal/stages/costanalysis"
	"review-pipeline/internal/stages/externalsimilarity"
	"review-pipeline/internal/stages/impactanalysis"
	"review-pipeline/internal/stages/implementation"
	"review-pipeline/internal/stages/internalsimilarity"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting review manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("review-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Record store ---
	recordStore := store.NewPostgresStore(pg.DB, log)

	// --- Scoring tables ---
	tbl, err := tables.Load(cfg.Pipeline.TablesPath)
	if err != nil {
		zapLog.Fatal("scoring tables load failed", zap.Error(err))
	}

	// --- Corpus provider (Elasticsearch behind a Redis read-through cache) ---
	var corpusProvider corpus.Provider = corpus.NewElasticsearchProvider(
		esClient.Client,
		cfg.Database.Elasticsearch.CorpusIndex,
		log,
	)
	if cfg.Pipeline.CorpusCacheTTL > 0 {
		corpusProvider = corpus.NewCachedProvider(
			corpusProvider,
			redis.Client,
			time.Duration(cfg.Pipeline.CorpusCacheTTL)*time.Second,
			log,
		)
	}

	// --- Optional remote judge ---
	var remoteJudge externalsimilarity.Judge
	if cfg.Judge.Enabled {
		remoteJudge = judge.NewClient(&judge.Config{
			BaseURL:    cfg.Judge.BaseURL,
			APIKey:     cfg.Judge.APIKey,
			Timeout:    config.GetDuration(cfg.Judge.Timeout),
			MaxRetries: cfg.Judge.MaxRetries,
		}, log)
		zapLog.Info("Remote judge enabled", zap.String("baseURL", cfg.Judge.BaseURL))
	}

	// --- Stage evaluators ---
	evaluators := map[models.StageType]pipeline.Evaluator{
		models.StageExternalIdea:   externalsimilarity.NewHandler(externalsimilarity.LoadConfig(tbl), corpusProvider, remoteJudge, log),
		models.StageInternalIdea:   internalsimilarity.NewHandler(internalsimilarity.LoadConfig(tbl), recordStore, log),
		models.StageCategorization: categorization.NewHandler(categorization.LoadConfig(tbl), log),
		models.StageImplementation: implementation.NewHandler(implementation.LoadConfig(tbl), log),
		models.StageCostAnalysis:   costanalysis.NewHandler(costanalysis.LoadConfig(tbl), log),
		models.StageImpactAnalysis: impactanalysis.NewHandler(impactanalysis.LoadConfig(tbl), log),
	}
	zapLog.Info("All 6 stage evaluators registered successfully")

	// --- Event sinks ---
	var sinks pipeline.CompositeSink

	if cfg.Notifications.SNS.Enabled {
		snsClient, err := appaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		sinks = append(sinks, pipeline.NewSNSSink(snsClient, cfg.Notifications.SNS.TopicARN, log))
		zapLog.Info("SNS event sink enabled", zap.String("topicArn", cfg.Notifications.SNS.TopicARN))
	}

	if cfg.Notifications.Email.Enabled {
		sesClient, err := appaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		sinks = append(sinks, pipeline.NewRejectionNotifier(
			sesClient,
			cfg.Notifications.Email.FromEmail,
			cfg.Notifications.Email.ToEmail,
			log,
		))
		zapLog.Info("Rejection email notifier enabled", zap.String("toEmail", cfg.Notifications.Email.ToEmail))
	}

	var sink pipeline.EventSink = pipeline.NoopSink{}
	if len(sinks) > 0 {
		sink = sinks
	}

	// --- Orchestrator ---
	orchestrator := pipeline.NewOrchestrator(recordStore, evaluators, sink, log)

	// --- HTTP server ---
	validator, err := validation.NewApplicationValidator()
	if err != nil {
		zapLog.Fatal("application validator failed", zap.Error(err))
	}

	e := server.New(&server.Dependencies{
		Pipeline:  orchestrator,
		Store:     recordStore,
		Validator: validator,
		Logger:    log,
		Version:   cfg.App.Version,
	})

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping review manager...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Review manager stopped gracefully")
}
