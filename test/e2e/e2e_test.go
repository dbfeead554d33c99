// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-pipeline/internal/common/config"
	"review-pipeline/internal/common/database"
	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/common/validation"
	"review-pipeline/internal/corpus"
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

const corpusIndex = "corpus-e2e"

// submissionPayload passes every stage against the seeded corpus: no prior-art
// overlap, no duplicate sibling, an experienced five-person team on a simple
// build, and a budget far above the estimate.
var submissionPayload = map[string]interface{}{
	"submitterId": "user-e2e-001",
	"title":       "ClinicFlow",
	"description": "Every patient loses critical hours waiting for appointments; our scheduling engine cuts waits by 40%. " +
		"A global problem affecting millions of users, with a novel matching approach, subscription revenue, " +
		"and a seamless intuitive interface. Built as a simple crud website by an experienced team that previously built similar products.",
	"teamSize":      5,
	"estimatedCost": 500000,
}

func requireE2E(t *testing.T) {
	if os.Getenv("E2E_TESTS") != "true" {
		t.Skip("set E2E_TESTS=true to run against live PostgreSQL, Elasticsearch, and Redis")
	}
}

func loadE2EConfig(t *testing.T) *config.Config {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Force localhost for e2e runs
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	cfg.Database.Elasticsearch.CorpusIndex = corpusIndex
	return cfg
}

func TestFullE2E(t *testing.T) {
	requireE2E(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := loadE2EConfig(t)

	t.Log("🚀 Starting full pipeline test with real services...")

	// 1. Check all external services are available
	pg, rdb, es := assertAllServicesConnectivity(t, ctx, cfg)
	defer pg.Close()
	defer rdb.Close()

	// 2. Create DB tables and reset state
	createDatabaseTables(t, ctx, pg.DB)

	// 3. Seed the comparison corpus
	seedCorpus(t, es)

	// 4. Run the full pipeline over HTTP
	srv := newPipelineServer(t, cfg, pg, rdb, es)
	defer srv.Close()

	runFullPipeline(t, ctx, srv.URL)

	t.Log("✅ ALL TESTS PASSED — full pipeline run successful!")
}

// ==========================
// 1. Service Connectivity
// ==========================
func assertAllServicesConnectivity(t *testing.T, ctx context.Context, cfg *config.Config) (*database.PostgresClient, *database.RedisClient, *database.ElasticsearchClient) {
	t.Log("🔍 Checking service connectivity...")

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "❌ PostgreSQL ping failed")
	t.Log("✅ PostgreSQL connected")

	// --- Redis ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "❌ Redis ping failed")
	require.NoError(t, rdb.Client.FlushDB(ctx).Err(), "❌ Redis flush failed")
	t.Log("✅ Redis connected")

	// --- Elasticsearch ---
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "❌ Elasticsearch client creation failed")
	require.NoError(t, es.Ping(), "❌ Elasticsearch ping failed")
	t.Log("✅ Elasticsearch connected")

	return pg, rdb, es
}

// ==========================
// 2. Database Tables Setup
// ==========================
func createDatabaseTables(t *testing.T, ctx context.Context, db *sql.DB) {
	t.Log("🔧 Creating database tables...")

	queries := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id VARCHAR(255) PRIMARY KEY,
			submitter_id VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			problem_statement TEXT,
			solution TEXT,
			tech_stack JSONB,
			team_size INTEGER DEFAULT 0,
			team_members JSONB,
			estimated_cost NUMERIC,
			category VARCHAR(100),
			status VARCHAR(50) NOT NULL,
			rejection_reason TEXT,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id VARCHAR(255) PRIMARY KEY,
			application_id VARCHAR(255) NOT NULL,
			stage_type VARCHAR(50) NOT NULL,
			result VARCHAR(50) NOT NULL,
			score DOUBLE PRECISION,
			feedback TEXT,
			metadata JSONB,
			error_message TEXT,
			processed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		_, err := db.ExecContext(ctx, query)
		require.NoError(t, err, "❌ Failed to create table")
	}

	// Each run starts from a clean slate so duplicate detection is
	// deterministic.
	_, err := db.ExecContext(ctx, `DELETE FROM reviews`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM applications`)
	require.NoError(t, err)

	t.Log("✅ Database tables created and reset")
}

// ==========================
// 3. Corpus Seeding
// ==========================
func seedCorpus(t *testing.T, es *database.ElasticsearchClient) {
	t.Log("🌱 Seeding comparison corpus...")

	entry := models.CorpusEntry{
		Name:        "CircuitHub",
		OneLiner:    "On-demand electronics manufacturing",
		Description: "Upload your PCB design and get assembled electronics hardware in days",
		Tags:        []string{"hardware", "manufacturing"},
		Industry:    "industrial",
	}
	body, err := json.Marshal(entry)
	require.NoError(t, err)

	res, err := es.Client.Index(
		corpusIndex,
		bytes.NewReader(body),
		es.Client.Index.WithDocumentID("circuithub"),
		es.Client.Index.WithRefresh("true"),
	)
	require.NoError(t, err, "❌ Corpus indexing failed")
	defer res.Body.Close()
	require.False(t, res.IsError(), "❌ Corpus indexing returned error: %s", res.Status())

	t.Log("✅ Corpus seeded")
}

// ==========================
// 4. Full Pipeline over HTTP
// ==========================
func newPipelineServer(t *testing.T, cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient, es *database.ElasticsearchClient) *httptest.Server {
	log := logger.NewTestLogger(t)

	recordStore := store.NewPostgresStore(pg.DB, log)

	var provider corpus.Provider = corpus.NewElasticsearchProvider(es.Client, corpusIndex, log)
	provider = corpus.NewCachedProvider(provider, rdb.Client, time.Minute, log)

	tbl := tables.Defaults()
	evaluators := map[models.StageType]pipeline.Evaluator{
		models.StageExternalIdea:   externalsimilarity.NewHandler(externalsimilarity.LoadConfig(tbl), provider, nil, log),
		models.StageInternalIdea:   internalsimilarity.NewHandler(internalsimilarity.LoadConfig(tbl), recordStore, log),
		models.StageCategorization: categorization.NewHandler(categorization.LoadConfig(tbl), log),
		models.StageImplementation: implementation.NewHandler(implementation.LoadConfig(tbl), log),
		models.StageCostAnalysis:   costanalysis.NewHandler(costanalysis.LoadConfig(tbl), log),
		models.StageImpactAnalysis: impactanalysis.NewHandler(impactanalysis.LoadConfig(tbl), log),
	}

	orchestrator := pipeline.NewOrchestrator(recordStore, evaluators, pipeline.NoopSink{}, log)

	validator, err := validation.NewApplicationValidator()
	require.NoError(t, err)

	e := server.New(&server.Dependencies{
		Pipeline:  orchestrator,
		Store:     recordStore,
		Validator: validator,
		Logger:    log,
		Version:   cfg.App.Version,
	})
	return httptest.NewServer(e)
}

func runFullPipeline(t *testing.T, ctx context.Context, baseURL string) {
	t.Log("🧪 Running the pipeline end to end...")

	// --- Submit and run the first application: every stage approves ---
	firstID := submitApplication(t, ctx, baseURL, submissionPayload)

	status := runPipeline(t, ctx, baseURL, firstID)
	assert.Equal(t, models.StatusUnderReview, status.Status)
	assert.Equal(t, 100.0, status.Progress)
	require.Len(t, status.Stages, len(models.StageOrder))
	for _, stage := range status.Stages {
		assert.Equal(t, models.ResultApproved, stage.Result, "stage %s", stage.Stage)
	}
	t.Log("✅ First application approved through all stages")

	// --- Detailed report carries the assigned category ---
	report := getReport(t, ctx, baseURL, firstID)
	assert.Equal(t, "ClinicFlow", report.Title)
	assert.Equal(t, "healthtech", report.Category)
	assert.Empty(t, report.RejectionReason)
	t.Log("✅ Detailed report complete, category assigned:", report.Category)

	// --- A verbatim resubmission is caught as an internal duplicate ---
	secondID := submitApplication(t, ctx, baseURL, submissionPayload)

	status = runPipeline(t, ctx, baseURL, secondID)
	assert.Equal(t, models.StatusRejected, status.Status)

	byStage := map[models.StageType]models.ReviewResult{}
	for _, stage := range status.Stages {
		byStage[stage.Stage] = stage.Result
	}
	assert.Equal(t, models.ResultApproved, byStage[models.StageExternalIdea])
	assert.Equal(t, models.ResultRejected, byStage[models.StageInternalIdea])
	assert.Equal(t, models.ResultPending, byStage[models.StageCategorization])

	report = getReport(t, ctx, baseURL, secondID)
	assert.NotEmpty(t, report.RejectionReason)
	t.Log("✅ Duplicate submission rejected:", report.RejectionReason)
}

func submitApplication(t *testing.T, ctx context.Context, baseURL string, payload map[string]interface{}) string {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/applications", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func runPipeline(t *testing.T, ctx context.Context, baseURL, id string) *pipeline.PipelineStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/pipeline/%s/run", baseURL, id), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status pipeline.PipelineStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	return &status
}

func getReport(t *testing.T, ctx context.Context, baseURL, id string) *pipeline.DetailedReport {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/pipeline/%s/report", baseURL, id), nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report pipeline.DetailedReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	return &report
}

// ==========================
// Benchmark Tests
// ==========================
func benchmarkApplication() *models.Application {
	cost := 500000.0
	return &models.Application{
		ID:          "bench-001",
		SubmitterID: "user-bench",
		Title:       "ClinicFlow",
		Description: "Every patient loses critical hours waiting for appointments; our scheduling engine cuts waits by 40%. " +
			"Built as a simple crud website by an experienced team that previously built similar products.",
		TeamSize:      5,
		EstimatedCost: &cost,
		Status:        models.StatusSubmitted,
		IsActive:      true,
	}
}

func BenchmarkHandler_Categorization(b *testing.B) {
	handler := categorization.NewHandler(categorization.LoadConfig(tables.Defaults()), logger.NewNoOpLogger())
	app := benchmarkApplication()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Evaluate(context.Background(), app)
	}
}

func BenchmarkHandler_Implementation(b *testing.B) {
	handler := implementation.NewHandler(implementation.LoadConfig(tables.Defaults()), logger.NewNoOpLogger())
	app := benchmarkApplication()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Evaluate(context.Background(), app)
	}
}

func BenchmarkHandler_CostAnalysis(b *testing.B) {
	handler := costanalysis.NewHandler(costanalysis.LoadConfig(tables.Defaults()), logger.NewNoOpLogger())
	app := benchmarkApplication()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Evaluate(context.Background(), app)
	}
}

func BenchmarkHandler_ImpactAnalysis(b *testing.B) {
	handler := impactanalysis.NewHandler(impactanalysis.LoadConfig(tables.Defaults()), logger.NewNoOpLogger())
	app := benchmarkApplication()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Evaluate(context.Background(), app)
	}
}

func BenchmarkHandler_ExternalSimilarity(b *testing.B) {
	provider := &corpus.StaticProvider{Entries: []models.CorpusEntry{
		{
			Name:        "CircuitHub",
			OneLiner:    "On-demand electronics manufacturing",
			Description: "Upload your PCB design and get assembled electronics hardware in days",
			Tags:        []string{"hardware", "manufacturing"},
			Industry:    "industrial",
		},
	}}
	handler := externalsimilarity.NewHandler(externalsimilarity.LoadConfig(tables.Defaults()), provider, nil, logger.NewNoOpLogger())
	app := benchmarkApplication()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Evaluate(context.Background(), app)
	}
}
