package commands

import (
	"fmt"

	"github.com/wonny/factorlab/internal/classifier"
	"github.com/wonny/factorlab/internal/correlation"
	"github.com/wonny/factorlab/internal/data/repos"
	"github.com/wonny/factorlab/internal/evaluation"
	"github.com/wonny/factorlab/internal/ic"
	"github.com/wonny/factorlab/internal/scoring"
	"github.com/wonny/factorlab/internal/stats"
	"github.com/wonny/factorlab/internal/validation"
	"github.com/wonny/factorlab/pkg/config"
	"github.com/wonny/factorlab/pkg/database"
	"github.com/wonny/factorlab/pkg/logger"
	"github.com/wonny/factorlab/pkg/redis"
)

// app bundles the wired evaluation stack shared by the CLI commands.
// Built once per command invocation, closed on exit.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client
	cache *redis.Cache

	provider   *repos.FactorRepository
	results    *repos.ResultRepository
	classifier *classifier.Classifier
	icEngine   *ic.Engine
	validator  *validation.Validator

	orchestrator *evaluation.Orchestrator
}

// newApp loads configuration and wires the full pipeline: data layer,
// engines and the orchestrator.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "factorlab")

	provider := repos.NewFactorRepository(db.Pool, cache)
	results := repos.NewResultRepository(db.Pool)

	cls := classifier.New(log)

	windows, err := ic.WindowConfigFor(cfg.Evaluation.StrategyType)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, fmt.Errorf("window preset: %w", err)
	}
	icEngine := ic.NewEngine(log, cls, windows)

	corrEngine, err := correlation.NewEngine(log, correlation.DefaultThreshold)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, fmt.Errorf("correlation engine: %w", err)
	}

	scoringCfg := scoring.DefaultConfig()
	if path := cfg.Evaluation.ScoringConfig; path != "" {
		scoringCfg, err = scoring.LoadConfig(path)
		if err != nil {
			db.Close()
			redisClient.Close()
			return nil, fmt.Errorf("scoring config: %w", err)
		}
	}
	scorer, err := scoring.NewEngine(log, scoringCfg)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	analyzer := stats.NewAnalyzer(log)

	orchestrator := evaluation.NewOrchestrator(log, provider, analyzer, icEngine, corrEngine, scorer)

	return &app{
		cfg:          cfg,
		log:          log,
		db:           db,
		redis:        redisClient,
		cache:        cache,
		provider:     provider,
		results:      results,
		classifier:   cls,
		icEngine:     icEngine,
		validator:    validation.NewValidator(log, icEngine),
		orchestrator: orchestrator,
	}, nil
}

// Close releases the database and Redis connections.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
