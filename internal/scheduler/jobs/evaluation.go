package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
	"github.com/wonny/factorlab/pkg/redis"
)

// Evaluator runs a batch evaluation over a factor set.
type Evaluator interface {
	EvaluateAll(ctx context.Context, names []string) (contracts.BatchResult, error)
}

// ResultSink persists a finished batch.
type ResultSink interface {
	SaveBatch(ctx context.Context, result contracts.BatchResult) error
}

// BatchEvaluationJob re-evaluates the full factor universe nightly
// and persists the result. A Redis rate limit keeps concurrent
// deployments from running overlapping batches.
type BatchEvaluationJob struct {
	evaluator Evaluator
	sink      ResultSink
	limiter   *redis.RateLimiter
	cache     *redis.Cache
	schedule  string
	logger    *logger.Logger
}

// NewBatchEvaluationJob creates the nightly evaluation job.
func NewBatchEvaluationJob(evaluator Evaluator, sink ResultSink,
	limiter *redis.RateLimiter, cache *redis.Cache, log *logger.Logger) *BatchEvaluationJob {
	return &BatchEvaluationJob{
		evaluator: evaluator,
		sink:      sink,
		limiter:   limiter,
		cache:     cache,
		schedule:  "0 0 2 * * *",
		logger:    log,
	}
}

// SetSchedule overrides the default cron schedule.
func (j *BatchEvaluationJob) SetSchedule(spec string) {
	if spec != "" {
		j.schedule = spec
	}
}

// Name returns the job name
func (j *BatchEvaluationJob) Name() string {
	return "batch_evaluation"
}

// Schedule returns the cron schedule (2 AM daily, after data loads)
func (j *BatchEvaluationJob) Schedule() string {
	return j.schedule
}

// Run executes one batch evaluation.
func (j *BatchEvaluationJob) Run(ctx context.Context) error {
	if j.limiter != nil {
		if err := j.limiter.Wait(ctx, redis.BatchRateLimit); err != nil {
			return fmt.Errorf("batch rate limit: %w", err)
		}
	}

	start := time.Now()
	j.logger.Info("Starting nightly batch evaluation")

	result, err := j.evaluator.EvaluateAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("batch evaluation: %w", err)
	}

	if err := j.sink.SaveBatch(ctx, result); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}

	if j.cache != nil {
		key := redis.BatchResultKey(result.EvaluatedAt.Format("2006-01-02"))
		if err := j.cache.Set(ctx, key, result, redis.TTLDaily); err != nil {
			j.logger.WithError(err).Warn("Failed to cache batch result")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"requested": result.RequestedFactors,
		"evaluated": result.EvaluatedFactors,
		"skipped":   len(result.Skipped),
		"duration":  time.Since(start),
	}).Info("Nightly batch evaluation finished")

	return nil
}
