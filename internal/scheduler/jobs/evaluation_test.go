package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

type stubEvaluator struct {
	result contracts.BatchResult
	err    error
	calls  int
}

func (s *stubEvaluator) EvaluateAll(_ context.Context, _ []string) (contracts.BatchResult, error) {
	s.calls++
	return s.result, s.err
}

type stubSink struct {
	saved []contracts.BatchResult
	err   error
}

func (s *stubSink) SaveBatch(_ context.Context, result contracts.BatchResult) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, result)
	return nil
}

func TestBatchEvaluationJobRunPersistsResult(t *testing.T) {
	evaluator := &stubEvaluator{result: contracts.BatchResult{RequestedFactors: 3, EvaluatedFactors: 3}}
	sink := &stubSink{}
	job := NewBatchEvaluationJob(evaluator, sink, nil, nil, logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, evaluator.calls)
	require.Len(t, sink.saved, 1)
	assert.Equal(t, 3, sink.saved[0].EvaluatedFactors)
}

func TestBatchEvaluationJobPropagatesErrors(t *testing.T) {
	t.Run("evaluation failure", func(t *testing.T) {
		evaluator := &stubEvaluator{err: errors.New("boom")}
		job := NewBatchEvaluationJob(evaluator, &stubSink{}, nil, nil, logger.NewNop())
		assert.Error(t, job.Run(context.Background()))
	})

	t.Run("persistence failure", func(t *testing.T) {
		evaluator := &stubEvaluator{}
		sink := &stubSink{err: errors.New("db down")}
		job := NewBatchEvaluationJob(evaluator, sink, nil, nil, logger.NewNop())
		assert.Error(t, job.Run(context.Background()))
	})
}

func TestBatchEvaluationJobMetadata(t *testing.T) {
	job := NewBatchEvaluationJob(&stubEvaluator{}, &stubSink{}, nil, nil, logger.NewNop())
	assert.Equal(t, "batch_evaluation", job.Name())
	assert.NotEmpty(t, job.Schedule())
}
