package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/factorlab/internal/contracts"
)

// ResultRepository persists batch evaluation results. Scores land in
// a queryable table; the full per-factor analysis is kept as JSON.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a result repository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// SaveBatch stores one batch run and its per-factor scores in a
// single transaction.
func (r *ResultRepository) SaveBatch(ctx context.Context, result contracts.BatchResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var batchID int64
	batchQuery := `
		INSERT INTO evaluation.batches (
			evaluated_at, requested_factors, evaluated_factors,
			data_start, data_end, selection
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	selection, err := json.Marshal(result.Selection)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	err = tx.QueryRow(ctx, batchQuery,
		result.EvaluatedAt, result.RequestedFactors, result.EvaluatedFactors,
		result.DataStart, result.DataEnd, selection,
	).Scan(&batchID)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	for _, row := range result.Ranking {
		evaluation := result.Evaluations[row.FactorName]
		if err := r.saveEvaluation(ctx, tx, batchID, row, evaluation); err != nil {
			return fmt.Errorf("failed to save evaluation for %s: %w", row.FactorName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *ResultRepository) saveEvaluation(ctx context.Context, tx pgx.Tx, batchID int64,
	row contracts.RankedFactor, evaluation contracts.FactorEvaluation) error {

	detail, err := json.Marshal(evaluation)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}

	query := `
		INSERT INTO evaluation.factor_scores (
			batch_id, factor_name, rank,
			total_score, grade,
			ic_score, stability_score, data_quality_score,
			distribution_score, consistency_score,
			detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(ctx, query,
		batchID, row.FactorName, row.Rank,
		row.TotalScore, string(row.Grade),
		row.Scores.IC, row.Scores.Stability, row.Scores.DataQuality,
		row.Scores.Distribution, row.Scores.Consistency,
		detail,
	)
	return err
}

// LatestRanking returns the ranking of the most recent batch, best
// factor first.
func (r *ResultRepository) LatestRanking(ctx context.Context) ([]contracts.RankedFactor, error) {
	query := `
		SELECT s.factor_name, s.rank, s.total_score, s.grade,
		       s.ic_score, s.stability_score, s.data_quality_score,
		       s.distribution_score, s.consistency_score
		FROM evaluation.factor_scores s
		WHERE s.batch_id = (SELECT MAX(id) FROM evaluation.batches)
		ORDER BY s.rank
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer rows.Close()

	var ranking []contracts.RankedFactor
	for rows.Next() {
		var row contracts.RankedFactor
		var grade string
		err := rows.Scan(
			&row.FactorName, &row.Rank, &row.TotalScore, &grade,
			&row.Scores.IC, &row.Scores.Stability, &row.Scores.DataQuality,
			&row.Scores.Distribution, &row.Scores.Consistency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		row.Grade = contracts.Grade(grade)
		row.Scores.Total = row.TotalScore
		row.Scores.Grade = row.Grade
		ranking = append(ranking, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranking rows: %w", err)
	}
	return ranking, nil
}

// LatestEvaluation returns the most recent full evaluation of one
// factor.
func (r *ResultRepository) LatestEvaluation(ctx context.Context, factorName string) (contracts.FactorEvaluation, error) {
	query := `
		SELECT detail
		FROM evaluation.factor_scores
		WHERE factor_name = $1
		ORDER BY batch_id DESC
		LIMIT 1
	`

	var detail []byte
	if err := r.pool.QueryRow(ctx, query, factorName).Scan(&detail); err != nil {
		if err == pgx.ErrNoRows {
			return contracts.FactorEvaluation{}, fmt.Errorf("factor %s: %w", factorName, contracts.ErrFactorNotFound)
		}
		return contracts.FactorEvaluation{}, fmt.Errorf("failed to query evaluation: %w", err)
	}

	var evaluation contracts.FactorEvaluation
	if err := json.Unmarshal(detail, &evaluation); err != nil {
		return contracts.FactorEvaluation{}, fmt.Errorf("failed to decode evaluation: %w", err)
	}
	return evaluation, nil
}

// LastBatchTime returns when the most recent batch ran. Zero time
// when no batch has run yet.
func (r *ResultRepository) LastBatchTime(ctx context.Context) (time.Time, error) {
	query := `SELECT COALESCE(MAX(evaluated_at), 'epoch'::timestamptz) FROM evaluation.batches`

	var at time.Time
	if err := r.pool.QueryRow(ctx, query).Scan(&at); err != nil {
		return time.Time{}, fmt.Errorf("failed to query last batch time: %w", err)
	}
	return at, nil
}
