package repos

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/redis"
)

// FactorRepository implements contracts.DataProvider over Postgres
// with a read-through Redis cache for the hot series.
type FactorRepository struct {
	pool  *pgxpool.Pool
	cache *redis.Cache
}

// NewFactorRepository creates a factor repository. cache may be a
// disabled-mode cache; reads then always hit Postgres.
func NewFactorRepository(pool *pgxpool.Pool, cache *redis.Cache) *FactorRepository {
	return &FactorRepository{pool: pool, cache: cache}
}

// cachedSeries is the cache representation of a TimeSeries.
type cachedSeries struct {
	Name   string      `json:"name"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

func toCached(series contracts.TimeSeries) cachedSeries {
	return cachedSeries{Name: series.Name, Dates: series.Dates(), Values: series.Values()}
}

func (c cachedSeries) series() contracts.TimeSeries {
	return contracts.NewTimeSeries(c.Name, c.Dates, c.Values)
}

// GetFactorSeries returns the daily value series of one factor.
func (r *FactorRepository) GetFactorSeries(ctx context.Context, name string) (contracts.TimeSeries, error) {
	var cached cachedSeries
	err := r.cache.GetOrSet(ctx, redis.FactorSeriesKey(name), &cached, redis.TTLMedium, func() (interface{}, error) {
		series, err := r.queryFactorSeries(ctx, name)
		if err != nil {
			return nil, err
		}
		return toCached(series), nil
	})
	if err != nil {
		return contracts.TimeSeries{}, err
	}
	return cached.series(), nil
}

func (r *FactorRepository) queryFactorSeries(ctx context.Context, name string) (contracts.TimeSeries, error) {
	query := `
		SELECT trade_date, value
		FROM factors.daily_values
		WHERE factor_name = $1
		ORDER BY trade_date
	`

	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return contracts.TimeSeries{}, fmt.Errorf("failed to query factor %s: %w", name, err)
	}
	defer rows.Close()

	var dates []time.Time
	var values []float64
	for rows.Next() {
		var date time.Time
		var value float64
		if err := rows.Scan(&date, &value); err != nil {
			return contracts.TimeSeries{}, fmt.Errorf("failed to scan factor row: %w", err)
		}
		dates = append(dates, date)
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return contracts.TimeSeries{}, fmt.Errorf("error iterating factor rows: %w", err)
	}
	if len(dates) == 0 {
		return contracts.TimeSeries{}, fmt.Errorf("factor %s: %w", name, contracts.ErrFactorNotFound)
	}

	return contracts.NewTimeSeries(name, dates, values), nil
}

// GetReturnSeries returns the shared daily return series.
func (r *FactorRepository) GetReturnSeries(ctx context.Context) (contracts.TimeSeries, error) {
	var cached cachedSeries
	err := r.cache.GetOrSet(ctx, redis.ReturnSeriesKey(), &cached, redis.TTLMedium, func() (interface{}, error) {
		series, err := r.queryReturnSeries(ctx)
		if err != nil {
			return nil, err
		}
		return toCached(series), nil
	})
	if err != nil {
		return contracts.TimeSeries{}, err
	}
	return cached.series(), nil
}

func (r *FactorRepository) queryReturnSeries(ctx context.Context) (contracts.TimeSeries, error) {
	query := `
		SELECT trade_date, value
		FROM factors.daily_returns
		ORDER BY trade_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return contracts.TimeSeries{}, fmt.Errorf("failed to query returns: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	var values []float64
	for rows.Next() {
		var date time.Time
		var value float64
		if err := rows.Scan(&date, &value); err != nil {
			return contracts.TimeSeries{}, fmt.Errorf("failed to scan return row: %w", err)
		}
		dates = append(dates, date)
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return contracts.TimeSeries{}, fmt.Errorf("error iterating return rows: %w", err)
	}

	return contracts.NewTimeSeries("returns", dates, values), nil
}

// GetFactorTable returns the named factors on one shared date axis.
// Cells a factor has no observation for are NaN.
func (r *FactorRepository) GetFactorTable(ctx context.Context, names []string) (contracts.FactorTable, error) {
	if len(names) == 0 {
		return contracts.FactorTable{}, nil
	}

	query := `
		SELECT factor_name, trade_date, value
		FROM factors.daily_values
		WHERE factor_name = ANY($1)
		ORDER BY trade_date, factor_name
	`

	rows, err := r.pool.Query(ctx, query, names)
	if err != nil {
		return contracts.FactorTable{}, fmt.Errorf("failed to query factor table: %w", err)
	}
	defer rows.Close()

	cells := make(map[time.Time]map[string]float64)
	var dates []time.Time
	for rows.Next() {
		var name string
		var date time.Time
		var value float64
		if err := rows.Scan(&name, &date, &value); err != nil {
			return contracts.FactorTable{}, fmt.Errorf("failed to scan table row: %w", err)
		}
		if _, seen := cells[date]; !seen {
			dates = append(dates, date)
			cells[date] = make(map[string]float64, len(names))
		}
		cells[date][name] = value
	}
	if err := rows.Err(); err != nil {
		return contracts.FactorTable{}, fmt.Errorf("error iterating table rows: %w", err)
	}

	table := contracts.FactorTable{
		Dates:   dates,
		Columns: append([]string(nil), names...),
		Values:  make(map[string][]float64, len(names)),
	}
	for _, name := range names {
		column := make([]float64, len(dates))
		for i, date := range dates {
			if value, ok := cells[date][name]; ok {
				column[i] = value
			} else {
				column[i] = math.NaN()
			}
		}
		table.Values[name] = column
	}
	return table, nil
}

// ListFactors returns every factor name known to the store.
func (r *FactorRepository) ListFactors(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT factor_name
		FROM factors.daily_values
		ORDER BY factor_name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list factors: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan factor name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating factor names: %w", err)
	}
	return names, nil
}

// InvalidateFactor drops the cached series of one factor.
func (r *FactorRepository) InvalidateFactor(ctx context.Context, name string) error {
	return r.cache.Delete(ctx, redis.FactorSeriesKey(name))
}
