package contracts

import "context"

// DataProvider is the boundary to the data-management collaborator.
// Implementations return in-memory series; the engine never performs
// I/O itself. An empty series (with a nil error) means "no data", and
// callers are expected to treat it per the ErrNoData policy.
type DataProvider interface {
	// GetFactorSeries returns the daily value series of one factor.
	GetFactorSeries(ctx context.Context, name string) (TimeSeries, error)

	// GetReturnSeries returns the shared daily return series. Factor
	// and return series are aligned by inner join at use, not here.
	GetReturnSeries(ctx context.Context) (TimeSeries, error)

	// GetFactorTable returns the named factors on a shared date axis.
	GetFactorTable(ctx context.Context, names []string) (FactorTable, error)

	// ListFactors returns all factor names known to the provider.
	ListFactors(ctx context.Context) ([]string, error)
}
