package contracts

import "errors"

// Error kinds shared across the evaluation engines. Single-item failures
// (one factor, one window) are recovered with skip-and-log; configuration
// violations are fatal at construction time.
var (
	// ErrInsufficientData means the aligned sample is shorter than the
	// operation's minimum threshold (IC minimum, validation training
	// minimum). Results built from it are undefined, never zero.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateInput means a zero-variance series was fed into a
	// correlation computation. The correlation is mathematically
	// undefined and is reported as NaN, not a crash.
	ErrDegenerateInput = errors.New("degenerate input: zero variance")

	// ErrNoData means the data provider returned an empty series.
	ErrNoData = errors.New("no data")

	// ErrFactorNotFound means a requested factor is not known to the
	// data provider.
	ErrFactorNotFound = errors.New("factor not found")
)
