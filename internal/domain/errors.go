package domain

import "errors"

// Input errors. These indicate the supplied statement or position data
// cannot support the requested calculation; they are surfaced immediately
// and never retried. Numeric instabilities (zero shares, growth reaching
// the discount rate) are NOT errors: they resolve to documented floors and
// mark the result as degraded instead.
var (
	// ErrNoEarnings means no income statement carries a usable net income.
	ErrNoEarnings = errors.New("no usable net income in statement history")

	// ErrInsufficientHistory means too few periods exist for a projection
	// (revenue projections need at least 3 years).
	ErrInsufficientHistory = errors.New("insufficient statement history")

	// ErrNoHistory means no overlapping price history exists for the
	// supplied positions.
	ErrNoHistory = errors.New("no overlapping price history")

	// ErrNoCandidates means the optimizer was invoked with an empty
	// candidate set.
	ErrNoCandidates = errors.New("no candidates supplied")

	// ErrNoPortfolioValue means positions sum to zero market value.
	ErrNoPortfolioValue = errors.New("portfolio has zero market value")
)
