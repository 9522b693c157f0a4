package attacker

import "errors"

// Domain errors for scenario generation.
var (
	// ErrUnavailable indicates no generator is configured; the pipeline
	// degrades to templated mock scenarios.
	ErrUnavailable = errors.New("attacker unavailable")

	// ErrInvalidBatch indicates the generator output violated the batch
	// contract. Surfaced with diagnostics, never silently repaired: the
	// downstream issue loop assumes exactly maxN scenarios.
	ErrInvalidBatch = errors.New("invalid scenario batch")
)
