package filter

import "context"

// Filter is a single step in the request processing pipeline.
type Filter interface {
	// Name returns the filter name. Security checks use their host
	// check name so they can be suppressed by name.
	Name() string

	// Process processes the filter context. It may modify the context
	// (e.g., record the decision, set response headers, block).
	// Returning an error aborts the filter chain.
	Process(ctx context.Context, fc *FilterContext) error
}
