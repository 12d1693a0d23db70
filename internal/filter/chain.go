package filter

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain executes a sequence of filters in order, followed by observers.
type Chain struct {
	filters   []Filter
	observers []Filter
	logger    *slog.Logger
}

// NewChain creates a new filter chain.
func NewChain(logger *slog.Logger, filters ...Filter) *Chain {
	return &Chain{
		filters: filters,
		logger:  logger,
	}
}

// Process runs the filters in sequence on the given context.
// Suppressed filters are skipped. Once a filter sets fc.Halted the
// remaining filters are skipped, but observers (e.g., metrics) still
// run and see the final state.
func (c *Chain) Process(ctx context.Context, fc *FilterContext) error {
	for _, f := range c.filters {
		if fc.Halted {
			break
		}
		if fc.IsSuppressed(f.Name()) {
			c.logger.Debug("filter suppressed", "filter", f.Name())
			continue
		}
		if err := f.Process(ctx, fc); err != nil {
			return fmt.Errorf("filter %q: %w", f.Name(), err)
		}
		c.logger.Debug("filter executed",
			"filter", f.Name(),
			"whitelisted", fc.Decision.Whitelisted,
			"rule", fc.Decision.Rule,
			"halted", fc.Halted,
		)
	}

	for _, o := range c.observers {
		if err := o.Process(ctx, fc); err != nil {
			return fmt.Errorf("observer %q: %w", o.Name(), err)
		}
	}
	return nil
}

// AddFilter appends a filter to the chain.
func (c *Chain) AddFilter(f Filter) {
	c.filters = append(c.filters, f)
}

// AddObserver appends a filter that runs after the chain, halted or not.
func (c *Chain) AddObserver(f Filter) {
	c.observers = append(c.observers, f)
}

// Names returns the filter names in execution order, observers last.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.filters)+len(c.observers))
	for _, f := range c.filters {
		names = append(names, f.Name())
	}
	for _, o := range c.observers {
		names = append(names, o.Name())
	}
	return names
}
