package filter

import (
	"context"
	"log/slog"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/policy"
)

// ClassifyFilter evaluates the request against the policy engine and
// suppresses the security checks for whitelisted requests.
type ClassifyFilter struct {
	engine     policy.Engine
	suppressor *HookSuppressor
	logger     *slog.Logger
}

func NewClassifyFilter(engine policy.Engine, suppressor *HookSuppressor, logger *slog.Logger) *ClassifyFilter {
	return &ClassifyFilter{engine: engine, suppressor: suppressor, logger: logger}
}

func (f *ClassifyFilter) Name() string { return "classify" }

func (f *ClassifyFilter) Process(ctx context.Context, fc *FilterContext) error {
	if fc.Decision.Whitelisted {
		return nil
	}

	d, err := f.engine.Evaluate(ctx, fc.Request)
	if err != nil {
		// Classification must yield a boolean; an engine failure is a miss.
		f.logger.Error("classification failed", "error", err)
		d = api.NotWhitelisted
	}

	fc.Whitelist(d)
	f.suppressor.Suppress(fc, fc.Decision.Whitelisted)
	return nil
}
