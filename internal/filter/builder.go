package filter

import (
	"log/slog"

	"github.com/tkingovr/apigate/internal/guard"
	"github.com/tkingovr/apigate/internal/policy"
)

// ChainConfig holds the configuration for building the request chain.
type ChainConfig struct {
	Engine     policy.Engine
	Routes     RouteMatcher
	Guards     []guard.Guard
	Recorder   Recorder
	Logger     *slog.Logger
	ClientIP   *ClientIPResolver // nil uses the socket address
	CSRFHeader string
	CORSMaxAge int
}

// BuildChain constructs the request chain:
// parse, classify, admin routes, CORS, then the security checks.
// The metrics observer runs last on every request.
func BuildChain(cfg ChainConfig) *Chain {
	suppressor := NewHookSuppressor()

	filters := []Filter{
		NewParseFilter(WithClientIPResolver(cfg.ClientIP)),
		NewClassifyFilter(cfg.Engine, suppressor, cfg.Logger),
	}

	// Admin routes are whitelisted regardless of the engine's verdict
	if cfg.Routes != nil {
		filters = append(filters, NewAdminRouteFilter(cfg.Routes, suppressor))
	}

	// CORS runs before the checks so preflights never reach them
	filters = append(filters, NewCORSResponder(cfg.CSRFHeader, cfg.CORSMaxAge))

	for _, g := range cfg.Guards {
		filters = append(filters, NewGuardFilter(g, cfg.Logger))
	}

	chain := NewChain(cfg.Logger, filters...)
	if cfg.Recorder != nil {
		chain.AddObserver(NewMetricsFilter(cfg.Recorder))
	}
	return chain
}
