// Package gate runs the request chain in front of an HTTP handler.
package gate

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/filter"
)

// Gate classifies each request, answers preflights, rejects blocked
// requests and passes the rest to the next handler with the decision
// attached to the request context.
type Gate struct {
	chain  *filter.Chain
	logger *slog.Logger
}

// New creates a gate around chain.
func New(chain *filter.Chain, logger *slog.Logger) *Gate {
	return &Gate{chain: chain, logger: logger}
}

// Middleware returns the gate as a router middleware.
func Middleware(chain *filter.Chain, logger *slog.Logger) func(http.Handler) http.Handler {
	return New(chain, logger).Wrap
}

// Wrap returns next behind the gate.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.serve(w, r, next)
	})
}

func (g *Gate) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rw := wrapWriter(w)

	// Only the gate may assert the verdict upstream.
	r.Header.Del(api.WhitelistedHeader)

	fc := filter.NewFilterContext(r, rw.Header())
	fc.HeadersSent = rw.HeadersSent()

	if err := g.chain.Process(r.Context(), fc); err != nil {
		g.logger.Error("filter chain error", "error", err, "uri", r.RequestURI)
		http.Error(rw, "internal filter error", http.StatusInternalServerError)
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.Bool("apigate.whitelisted", fc.Decision.Whitelisted),
		attribute.String("apigate.rule", string(fc.Decision.Rule)),
		attribute.Bool("apigate.preflight", fc.Preflight),
		attribute.String("apigate.blocked_by", fc.BlockedBy),
	)

	switch {
	case fc.Preflight:
		if !rw.HeadersSent() {
			rw.WriteHeader(http.StatusOK)
		}
		return

	case fc.Blocked():
		http.Error(rw, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	if fc.Decision.Whitelisted {
		r.Header.Set(api.WhitelistedHeader, "1")
	}
	next.ServeHTTP(rw, r.WithContext(WithDecision(r.Context(), fc.Decision)))
}
