package gate

import (
	"context"

	"github.com/tkingovr/apigate/api"
)

type decisionKey struct{}

// WithDecision returns a copy of ctx carrying d.
func WithDecision(ctx context.Context, d api.Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// DecisionFrom returns the decision recorded for the current request.
// ok is false for requests that did not pass through the gate.
func DecisionFrom(ctx context.Context) (d api.Decision, ok bool) {
	d, ok = ctx.Value(decisionKey{}).(api.Decision)
	return d, ok
}

// IsWhitelisted reports whether the current request was whitelisted.
func IsWhitelisted(ctx context.Context) bool {
	d, _ := DecisionFrom(ctx)
	return d.Whitelisted
}
