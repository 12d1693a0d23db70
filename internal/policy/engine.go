package policy

import (
	"context"

	"github.com/tkingovr/apigate/api"
)

// Engine is the interface for classification backends.
type Engine interface {
	// Evaluate classifies a request. Implementations must not retain rc.
	Evaluate(ctx context.Context, rc *RequestContext) (api.Decision, error)
}
