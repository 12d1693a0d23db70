package filter

import (
	"context"
	"log/slog"

	"github.com/tkingovr/apigate/internal/guard"
)

// GuardFilter runs a host security check. It carries the check's name,
// so the HookSuppressor can disable it for whitelisted requests.
type GuardFilter struct {
	guard  guard.Guard
	logger *slog.Logger
}

func NewGuardFilter(g guard.Guard, logger *slog.Logger) *GuardFilter {
	return &GuardFilter{guard: g, logger: logger}
}

func (f *GuardFilter) Name() string { return f.guard.Name() }

func (f *GuardFilter) Process(_ context.Context, fc *FilterContext) error {
	blocked, reason := f.guard.Check(fc.Request)
	if !blocked {
		return nil
	}
	fc.Block(f.guard.Name(), reason)
	f.logger.Warn("request blocked",
		"check", f.guard.Name(),
		"reason", reason,
		"uri", fc.Request.URI,
		"remote_ip", fc.Request.RemoteIP,
	)
	return nil
}
