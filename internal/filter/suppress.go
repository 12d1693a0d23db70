package filter

import "github.com/tkingovr/apigate/api"

// HookSuppressor disables the host security checks for a whitelisted request.
type HookSuppressor struct {
	checks []string
}

// NewHookSuppressor creates a suppressor for the given check names.
// With no names it suppresses api.SecurityChecks().
func NewHookSuppressor(checks ...string) *HookSuppressor {
	if len(checks) == 0 {
		checks = api.SecurityChecks()
	}
	return &HookSuppressor{checks: checks}
}

// Suppress marks the checks as suppressed when whitelisted is true.
// Names with no matching filter in the chain are harmless.
func (s *HookSuppressor) Suppress(fc *FilterContext, whitelisted bool) {
	if !whitelisted {
		return
	}
	fc.Suppress(s.checks...)
}

// Checks returns the check names this suppressor disables.
func (s *HookSuppressor) Checks() []string {
	return append([]string(nil), s.checks...)
}
