// Package guard implements the host security checks that run after
// classification: a pattern WAF, a client address blackhole and a bot
// user-agent blocker.
package guard

import (
	"fmt"
	"slices"

	"github.com/tkingovr/apigate/internal/policy"
)

// Guard inspects a request and decides whether to reject it.
type Guard interface {
	// Name returns the host check name, e.g. api.CheckWAF.
	Name() string

	// Check reports whether rc must be blocked and why.
	Check(rc *policy.RequestContext) (blocked bool, reason string)
}

// FromConfig builds the enabled guards in execution order:
// WAF, blackhole, bot blocker.
func FromConfig(cfg policy.Guards) ([]Guard, error) {
	waf, err := NewWAF(cfg.WAFPatterns)
	if err != nil {
		return nil, fmt.Errorf("waf: %w", err)
	}
	bh, err := NewBlackhole(cfg.Blackhole)
	if err != nil {
		return nil, fmt.Errorf("blackhole: %w", err)
	}
	bots, err := NewBotBlocker(cfg.BotUserAgents)
	if err != nil {
		return nil, fmt.Errorf("bot blocker: %w", err)
	}

	var guards []Guard
	for _, g := range []Guard{waf, bh, bots} {
		if slices.Contains(cfg.Disabled, g.Name()) {
			continue
		}
		guards = append(guards, g)
	}
	return guards, nil
}
