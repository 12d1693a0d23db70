package guard

import (
	"fmt"
	"regexp"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/policy"
)

// DefaultBotUserAgents returns the built-in scanner and scraper signatures.
func DefaultBotUserAgents() []string {
	return []string{
		`(?i)\bcurl/`,
		`(?i)\bwget/`,
		`(?i)python-requests`,
		`(?i)go-http-client`,
		`(?i)scrapy`,
		`(?i)sqlmap`,
		`(?i)nikto`,
		`(?i)masscan`,
		`(?i)zgrab`,
		`(?i)nuclei`,
	}
}

// BotBlocker blocks requests whose user-agent matches a bot signature.
// Requests without a user-agent pass.
type BotBlocker struct {
	patterns []*regexp.Regexp
}

// NewBotBlocker compiles the patterns. A nil slice takes DefaultBotUserAgents.
func NewBotBlocker(patterns []string) (*BotBlocker, error) {
	if patterns == nil {
		patterns = DefaultBotUserAgents()
	}
	b := &BotBlocker{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		b.patterns = append(b.patterns, re)
	}
	return b, nil
}

func (b *BotBlocker) Name() string { return api.CheckBotBlocker }

func (b *BotBlocker) Check(rc *policy.RequestContext) (bool, string) {
	if rc == nil || rc.UserAgent == "" {
		return false, ""
	}
	for _, re := range b.patterns {
		if re.MatchString(rc.UserAgent) {
			return true, fmt.Sprintf("user-agent matches bot pattern %q", re.String())
		}
	}
	return false, ""
}
