package guard

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/policy"
)

// DefaultWAFPatterns returns the built-in attack signatures.
func DefaultWAFPatterns() []string {
	return []string{
		`\.\./`,
		`(?i)<\s*script`,
		`(?i)\bunion\b[\s+]+(all[\s+]+)?select\b`,
		`(?i)\bor\b[\s+]+1\s*=\s*1\b`,
		`(?i)/etc/passwd`,
		`(?i)\bsleep\s*\(\s*\d+\s*\)`,
	}
}

// WAF blocks requests whose URI or form values match an attack signature.
type WAF struct {
	patterns []*regexp.Regexp
}

// NewWAF compiles the patterns. A nil slice takes DefaultWAFPatterns.
func NewWAF(patterns []string) (*WAF, error) {
	if patterns == nil {
		patterns = DefaultWAFPatterns()
	}
	w := &WAF{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		w.patterns = append(w.patterns, re)
	}
	return w, nil
}

func (w *WAF) Name() string { return api.CheckWAF }

func (w *WAF) Check(rc *policy.RequestContext) (bool, string) {
	if rc == nil {
		return false, ""
	}
	candidates := []string{rc.URI}
	if decoded, err := url.QueryUnescape(rc.URI); err == nil && decoded != rc.URI {
		candidates = append(candidates, decoded)
	}
	for _, vals := range rc.Body {
		candidates = append(candidates, vals...)
	}

	for _, s := range candidates {
		for _, re := range w.patterns {
			if re.MatchString(s) {
				return true, fmt.Sprintf("request matches attack pattern %q", re.String())
			}
		}
	}
	return false, ""
}
