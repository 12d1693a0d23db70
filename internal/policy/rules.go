package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/tkingovr/apigate/api"
)

// RuleEngine classifies requests with the fixed, ordered allowlist
// heuristics. The first matching step wins.
//
// Matching is substring based and unanchored: an origin such as
// "https://shiprocket.in.example.net" matches the trusted domain
// "shiprocket.in". This is kept for compatibility with existing
// integrations.
type RuleEngine struct {
	list          Allowlist
	keywords      []string // lowercased
	trustedIPs    *IPMatchList
	matchClientIP bool
}

// RuleEngineOption configures the RuleEngine.
type RuleEngineOption func(*RuleEngine)

// WithClientIPMatching enables the trusted IP range step. It is off by
// default; the ranges are parsed either way.
func WithClientIPMatching(enabled bool) RuleEngineOption {
	return func(e *RuleEngine) {
		e.matchClientIP = enabled
	}
}

// NewRuleEngine creates a rule engine over the given allowlist.
func NewRuleEngine(list Allowlist, opts ...RuleEngineOption) (*RuleEngine, error) {
	ips, err := NewIPMatchList(list.IPRanges)
	if err != nil {
		return nil, fmt.Errorf("trusted ip ranges: %w", err)
	}

	e := &RuleEngine{
		list:       list,
		keywords:   make([]string, 0, len(list.Keywords)),
		trustedIPs: ips,
	}
	for _, k := range list.Keywords {
		e.keywords = append(e.keywords, strings.ToLower(k))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate implements Engine. It never fails.
func (e *RuleEngine) Evaluate(_ context.Context, rc *RequestContext) (api.Decision, error) {
	return e.Classify(rc), nil
}

// Classify runs the heuristics against rc. It is a pure function of rc
// and the engine's sets.
func (e *RuleEngine) Classify(rc *RequestContext) api.Decision {
	if rc == nil {
		rc = &RequestContext{}
	}

	if m := e.list.AdminPageMarker; m != "" && strings.Contains(rc.URI, m) {
		return whitelist(api.RuleAdminPage, m)
	}

	fields := [...]string{
		strings.ToLower(rc.UserAgent),
		strings.ToLower(rc.Referer),
		strings.ToLower(rc.URI),
		strings.ToLower(rc.Origin),
	}
	for _, k := range e.keywords {
		for _, f := range fields {
			if strings.Contains(f, k) {
				return whitelist(api.RuleKeyword, k)
			}
		}
	}

	if ns, ok := containsAny(rc.URI, e.list.RESTNamespaces); ok {
		return whitelist(api.RuleRESTNamespace, ns)
	}

	if rc.HasHeader("Authorization") {
		return whitelist(api.RuleAuthParam, "Authorization")
	}
	for _, p := range e.list.AuthParams {
		if rc.HasParam(p) {
			return whitelist(api.RuleAuthParam, p)
		}
	}

	for _, d := range e.list.Domains {
		if strings.Contains(rc.Origin, d) || strings.Contains(rc.Referer, d) {
			return whitelist(api.RuleTrustedDomain, d)
		}
	}

	if e.matchClientIP && e.trustedIPs.Contains(rc.RemoteIP) {
		return whitelist(api.RuleTrustedIP, rc.RemoteIP)
	}

	if p, ok := containsAny(rc.URI, e.list.AdminPaths); ok {
		return whitelist(api.RuleAdminPath, p)
	}

	return api.NotWhitelisted
}

// MatchAdminRoute reports the first admin REST route contained in uri.
func (e *RuleEngine) MatchAdminRoute(uri string) (string, bool) {
	return containsAny(uri, e.list.AdminRoutes)
}

// Allowlist returns the sets the engine was built from.
func (e *RuleEngine) Allowlist() Allowlist {
	return e.list
}

func whitelist(rule api.Rule, detail string) api.Decision {
	return api.Decision{Whitelisted: true, Rule: rule, Detail: detail}
}

func containsAny(s string, subs []string) (string, bool) {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return sub, true
		}
	}
	return "", false
}
