package policy

import (
	"net/http"
	"net/url"
)

// RulesFile represents the top-level YAML rules configuration.
type RulesFile struct {
	Version   int       `yaml:"version" json:"version"`
	Settings  Settings  `yaml:"settings" json:"settings"`
	Allowlist Allowlist `yaml:"allowlist" json:"allowlist"`
	Guards    Guards    `yaml:"guards" json:"guards"`
}

// Settings contains global runtime settings. Every field can be
// overridden from the environment (see internal/config).
type Settings struct {
	Listen        string `yaml:"listen" json:"listen" koanf:"listen" validate:"omitempty,hostname_port"`
	Upstream      string `yaml:"upstream" json:"upstream" koanf:"upstream" validate:"omitempty,url"`
	MetricsPath   string `yaml:"metrics_path" json:"metrics_path" koanf:"metrics_path" validate:"omitempty,startswith=/"`
	Engine        string `yaml:"engine" json:"engine" koanf:"engine" validate:"omitempty,oneof=rules rego"`
	RegoPolicy    string `yaml:"rego_policy,omitempty" json:"rego_policy,omitempty" koanf:"rego_policy"`
	MatchClientIP bool   `yaml:"match_client_ip" json:"match_client_ip" koanf:"match_client_ip"`
	TrustProxy    bool   `yaml:"trust_proxy" json:"trust_proxy" koanf:"trust_proxy"`
	CSRFHeader    string `yaml:"csrf_header" json:"csrf_header" koanf:"csrf_header"`

	// TrustedProxies are the peers whose X-Forwarded-For is believed when
	// TrustProxy is set. Defaults to loopback and private ranges.
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies" koanf:"trusted_proxies" validate:"dive,cidr|ip"`

	// CORSMaxAge is the preflight cache lifetime in seconds. 0 means the
	// default of 86400; the header is always sent.
	CORSMaxAge int `yaml:"cors_max_age" json:"cors_max_age" koanf:"cors_max_age" validate:"gte=0"`
}

// Allowlist holds the static sets the classifier matches against.
// A nil list takes the built-in default; an explicit empty list
// disables that step.
type Allowlist struct {
	Domains         []string `yaml:"domains" json:"domains" validate:"dive,hostname_rfc1123"`
	IPRanges        []string `yaml:"ip_ranges" json:"ip_ranges" validate:"dive,cidr"`
	Keywords        []string `yaml:"keywords" json:"keywords" validate:"dive,required"`
	RESTNamespaces  []string `yaml:"rest_namespaces" json:"rest_namespaces" validate:"dive,required"`
	AdminPageMarker string   `yaml:"admin_page_marker" json:"admin_page_marker"`
	AdminPaths      []string `yaml:"admin_paths" json:"admin_paths" validate:"dive,required"`
	AdminRoutes     []string `yaml:"admin_routes" json:"admin_routes" validate:"dive,required"`
	AuthParams      []string `yaml:"auth_params" json:"auth_params" validate:"dive,required"`
}

// Guards configures the host security checks.
type Guards struct {
	WAFPatterns   []string `yaml:"waf_patterns,omitempty" json:"waf_patterns,omitempty" validate:"dive,required"`
	Blackhole     []string `yaml:"blackhole,omitempty" json:"blackhole,omitempty" validate:"dive,cidr|ip"`
	BotUserAgents []string `yaml:"bot_user_agents,omitempty" json:"bot_user_agents,omitempty" validate:"dive,required"`
	Disabled      []string `yaml:"disabled,omitempty" json:"disabled,omitempty" validate:"dive,oneof=SecurityWAF.waf_check BotBlackhole.check_bot_access BotBlocker.check_bot_request"`
}

// RequestContext is the read-only view of one incoming request.
// Absent fields are empty.
type RequestContext struct {
	Method    string
	URI       string
	UserAgent string
	Referer   string
	Origin    string
	RemoteIP  string
	Headers   http.Header
	Query     url.Values
	Body      url.Values
}

// HasHeader reports whether the header is present, even with an empty value.
func (rc *RequestContext) HasHeader(name string) bool {
	if rc.Headers == nil {
		return false
	}
	_, ok := rc.Headers[http.CanonicalHeaderKey(name)]
	return ok
}

// HasParam reports whether name is present in the query or body parameters.
func (rc *RequestContext) HasParam(name string) bool {
	if _, ok := rc.Query[name]; ok {
		return true
	}
	_, ok := rc.Body[name]
	return ok
}
