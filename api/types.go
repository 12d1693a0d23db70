package api

// Rule identifies which classification step produced a decision.
type Rule string

const (
	RuleAdminPage     Rule = "admin_page"
	RuleKeyword       Rule = "keyword"
	RuleRESTNamespace Rule = "rest_namespace"
	RuleAuthParam     Rule = "auth_param"
	RuleTrustedDomain Rule = "trusted_domain"
	RuleTrustedIP     Rule = "trusted_ip"
	RuleAdminPath     Rule = "admin_path"
	RuleAdminRoute    Rule = "admin_route"
	RuleNone          Rule = "none"
)

// Decision is the verdict for a single request. Whitelisted requests
// skip the host security checks.
type Decision struct {
	Whitelisted bool   `json:"whitelisted"`
	Rule        Rule   `json:"rule"`
	Detail      string `json:"detail,omitempty"`
}

// NotWhitelisted is the decision returned when no step matched.
var NotWhitelisted = Decision{Rule: RuleNone}

// Security check names. The classifier suppresses these for
// whitelisted requests.
const (
	CheckWAF          = "SecurityWAF.waf_check"
	CheckBotBlackhole = "BotBlackhole.check_bot_access"
	CheckBotBlocker   = "BotBlocker.check_bot_request"
)

// SecurityChecks lists the checks suppressed for whitelisted requests.
func SecurityChecks() []string {
	return []string{CheckWAF, CheckBotBlackhole, CheckBotBlocker}
}

// WhitelistedHeader is forwarded to the upstream application when the
// request was whitelisted.
const WhitelistedHeader = "X-Api-Request-Whitelisted"

// CheckRequest is used by the CLI `check` command.
type CheckRequest struct {
	Method    string              `json:"method"`
	URI       string              `json:"uri"`
	UserAgent string              `json:"user_agent,omitempty"`
	Referer   string              `json:"referer,omitempty"`
	Origin    string              `json:"origin,omitempty"`
	RemoteIP  string              `json:"remote_ip,omitempty"`
	Headers   map[string]string   `json:"headers,omitempty"`
	Query     map[string][]string `json:"query,omitempty"`
	Form      map[string][]string `json:"form,omitempty"`
}

// CheckResponse is the result of a dry-run classification.
type CheckResponse struct {
	Decision
	Suppressed []string `json:"suppressed,omitempty"`
	Preflight  bool     `json:"preflight,omitempty"`
	BlockedBy  string   `json:"blocked_by,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}
