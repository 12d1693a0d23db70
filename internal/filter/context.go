package filter

import (
	"net/http"
	"slices"
	"time"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/policy"
)

// FilterContext carries all metadata through the filter chain for a single request.
type FilterContext struct {
	// HTTPRequest is the incoming request. It is nil for dry runs.
	HTTPRequest *http.Request

	// Request is the classifier's view of the request (built by ParseFilter).
	Request *policy.RequestContext

	// Decision is the verdict for this request. See Whitelist.
	Decision api.Decision

	// ResponseHeader receives headers for the client response.
	ResponseHeader http.Header

	// HeadersSent reports whether the response has already started.
	HeadersSent bool

	// Preflight is set when the request was answered as a CORS preflight.
	Preflight bool

	// BlockedBy names the security check that rejected the request.
	BlockedBy string

	// BlockReason is the human-readable reason from the blocking check.
	BlockReason string

	// StartTime records when the request entered the pipeline.
	StartTime time.Time

	// Halted indicates the pipeline should stop (preflight answered or blocked).
	Halted bool

	suppressed map[string]struct{}
}

// NewFilterContext creates a new FilterContext for an HTTP request.
// A nil header allocates a fresh one.
func NewFilterContext(r *http.Request, header http.Header) *FilterContext {
	if header == nil {
		header = make(http.Header)
	}
	return &FilterContext{
		HTTPRequest:    r,
		Decision:       api.NotWhitelisted,
		ResponseHeader: header,
		StartTime:      time.Now(),
	}
}

// Whitelist records d as the decision unless the request is already
// whitelisted. It reports whether d was recorded.
func (fc *FilterContext) Whitelist(d api.Decision) bool {
	if fc.Decision.Whitelisted {
		return false
	}
	if !d.Whitelisted && d.Rule == "" {
		d.Rule = api.RuleNone
	}
	fc.Decision = d
	return true
}

// Suppress marks the named checks as suppressed for this request.
func (fc *FilterContext) Suppress(names ...string) {
	if fc.suppressed == nil {
		fc.suppressed = make(map[string]struct{}, len(names))
	}
	for _, n := range names {
		fc.suppressed[n] = struct{}{}
	}
}

// IsSuppressed reports whether the named check is suppressed.
func (fc *FilterContext) IsSuppressed(name string) bool {
	_, ok := fc.suppressed[name]
	return ok
}

// Suppressed returns the suppressed check names, sorted.
func (fc *FilterContext) Suppressed() []string {
	if len(fc.suppressed) == 0 {
		return nil
	}
	names := make([]string, 0, len(fc.suppressed))
	for n := range fc.suppressed {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Block rejects the request on behalf of check and halts the chain.
func (fc *FilterContext) Block(check, reason string) {
	fc.BlockedBy = check
	fc.BlockReason = reason
	fc.Halted = true
}

// Blocked reports whether a security check rejected the request.
func (fc *FilterContext) Blocked() bool {
	return fc.BlockedBy != ""
}

// ToCheckResponse converts the filter context into a dry-run result.
func (fc *FilterContext) ToCheckResponse() *api.CheckResponse {
	return &api.CheckResponse{
		Decision:   fc.Decision,
		Suppressed: fc.Suppressed(),
		Preflight:  fc.Preflight,
		BlockedBy:  fc.BlockedBy,
		Reason:     fc.BlockReason,
	}
}
