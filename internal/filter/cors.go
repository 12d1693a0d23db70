package filter

import (
	"context"
	"net/http"
	"strconv"
)

const (
	corsAllowOrigin      = "*"
	corsAllowMethods     = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders     = "Content-Type, Authorization, X-Requested-With"
	corsAllowCredentials = "true"

	DefaultCSRFHeader = "X-WP-Nonce"
	DefaultCORSMaxAge = 86400
)

// CORSResponder emits permissive cross-origin headers for whitelisted
// requests and answers every OPTIONS preflight.
type CORSResponder struct {
	allowHeaders string
	maxAge       string
}

// NewCORSResponder creates a responder. An empty csrfHeader and a
// non-positive maxAge take the defaults.
func NewCORSResponder(csrfHeader string, maxAge int) *CORSResponder {
	if csrfHeader == "" {
		csrfHeader = DefaultCSRFHeader
	}
	if maxAge <= 0 {
		maxAge = DefaultCORSMaxAge
	}
	return &CORSResponder{
		allowHeaders: corsAllowHeaders + ", " + csrfHeader,
		maxAge:       strconv.Itoa(maxAge),
	}
}

func (f *CORSResponder) Name() string { return "cors" }

func (f *CORSResponder) Process(_ context.Context, fc *FilterContext) error {
	f.Respond(fc)
	return nil
}

// Respond applies the CORS headers to fc. Preflight requests are marked
// and halt the chain. Headers are replaced, so repeated calls are harmless.
func (f *CORSResponder) Respond(fc *FilterContext) {
	preflight := fc.Request != nil && fc.Request.Method == http.MethodOptions

	if preflight {
		if !fc.HeadersSent {
			f.setHeaders(fc.ResponseHeader)
			fc.ResponseHeader.Set("Access-Control-Max-Age", f.maxAge)
		}
		fc.Preflight = true
		fc.Halted = true
		return
	}

	if fc.Decision.Whitelisted && !fc.HeadersSent {
		f.setHeaders(fc.ResponseHeader)
	}
}

func (f *CORSResponder) setHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", f.allowHeaders)
	h.Set("Access-Control-Allow-Credentials", corsAllowCredentials)
}

// CORSHeaders lists the headers the responder may set.
func CORSHeaders() []string {
	return []string{
		"Access-Control-Allow-Origin",
		"Access-Control-Allow-Methods",
		"Access-Control-Allow-Headers",
		"Access-Control-Allow-Credentials",
		"Access-Control-Max-Age",
	}
}
