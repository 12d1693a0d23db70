package gate

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/tkingovr/apigate/internal/filter"
)

// Proxy is an HTTP reverse proxy to the protected application.
type Proxy struct {
	target       *url.URL
	reverseProxy *httputil.ReverseProxy
	logger       *slog.Logger
}

// NewProxy creates a reverse proxy targeting the given URL.
func NewProxy(target string, logger *slog.Logger) (*Proxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid target URL %q: scheme and host required", target)
	}

	p := &Proxy{
		target: u,
		logger: logger,
	}
	p.reverseProxy = &httputil.ReverseProxy{
		Rewrite:        p.rewrite,
		ModifyResponse: p.modifyResponse,
		ErrorHandler:   p.errorHandler,
	}
	return p, nil
}

// ServeHTTP handles incoming HTTP requests.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.reverseProxy.ServeHTTP(w, r)
}

// Target returns the upstream URL.
func (p *Proxy) Target() *url.URL {
	return p.target
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(p.target)
	pr.SetXForwarded()
}

// modifyResponse drops upstream CORS headers when the gate already set
// its own, so the client never sees duplicated values.
func (p *Proxy) modifyResponse(resp *http.Response) error {
	if resp.Request == nil || !IsWhitelisted(resp.Request.Context()) {
		return nil
	}
	for _, h := range filter.CORSHeaders() {
		resp.Header.Del(h)
	}
	return nil
}

func (p *Proxy) errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("proxy error", "error", err, "url", r.URL.String())
	http.Error(w, "upstream unavailable", http.StatusBadGateway)
}
