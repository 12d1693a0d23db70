package filter

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/tkingovr/apigate/internal/policy"
)

// ClientIPResolver picks the client address of a request behind reverse
// proxies. X-Forwarded-For is only read when the socket peer is a trusted
// proxy, and the chain is walked right to left: the first hop that is not
// a trusted proxy is the client. Entries left of it are client supplied
// and never consulted.
type ClientIPResolver struct {
	trusted *policy.IPMatchList
}

// NewClientIPResolver builds a resolver trusting the given proxy CIDRs or
// addresses.
func NewClientIPResolver(trustedProxies []string) (*ClientIPResolver, error) {
	trusted, err := policy.NewIPMatchList(trustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	return &ClientIPResolver{trusted: trusted}, nil
}

// Resolve returns the client address of r. A nil resolver trusts no proxy
// and returns the socket address.
func (c *ClientIPResolver) Resolve(r *http.Request) string {
	socketIP := parseRemoteAddr(r.RemoteAddr)
	if c == nil || !c.trusted.Contains(socketIP) {
		return socketIP
	}

	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for part := range strings.SplitSeq(v, ",") {
			hops = append(hops, strings.TrimSpace(part))
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		addr, ok := parseHeaderAddr(hops[i])
		if !ok {
			// a malformed hop breaks the chain of trust
			return socketIP
		}
		ip := addr.String()
		if c.trusted.Contains(ip) {
			continue
		}
		return ip
	}
	return socketIP
}

func parseHeaderAddr(s string) (netip.Addr, bool) {
	if s == "" {
		return netip.Addr{}, false
	}
	if addr, err := netip.ParseAddr(strings.Trim(s, "[]")); err == nil {
		return addr.Unmap(), true
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}

func parseRemoteAddr(remoteAddr string) string {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if addr, err := netip.ParseAddr(remoteAddr); err == nil {
		return addr.Unmap().String()
	}
	return ""
}
