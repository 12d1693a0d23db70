package policy

import (
	"fmt"

	"github.com/seancfoley/ipaddress-go/ipaddr"
)

// IPMatchList answers membership queries against a set of CIDR ranges.
type IPMatchList struct {
	v4    *ipaddr.IPv4AddressTrie
	v6    *ipaddr.IPv6AddressTrie
	count int
}

// NewIPMatchList builds a match list from CIDR ranges or single addresses.
func NewIPMatchList(ranges []string) (*IPMatchList, error) {
	l := &IPMatchList{
		v4: &ipaddr.IPv4AddressTrie{},
		v6: &ipaddr.IPv6AddressTrie{},
	}
	for _, r := range ranges {
		addr, err := ipaddr.NewIPAddressString(r).ToAddress()
		if err != nil {
			return nil, fmt.Errorf("invalid address or range %q: %w", r, err)
		}
		if addr == nil {
			return nil, fmt.Errorf("empty address or range")
		}
		if addr.IsPrefixed() {
			addr = addr.ToPrefixBlock()
		}

		switch {
		case addr.IsIPv4():
			l.v4.Add(addr.ToIPv4())
		case addr.IsIPv6():
			l.v6.Add(addr.ToIPv6())
		default:
			return nil, fmt.Errorf("unsupported address %q", r)
		}
		l.count++
	}
	return l, nil
}

// Contains reports whether ip falls into one of the ranges.
// Unparseable input never matches.
func (l *IPMatchList) Contains(ip string) bool {
	if l == nil || ip == "" {
		return false
	}
	addr, err := ipaddr.NewIPAddressString(ip).ToAddress()
	if err != nil || addr == nil {
		return false
	}
	if addr.IsIPv4() {
		return l.v4.ElementContains(addr.ToIPv4())
	}
	if addr.IsIPv6() {
		return l.v6.ElementContains(addr.ToIPv6())
	}
	return false
}

// Len returns the number of ranges in the list.
func (l *IPMatchList) Len() int {
	if l == nil {
		return 0
	}
	return l.count
}
