// Package security resolves the real client IP behind trusted proxies
// and applies response security headers.
package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Resolver extracts client IPs, honoring forwarded headers only when
// the direct peer is a trusted proxy.
type Resolver struct {
	trustedProxies []*net.IPNet
}

func NewResolver() *Resolver {
	return &Resolver{
		trustedProxies: []*net.IPNet{
			mustCIDR("127.0.0.0/8"),
			mustCIDR("10.0.0.0/8"),
			mustCIDR("172.16.0.0/12"),
			mustCIDR("192.168.0.0/16"),
		},
	}
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// AddTrustedProxy adds a trusted proxy network
func (r *Resolver) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	r.trustedProxies = append(r.trustedProxies, network)
	return nil
}

// ExtractClientIP returns the forwarded client IP when the connection
// comes through a trusted proxy, otherwise the peer address.
func (res *Resolver) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil {
		return directIP
	}

	if res.isTrustedProxy(parsedDirectIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// first hop is the original client
			ips := strings.Split(xff, ",")
			if len(ips) > 0 {
				clientIP := strings.TrimSpace(ips[0])
				if net.ParseIP(clientIP) != nil {
					return clientIP
				}
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return directIP
}

func (res *Resolver) isTrustedProxy(ip net.IP) bool {
	for _, network := range res.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
