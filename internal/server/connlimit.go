package server

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"

	"github.com/lawnchairsociety/planetmap/internal/config"
)

// ConnLimiter tracks and limits in-flight requests per IP and in total.
type ConnLimiter struct {
	mu         sync.Mutex
	ipCounts   map[string]int
	totalCount int
	maxPerIP   int
	maxTotal   int
	trusted    []netip.Prefix
}

// NewConnLimiter creates a new limiter with the given config. Malformed
// trusted proxy entries are rejected by ServerConfig.Validate; if any slip
// through, no proxy is trusted.
func NewConnLimiter(cfg config.ConnectionsConfig) *ConnLimiter {
	trusted, _ := cfg.TrustedPrefixes()
	return &ConnLimiter{
		ipCounts: make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
		trusted:  trusted,
	}
}

// TryAcquire attempts to take a slot for the given IP.
// Returns false if the request would exceed either limit.
func (c *ConnLimiter) TryAcquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.totalCount >= c.maxTotal {
		return false
	}
	if c.maxPerIP > 0 && c.ipCounts[ip] >= c.maxPerIP {
		return false
	}

	c.ipCounts[ip]++
	c.totalCount++
	return true
}

// Release gives back a slot taken by TryAcquire.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ipCounts[ip] > 0 {
		c.ipCounts[ip]--
		if c.ipCounts[ip] == 0 {
			delete(c.ipCounts, ip)
		}
	}
	if c.totalCount > 0 {
		c.totalCount--
	}
}

// Stats returns the number of in-flight requests and distinct client IPs.
func (c *ConnLimiter) Stats() (total int, ips int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCount, len(c.ipCounts)
}

// IPCount returns the in-flight request count for one IP.
func (c *ConnLimiter) IPCount(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ipCounts[ip]
}

// Middleware rejects requests over the limits with 503.
func (c *ConnLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := c.clientIP(r)
		if !c.TryAcquire(ip) {
			total, _ := c.Stats()
			requestLogger(r).Warn("Request rejected by admission control",
				"ip", ip,
				"ip_in_flight", c.IPCount(ip),
				"total_in_flight", total)
			http.Error(w, "Too many requests in flight. Please try again later.", http.StatusServiceUnavailable)
			return
		}
		defer c.Release(ip)
		next.ServeHTTP(w, r)
	})
}

// extractIP strips the port from an ip:port remote address.
func extractIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// clientIP returns the socket address unless it belongs to a trusted proxy.
// Behind one, X-Forwarded-For is walked from the right and the first hop
// that is not itself a trusted proxy is the client. X-Real-IP is used when
// the chain names no such hop.
func (c *ConnLimiter) clientIP(r *http.Request) string {
	remote := extractIP(r.RemoteAddr)
	if !c.isTrusted(remote) {
		return remote
	}
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !c.isTrusted(hop) {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remote
}

func (c *ConnLimiter) isTrusted(ip string) bool {
	if len(c.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
