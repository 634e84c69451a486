package server

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/lawnchairsociety/planetmap/internal/config"
)

func TestConnLimiter_PerIPLimit(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 2, MaxTotal: 100})

	if !limiter.TryAcquire("192.168.1.1") {
		t.Error("first request should be allowed")
	}
	if !limiter.TryAcquire("192.168.1.1") {
		t.Error("second request should be allowed")
	}
	if limiter.TryAcquire("192.168.1.1") {
		t.Error("third request from same IP should be rejected")
	}
	if !limiter.TryAcquire("192.168.1.2") {
		t.Error("request from different IP should be allowed")
	}

	limiter.Release("192.168.1.1")
	if !limiter.TryAcquire("192.168.1.1") {
		t.Error("request should be allowed after release")
	}
}

func TestConnLimiter_TotalLimit(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 10, MaxTotal: 3})

	for _, ip := range []string{"192.168.1.1", "192.168.1.2", "192.168.1.3"} {
		if !limiter.TryAcquire(ip) {
			t.Errorf("request from %s should be allowed", ip)
		}
	}
	if limiter.TryAcquire("192.168.1.4") {
		t.Error("fourth request should be rejected due to total limit")
	}

	limiter.Release("192.168.1.1")
	if !limiter.TryAcquire("192.168.1.4") {
		t.Error("request should be allowed after release")
	}
}

func TestConnLimiter_Unlimited(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{})

	for i := 0; i < 100; i++ {
		if !limiter.TryAcquire("192.168.1.1") {
			t.Errorf("request %d should be allowed when unlimited", i)
		}
	}
}

func TestConnLimiter_ReleaseUnknownIP(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxTotal: 1})
	limiter.Release("10.0.0.1")

	if total, ips := limiter.Stats(); total != 0 || ips != 0 {
		t.Errorf("Stats() = (%d, %d), want (0, 0)", total, ips)
	}
}

func TestConnLimiter_Stats(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 10, MaxTotal: 100})

	limiter.TryAcquire("192.168.1.1")
	limiter.TryAcquire("192.168.1.1")
	limiter.TryAcquire("192.168.1.2")

	total, ips := limiter.Stats()
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if ips != 2 {
		t.Errorf("expected 2 unique IPs, got %d", ips)
	}
	if count := limiter.IPCount("192.168.1.1"); count != 2 {
		t.Errorf("expected count 2 for 192.168.1.1, got %d", count)
	}
	if count := limiter.IPCount("192.168.1.3"); count != 0 {
		t.Errorf("expected count 0 for unknown IP, got %d", count)
	}
}

func TestConnLimiter_Middleware(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 1})

	entered := make(chan struct{})
	unblock := make(chan struct{})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-unblock
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()
	<-entered

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("second in-flight request got %d, want 503", rec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "198.51.100.7:4000"
	// A different client is not limited by the first one's slot, but the
	// handler would block, so only check admission.
	if !limiter.TryAcquire(limiter.clientIP(other)) {
		t.Error("different IP should be admitted")
	}
	limiter.Release(limiter.clientIP(other))

	close(unblock)
	wg.Wait()

	if total, _ := limiter.Stats(); total != 0 {
		t.Errorf("slots leaked: %d in flight after completion", total)
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"192.168.1.1:12345", "192.168.1.1"},
		{"[::1]:12345", "::1"},
		{"localhost:4000", "localhost"},
		{"192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		if result := extractIP(tt.input); result != tt.expected {
			t.Errorf("extractIP(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		xff        string
		xri        string
		remoteAddr string
		expected   string
	}{
		{"no trusted proxies ignores X-Forwarded-For", nil, "203.0.113.50", "", "10.0.0.1:12345", "10.0.0.1"},
		{"no trusted proxies ignores X-Real-IP", nil, "", "203.0.113.50", "10.0.0.1:12345", "10.0.0.1"},
		{"untrusted peer ignored", []string{"10.0.0.0/8"}, "203.0.113.50", "", "192.168.1.100:54321", "192.168.1.100"},
		{"X-Forwarded-For single IP", []string{"10.0.0.0/8"}, "203.0.113.50", "", "10.0.0.1:12345", "203.0.113.50"},
		{"rightmost untrusted hop wins", []string{"10.0.0.0/8"}, "1.2.3.4, 203.0.113.50, 10.0.0.9", "", "10.0.0.1:12345", "203.0.113.50"},
		{"X-Real-IP", []string{"10.0.0.1"}, "", "203.0.113.50", "10.0.0.1:12345", "203.0.113.50"},
		{"X-Forwarded-For takes precedence", []string{"10.0.0.1"}, "203.0.113.50", "198.51.100.25", "10.0.0.1:12345", "203.0.113.50"},
		{"chain of proxies only", []string{"10.0.0.0/8"}, "10.0.0.2, ", "", "10.0.0.1:12345", "10.0.0.1"},
		{"mapped IPv4 peer", []string{"10.0.0.0/8"}, "203.0.113.50", "", "[::ffff:10.0.0.1]:80", "203.0.113.50"},
		{"no headers", []string{"10.0.0.0/8"}, "", "", "10.0.0.1:54321", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewConnLimiter(config.ConnectionsConfig{TrustedProxies: tt.trusted})
			req := &http.Request{RemoteAddr: tt.remoteAddr, Header: make(http.Header)}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := limiter.clientIP(req); got != tt.expected {
				t.Errorf("clientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConnLimiter_ForwardedHeaderCannotEvadeLimit(t *testing.T) {
	limiter := NewConnLimiter(config.ConnectionsConfig{MaxPerIP: 1, MaxTotal: 100})

	entered := make(chan struct{})
	unblock := make(chan struct{})
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-unblock
	}))

	newRequest := func(forwarded string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		return req
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.ServeHTTP(httptest.NewRecorder(), newRequest("203.0.113.1"))
	}()
	<-entered

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest("203.0.113.2"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("request with a rotated X-Forwarded-For got %d, want 503", rec.Code)
	}

	close(unblock)
	wg.Wait()
}
