package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transacoes", nil))
	for key, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Cache-Control":           "no-store",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	} {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/transacoes", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d, err := NewDetector()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		target string
		ua     string
		want   bool
	}{
		{"normal", "/transacoes?categoria=mercado", "Mozilla/5.0", false},
		{"curl is fine", "/healthz", "curl/8.0", false},
		{"dotenv fetch", "/.env", "", true},
		{"traversal in query", "/transacoes?busca=../../etc/passwd", "", true},
		{"scanner", "/", "sqlmap/1.7", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Header.Set("User-Agent", tt.ua)
			if got := d.DetectSuspiciousRequest(req); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := d.Stats().Suspicious; got != 3 {
		t.Errorf("Suspicious = %d, want 3", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	d, err := NewDetector("203.0.113.7", "198.51.100.0/24")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct client", "8.8.8.8:1234", "1.1.1.1", "", "8.8.8.8"},
		{"private proxy", "10.0.0.5:80", "1.1.1.1, 10.0.0.5", "", "1.1.1.1"},
		{"configured ip", "203.0.113.7:80", "", "2.2.2.2", "2.2.2.2"},
		{"configured range", "198.51.100.9:80", "garbage", "3.3.3.3", "3.3.3.3"},
		{"proxy without headers", "10.0.0.5:80", "", "", "10.0.0.5"},
		{"ipv6 loopback proxy", "[::1]:80", "2001:db8::1", "", "2001:db8::1"},
		{"untrusted peer spoofing", "198.18.0.1:80", "1.1.1.1", "1.1.1.1", "198.18.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(req); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}

	for _, bad := range []string{"not-an-ip", "10.0.0.0/99"} {
		if _, err := NewDetector(bad); err == nil {
			t.Errorf("NewDetector(%q) should fail", bad)
		}
	}
}
