package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"

	"gastos/internal/log"
)

// attackMarkers are fragments of paths and payloads this API never serves.
var attackMarkers = []string{
	"../", "..\\", ".env", ".git", ".ssh", "etc/passwd",
	"wp-admin", "phpmyadmin", "cmd.exe", "<script", "union select",
}

var scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan"}

const maxURLLen = 2048

// privateRanges are always trusted to set forwarding headers.
var privateRanges = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// DetectorStats is a snapshot for the metrics endpoint.
type DetectorStats struct {
	Suspicious int64
}

// Detector flags probing requests and resolves the real client address of
// requests relayed by trusted proxies.
type Detector struct {
	trusted    []netip.Prefix
	suspicious atomic.Int64
}

// NewDetector trusts the private ranges plus each extra proxy, given as a
// CIDR or a single address.
func NewDetector(proxies ...string) (*Detector, error) {
	d := &Detector{trusted: append([]netip.Prefix(nil), privateRanges...)}
	for _, p := range proxies {
		if err := d.AddTrustedProxy(p); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Detector) AddTrustedProxy(proxy string) error {
	proxy = strings.TrimSpace(proxy)
	if strings.Contains(proxy, "/") {
		p, err := netip.ParsePrefix(proxy)
		if err != nil {
			return fmt.Errorf("invalid trusted proxy range %q: %w", proxy, err)
		}
		d.trusted = append(d.trusted, p.Masked())
		return nil
	}
	addr, err := netip.ParseAddr(proxy)
	if err != nil {
		return fmt.Errorf("invalid trusted proxy %q: %w", proxy, err)
	}
	addr = addr.Unmap()
	d.trusted = append(d.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	return nil
}

// DetectSuspiciousRequest reports attack paths, known scanners, TRACE and
// oversized URLs. Every hit is counted.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	if !isAttack(r) {
		return false
	}
	d.suspicious.Add(1)
	return true
}

func isAttack(r *http.Request) bool {
	if r.Method == http.MethodTrace || len(r.URL.String()) > maxURLLen {
		return true
	}
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, m := range attackMarkers {
		if strings.Contains(target, m) {
			return true
		}
	}
	ua := strings.ToLower(r.UserAgent())
	for _, a := range scannerAgents {
		if strings.Contains(ua, a) {
			return true
		}
	}
	return false
}

// Middleware only logs: routing and auth reject them on their own.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, d.ExtractClientIP(r),
				log.FieldUserAgent, r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractClientIP returns the peer address, or the first X-Forwarded-For
// entry (then X-Real-IP) when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		peer = ap.Addr().Unmap().String()
	}
	if !d.trustedPeer(peer) {
		return peer
	}

	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, candidate := range []string{first, r.Header.Get("X-Real-IP")} {
		if addr, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return addr.Unmap().String()
		}
	}
	return peer
}

func (d *Detector) trustedPeer(peer string) bool {
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range d.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func (d *Detector) Stats() DetectorStats {
	return DetectorStats{Suspicious: d.suspicious.Load()}
}
