package clientinfo

import (
	"net"
	"net/http"
	"strings"
)

// ForwardedIP returns the first X-Forwarded-For entry, or "" when the header is absent.
func ForwardedIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(xff, ",")[0])
}

// SignerIP is best-effort: forwarded-for, then X-Real-IP, then "unknown".
func SignerIP(r *http.Request) string {
	if ip := ForwardedIP(r); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}

// RemoteIP is the peer address. The forwarded address is honoured only behind a trusted proxy.
func RemoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := ForwardedIP(r); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ParseUserAgent(ua string) (os, browser string) {
	uaLower := strings.ToLower(ua)

	switch {
	case strings.Contains(uaLower, "windows"):
		os = "Windows"
	case strings.Contains(uaLower, "android"):
		os = "Android"
	case strings.Contains(uaLower, "iphone") || strings.Contains(uaLower, "ipad"):
		os = "iOS"
	case strings.Contains(uaLower, "mac os"):
		os = "macOS"
	case strings.Contains(uaLower, "linux"):
		os = "Linux"
	default:
		os = "Unknown"
	}

	switch {
	case strings.Contains(uaLower, "edg"):
		browser = "Edge"
	case strings.Contains(uaLower, "chrome"):
		browser = "Chrome"
	case strings.Contains(uaLower, "firefox"):
		browser = "Firefox"
	case strings.Contains(uaLower, "safari"):
		browser = "Safari"
	default:
		browser = "Unknown"
	}

	return os, browser
}
