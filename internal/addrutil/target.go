// Package addrutil normalizes user-supplied targets into base URLs.
package addrutil

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// BaseURL turns a target such as "192.168.4.1", "apdiag.local:8080",
// "fe80::1" or "http://10.0.0.1" into a base URL without trailing slash.
func BaseURL(target string) (string, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", fmt.Errorf("empty target")
	}

	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		u, err := url.Parse(t)
		if err != nil {
			return "", fmt.Errorf("parse target %q: %w", target, err)
		}
		if u.Host == "" {
			return "", fmt.Errorf("target %q has no host", target)
		}
		return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
	}

	host, port := splitHostPort(t)
	if host == "" {
		return "", fmt.Errorf("target %q has no host", target)
	}
	if port == "" {
		if strings.Contains(host, ":") {
			return "http://[" + host + "]", nil
		}
		return "http://" + host, nil
	}
	return "http://" + net.JoinHostPort(host, port), nil
}

// splitHostPort accepts host, host:port, [v6]:port, bare v6 and v6:port.
func splitHostPort(addr string) (host, port string) {
	if h, p, err := net.SplitHostPort(addr); err == nil {
		return h, p
	}

	if strings.Count(addr, ":") > 1 && !strings.HasPrefix(addr, "[") {
		if net.ParseIP(addr) != nil {
			return addr, ""
		}
		if last := strings.LastIndexByte(addr, ':'); last > 0 && last < len(addr)-1 {
			if _, err := strconv.Atoi(addr[last+1:]); err == nil {
				return addr[:last], addr[last+1:]
			}
		}
	}
	return strings.Trim(addr, "[]"), ""
}
