package zonecheck

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// validServerAddr reports whether addr is a usable name-server address for
// --resolver/resolver= entries: a bare IP, optionally bracketed IPv6.
func validServerAddr(addr string) error {
	if ip := net.ParseIP(strings.Trim(addr, "[]")); ip != nil {
		return nil
	}
	return fmt.Errorf("invalid resolver address %q: not an IP", addr)
}

// validHostname reports whether name is a valid hostname as per
// https://tools.ietf.org/html/rfc3696#section-2 and
// https://tools.ietf.org/html/rfc1123#page-13, used to validate zone
// locators given as hostnames rather than file paths.
func validHostname(name string) error {
	if name == "" {
		return errors.New("hostname empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("invalid hostname %q: too long", name)
	}
	name = strings.TrimSuffix(name, ".")
	labels := strings.Split(name, ".")
	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("invalid hostname %q: empty label", name)
		}
		for _, c := range label {
			if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
				return fmt.Errorf("invalid hostname %q: label can not start or end with -", name)
			}
			switch {
			case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '-':
			default:
				return fmt.Errorf("invalid hostname %q: invalid character %q", name, string(c))
			}
		}
	}
	// The last label can not be all-numeric
	for _, c := range labels[len(labels)-1] {
		if c < '0' || c > '9' {
			return nil
		}
	}
	return fmt.Errorf("invalid hostname %q: last label can not be all numeric", name)
}
