package domain

import (
	"regexp"
	"strings"
)

const internalMarker = "int"

// ValidEndpoint reports whether fqdn carries the internal marker followed by
// the expected domain, ignoring case. Instances whose DNS record has not been
// updated yet fail this check.
func ValidEndpoint(fqdn, domain string) bool {
	fqdn = strings.TrimSpace(fqdn)
	domain = strings.TrimSpace(domain)
	if fqdn == "" || domain == "" {
		return false
	}

	pattern := "(?i)" + internalMarker + ".*" + regexp.QuoteMeta(domain)
	matched, err := regexp.MatchString(pattern, fqdn)
	if err != nil {
		return false
	}

	return matched
}
