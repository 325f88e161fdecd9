package analysis

import (
	"fmt"
	"strings"
)

// Policy decides which origins may be analysed.
type Policy struct {
	// Allowed, when non-empty, is the complete set of eligible countries.
	Allowed []string
	// Denied countries are never eligible, even if also in Allowed.
	Denied []string
	// TrustOriginOverride skips the country check when the caller supplied
	// the origin themselves.
	TrustOriginOverride bool
}

// DefaultPolicy is the strict allow-list used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		Allowed: []string{
			"US", "CA", "GB", "IE", "AU", "NZ",
			"DE", "FR", "NL", "BE", "SE", "NO", "DK", "FI", "ES", "IT", "PT",
			"JP", "KR", "BR", "MX",
		},
		Denied:              []string{"RU", "CN"},
		TrustOriginOverride: true,
	}
}

type Decision struct {
	Allowed bool
	// Bypassed is set when the decision came from a trusted override.
	Bypassed bool
	Reason   string
}

// Evaluate applies the policy to the resolved origin. overridden reports
// whether the origin came from the caller.
func (p Policy) Evaluate(id ResolvedIdentity, overridden bool) Decision {
	if overridden && p.TrustOriginOverride {
		return Decision{Allowed: true, Bypassed: true}
	}

	country := strings.ToUpper(strings.TrimSpace(id.OriginCountry))
	if country == "" || strings.EqualFold(country, UnknownCountry) {
		return denied(UnknownCountry)
	}
	if contains(p.Denied, country) {
		return denied(id.OriginCountry)
	}
	if len(p.Allowed) > 0 && !contains(p.Allowed, country) {
		return denied(id.OriginCountry)
	}
	return Decision{Allowed: true}
}

func denied(country string) Decision {
	return Decision{
		Reason: fmt.Sprintf("We cannot provide analysis for artists from %s because of data restrictions.", country),
	}
}

func contains(list []string, country string) bool {
	for _, c := range list {
		if strings.EqualFold(strings.TrimSpace(c), country) {
			return true
		}
	}
	return false
}
