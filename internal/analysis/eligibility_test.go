package analysis

import (
	"strings"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		country     string
		overridden  bool
		wantAllowed bool
	}{
		{"US", false, true},
		{"gb", false, true},
		{"PK", false, false},
		{"RU", false, false},
		{"CN", false, false},
		{"ZZ", false, false},
		{UnknownCountry, false, false},
		{"", false, false},
		{"PK", true, true},
		{UnknownCountry, true, true},
	}

	for _, test := range tests {
		got := policy.Evaluate(ResolvedIdentity{Genre: "Pop", OriginCountry: test.country}, test.overridden)
		if got.Allowed != test.wantAllowed {
			t.Errorf("Evaluate(%q, overridden=%v).Allowed = %v, want %v", test.country, test.overridden, got.Allowed, test.wantAllowed)
		}
		if got.Allowed && got.Reason != "" {
			t.Errorf("Evaluate(%q) allowed with reason %q", test.country, got.Reason)
		}
		if !got.Allowed && got.Reason == "" {
			t.Errorf("Evaluate(%q) denied without a reason", test.country)
		}
	}
}

func TestEvaluateReason(t *testing.T) {
	got := DefaultPolicy().Evaluate(ResolvedIdentity{OriginCountry: "PK"}, false)
	want := "We cannot provide analysis for artists from PK because of data restrictions."
	if got.Reason != want {
		t.Errorf("Reason = %q, want %q", got.Reason, want)
	}

	got = DefaultPolicy().Evaluate(ResolvedIdentity{OriginCountry: ""}, false)
	if !strings.Contains(got.Reason, UnknownCountry) {
		t.Errorf("Reason for empty origin = %q, want it to mention %q", got.Reason, UnknownCountry)
	}
}

func TestEvaluateOverrideBypass(t *testing.T) {
	trusting := DefaultPolicy()
	got := trusting.Evaluate(ResolvedIdentity{OriginCountry: "RU"}, true)
	if !got.Allowed || !got.Bypassed {
		t.Errorf("trusted override: got %+v, want allowed and bypassed", got)
	}

	strict := DefaultPolicy()
	strict.TrustOriginOverride = false
	got = strict.Evaluate(ResolvedIdentity{OriginCountry: "RU"}, true)
	if got.Allowed || got.Bypassed {
		t.Errorf("untrusted override of denied country: got %+v, want denied", got)
	}
	got = strict.Evaluate(ResolvedIdentity{OriginCountry: "US"}, true)
	if !got.Allowed || got.Bypassed {
		t.Errorf("untrusted override of allowed country: got %+v, want allowed without bypass", got)
	}
}

func TestEvaluateDenyListOnly(t *testing.T) {
	policy := Policy{Denied: []string{"RU"}}

	if got := policy.Evaluate(ResolvedIdentity{OriginCountry: "PK"}, false); !got.Allowed {
		t.Errorf("PK with empty allow-list: got %+v, want allowed", got)
	}
	if got := policy.Evaluate(ResolvedIdentity{OriginCountry: "ru"}, false); got.Allowed {
		t.Errorf("ru with RU denied: got %+v, want denied", got)
	}
	if got := policy.Evaluate(ResolvedIdentity{OriginCountry: UnknownCountry}, false); got.Allowed {
		t.Errorf("Unknown with empty allow-list: got %+v, want denied", got)
	}
}

func TestDenyOverridesAllow(t *testing.T) {
	policy := Policy{Allowed: []string{"US", "RU"}, Denied: []string{"RU"}}
	if got := policy.Evaluate(ResolvedIdentity{OriginCountry: "RU"}, false); got.Allowed {
		t.Errorf("RU on both lists: got %+v, want denied", got)
	}
}
