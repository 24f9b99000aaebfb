package rov

import (
	"testing"

	"github.com/ajimenezvargas/bgp-route-sim/internal/bgp"
	"github.com/ajimenezvargas/bgp-route-sim/internal/prefix"
)

func mustPrefix(t *testing.T, s string) prefix.Prefix {
	t.Helper()
	p, err := prefix.ParsePrefix(s)
	if err != nil {
		t.Fatalf("ParsePrefix(%q): %v", s, err)
	}
	return p
}

func TestValidateUnknownWithNoROA(t *testing.T) {
	v := NewValidator()
	p := mustPrefix(t, "203.0.113.0/24")
	if got := v.Validate(p, 3); got != bgp.Unknown {
		t.Errorf("got %v, want Unknown", got)
	}
}

func TestValidateExactMatch(t *testing.T) {
	v := NewValidator()
	p := mustPrefix(t, "203.0.113.0/24")
	v.AddROA(ROA{Prefix: p, AuthorizedASN: 3, MaxLength: 24})

	if got := v.Validate(p, 3); got != bgp.Valid {
		t.Errorf("authorized origin: got %v, want Valid", got)
	}
	if got := v.Validate(p, 4); got != bgp.Invalid {
		t.Errorf("unauthorized origin: got %v, want Invalid", got)
	}
}

func TestValidateCoveringROA(t *testing.T) {
	v := NewValidator()
	covering := mustPrefix(t, "8.8.8.0/23")
	v.AddROA(ROA{Prefix: covering, AuthorizedASN: 15169, MaxLength: 24})

	subPrefix := mustPrefix(t, "8.8.8.0/24")
	if got := v.Validate(subPrefix, 15169); got != bgp.Valid {
		t.Errorf("got %v, want Valid", got)
	}
	if got := v.Validate(subPrefix, 1); got != bgp.Invalid {
		t.Errorf("got %v, want Invalid", got)
	}
}

func TestValidateOverSpecificUnderCoveringROAIsInvalid(t *testing.T) {
	v := NewValidator()
	covering := mustPrefix(t, "8.8.8.0/22")
	v.AddROA(ROA{Prefix: covering, AuthorizedASN: 15169, MaxLength: 23})

	tooSpecific := mustPrefix(t, "8.8.8.0/24")
	if got := v.Validate(tooSpecific, 15169); got != bgp.Invalid {
		t.Errorf("prefix longer than maxlen under a covering ROA: got %v, want Invalid", got)
	}
}

// Mirrors spec.md §8 scenario 5: AS4 (unauthorized) and AS3 (authorized)
// both originate the same /24; only AS3's origin should validate.
func TestValidateHijackScenario(t *testing.T) {
	v := NewValidator()
	p := mustPrefix(t, "203.0.113.0/24")
	v.AddROA(ROA{Prefix: p, AuthorizedASN: 3, MaxLength: 24})

	if got := v.Validate(p, 3); got != bgp.Valid {
		t.Errorf("legitimate origin AS3: got %v, want Valid", got)
	}
	if got := v.Validate(p, 4); got != bgp.Invalid {
		t.Errorf("hijacking origin AS4: got %v, want Invalid", got)
	}
}
