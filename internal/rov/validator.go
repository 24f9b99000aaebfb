// Package rov implements Route Origin Validation (RFC 6811) over a set
// of Route Origin Authorizations.
package rov

import (
	"github.com/ajimenezvargas/bgp-route-sim/internal/bgp"
	"github.com/ajimenezvargas/bgp-route-sim/internal/prefix"
)

// ROA is a Route Origin Authorization: an assertion that authorizedASN
// may originate prefix at lengths up to maxLength.
type ROA struct {
	Prefix        prefix.Prefix
	AuthorizedASN bgp.ASN
	MaxLength     uint8
}

// Validator indexes ROAs by their exact canonical prefix.
type Validator struct {
	byPrefix map[prefix.Prefix][]ROA
}

// NewValidator returns an empty validator.
func NewValidator() *Validator {
	return &Validator{byPrefix: make(map[prefix.Prefix][]ROA)}
}

// AddROA indexes a ROA under its exact canonical prefix.
func (v *Validator) AddROA(roa ROA) {
	v.byPrefix[roa.Prefix] = append(v.byPrefix[roa.Prefix], roa)
}

// Count returns the number of indexed ROAs.
func (v *Validator) Count() int {
	n := 0
	for _, roas := range v.byPrefix {
		n += len(roas)
	}
	return n
}

// Validate classifies (p, origin) per the two-tier lookup in spec §4.2:
// an exact-prefix match wins if present (Valid if any ROA there
// authorizes origin at this length, else Invalid); otherwise the ROA
// set is scanned for any covering (less-specific) ROA, and the same
// Valid/Invalid rule applies; with no exact or covering ROA the result
// is Unknown.
func (v *Validator) Validate(p prefix.Prefix, origin bgp.ASN) bgp.ROVState {
	if roas, ok := v.byPrefix[p]; ok {
		return matchState(roas, p, origin)
	}

	var covering []ROA
	for roaPrefix, roas := range v.byPrefix {
		if roaPrefix.Covers(p) {
			covering = append(covering, roas...)
		}
	}
	if len(covering) == 0 {
		return bgp.Unknown
	}
	return matchState(covering, p, origin)
}

// matchState assumes the caller already found a ROA set that keys or
// covers p; it returns Valid if any ROA in the set authorizes origin
// at p's length, else Invalid.
func matchState(roas []ROA, p prefix.Prefix, origin bgp.ASN) bgp.ROVState {
	for _, roa := range roas {
		if roa.AuthorizedASN == origin && p.Length <= roa.MaxLength {
			return bgp.Valid
		}
	}
	return bgp.Invalid
}
