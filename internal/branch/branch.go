package branch

import (
	"errors"
	"strings"
)

// ErrUnknown is returned when a free-text branch value cannot be
// resolved to the canonical enumeration. Callers must treat this as a
// validation failure: branch is the partition key for row visibility,
// so an uncanonicalized value would leak or hide rows.
var ErrUnknown = errors.New("unknown branch")

// canonical is the fixed set of branch names. The list is data, not
// code: resolution never special-cases individual entries.
var canonical = []string{
	"Andhra Pradesh",
	"Bangalore",
	"Chennai",
	"Hyderabad",
	"Mum_Thn",
	"Rajasthan",
	"RO TEL",
	"RO KAR",
	"RO TN",
	"ROM",
	"UP EAST",
	"Uttar Pradesh",
	"West Bengal",
	"UP WEST",
}

// aliases maps known abbreviations (normalized to lower case) to their
// canonical name. Alias rules take precedence over the generic match.
var aliases = map[string]string{
	"hyd": "Hyderabad",
}

// Names returns the canonical branch enumeration in declaration order.
func Names() []string {
	out := make([]string, len(canonical))
	copy(out, canonical)
	return out
}

// Resolve maps a free-text branch value to its canonical name.
// Matching is case-insensitive and exact after trimming; explicit
// aliases are consulted first. Returns ErrUnknown when no canonical
// entry matches.
func Resolve(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrUnknown
	}
	if name, ok := aliases[strings.ToLower(s)]; ok {
		return name, nil
	}
	for _, name := range canonical {
		if strings.EqualFold(name, s) {
			return name, nil
		}
	}
	return "", ErrUnknown
}
