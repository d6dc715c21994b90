package branch

import "testing"

func TestResolveExactAndCaseInsensitive(t *testing.T) {
	cases := map[string]string{
		"Chennai":        "Chennai",
		"chennai":        "Chennai",
		"  CHENNAI  ":    "Chennai",
		"ro tel":         "RO TEL",
		"mum_thn":        "Mum_Thn",
		"uttar pradesh":  "Uttar Pradesh",
		"UP WEST":        "UP WEST",
		"andhra pradesh": "Andhra Pradesh",
	}
	for in, want := range cases {
		got, err := Resolve(in)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveAliasPrecedence(t *testing.T) {
	for _, in := range []string{"HYD", "hyd", " Hyd "} {
		got, err := Resolve(in)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", in, err)
		}
		if got != "Hyderabad" {
			t.Fatalf("Resolve(%q) = %q, want Hyderabad", in, got)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, in := range []string{"", "   ", "Mars", "Chenai"} {
		if _, err := Resolve(in); err != ErrUnknown {
			t.Fatalf("Resolve(%q) error = %v, want ErrUnknown", in, err)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	for _, name := range Names() {
		once, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
		twice, err := Resolve(once)
		if err != nil {
			t.Fatalf("Resolve(Resolve(%q)): %v", name, err)
		}
		if once != twice {
			t.Fatalf("canonicalization not idempotent: %q -> %q -> %q", name, once, twice)
		}
	}
}
