package prefix

import "testing"

func TestParsePrefixCanonicalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.0.0.0/8", "10.0.0.0/8"},
		{"10.1.2.3/8", "10.0.0.0/8"}, // host bits zeroed
		{"0.0.0.0/0", "0.0.0.0/0"},
		{"203.0.113.0/24", "203.0.113.0/24"},
		{"192.0.2.1/32", "192.0.2.1/32"},
	}
	for _, tt := range tests {
		p, err := ParsePrefix(tt.in)
		if err != nil {
			t.Fatalf("ParsePrefix(%q): %v", tt.in, err)
		}
		if got := p.String(); got != tt.want {
			t.Errorf("ParsePrefix(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePrefixErrors(t *testing.T) {
	for _, in := range []string{"10.0.0.0", "10.0.0/8", "a.b.c.d/8", "10.0.0.0/33", "10.0.0.0/-1"} {
		if _, err := ParsePrefix(in); err == nil {
			t.Errorf("ParsePrefix(%q): expected error, got none", in)
		}
	}
}

func TestCovers(t *testing.T) {
	eight, _ := ParsePrefix("10.0.0.0/8")
	sixteen, _ := ParsePrefix("10.0.0.0/16")
	other, _ := ParsePrefix("11.0.0.0/8")

	if !eight.Covers(eight) {
		t.Error("a prefix must cover itself")
	}
	if !eight.Covers(sixteen) {
		t.Error("10.0.0.0/8 should cover 10.0.0.0/16")
	}
	if sixteen.Covers(eight) {
		t.Error("10.0.0.0/16 should not cover the less-specific /8")
	}
	if eight.Covers(other) {
		t.Error("10.0.0.0/8 should not cover 11.0.0.0/8")
	}
}

func TestEquals(t *testing.T) {
	a, _ := ParsePrefix("10.0.0.0/8")
	b, _ := ParsePrefix("10.1.2.3/8")
	c, _ := ParsePrefix("10.0.0.0/9")

	if !a.Equals(b) {
		t.Error("prefixes with the same canonical network/length should be equal")
	}
	if a.Equals(c) {
		t.Error("prefixes with different lengths should not be equal")
	}
}

func TestMoreSpecific(t *testing.T) {
	eight, _ := ParsePrefix("10.0.0.0/8")
	sixteen, _ := ParsePrefix("10.0.0.0/16")
	if !(sixteen.Length > eight.Length) {
		t.Error("/16 should be considered more specific than /8")
	}
}
