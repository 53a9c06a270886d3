package term

import "testing"

// TestNormalize verifies lower-casing, trimming, and whitespace collapsing.
func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase passthrough", "bank", "bank"},
		{"case folding", "Bank", "bank"},
		{"mixed case phrase", "Virtual Machine", "virtual machine"},
		{"surrounding whitespace", "  compiler  ", "compiler"},
		{"internal run collapse", "virtual \t machine", "virtual machine"},
		{"tabs and newlines", "\tjust-in-time\n", "just-in-time"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"hyphen preserved", "Trace-Based", "trace-based"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// TestNormalizeIdempotent verifies that normalizing an already-normalized
// key is a no-op, which keeps index-time and query-time keys identical.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Bank", "  Virtual \t Machine ", "garbage collection", "HEURISTIC"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

// TestNormalizeEquivalentForms verifies that all spellings of the same term
// map to one key.
func TestNormalizeEquivalentForms(t *testing.T) {
	forms := []string{"virtual machine", "Virtual Machine", "VIRTUAL  MACHINE", " virtual\tmachine "}
	want := Normalize(forms[0])
	for _, f := range forms[1:] {
		if got := Normalize(f); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", f, got, want)
		}
	}
}
