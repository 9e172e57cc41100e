package normalize

import "testing"

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // "" means nil expected
	}{
		{"empty", "", ""},
		{"whitespace_only", "   ", ""},
		{"plain_digits", "5511912345678", "5511912345678"},
		{"plus_prefix", "+55 11 91234-5678", "5511912345678"},
		{"parens_and_dashes", "(11) 91234-5678", "11912345678"},
		{"dots", "11.91234.5678", "11912345678"},
		{"no_digits", "+-()", ""},
		{"inner_plus_dropped", "55+11", "5511"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Phone(tc.in)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("Phone(%q) = %q; want nil", tc.in, *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("Phone(%q) = %v; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExternalID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace_only", " \t ", ""},
		{"barcode_with_separators", "123.456-7", "1234567"},
		{"spaces_and_slashes", "12 34/56", "123456"},
		{"already_clean", "1234567", "1234567"},
		{"only_separators", ".-/ ", ""},
		{"keeps_letters", "AB-12.cd", "AB12cd"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ExternalID(tc.in)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("ExternalID(%q) = %q; want nil", tc.in, *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("ExternalID(%q) = %v; want %q", tc.in, got, tc.want)
			}
		})
	}
}

// The two normalizations must agree for the idempotency property: two
// gateway events carrying "123.456-7" and "1234567" are the same entity.
func TestExternalID_EquivalentForms(t *testing.T) {
	a := ExternalID("123.456-7")
	b := ExternalID("1234567")
	if a == nil || b == nil || *a != *b {
		t.Fatalf("expected equal keys, got %v and %v", a, b)
	}
}
