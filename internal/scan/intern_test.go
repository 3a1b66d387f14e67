package scan

import "testing"

func TestCanonicalTransferEncoding(t *testing.T) {
	cases := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"base64", "base64", true},
		{"Base64", "base64", true},
		{"QUOTED-PRINTABLE", "quoted-printable", true},
		{"7BIT", "7bit", true},
		{"gzip", "", false},
	}
	for _, c := range cases {
		got, ok := CanonicalTransferEncoding([]byte(c.raw))
		if ok != c.wantOK || (ok && got != c.want) {
			t.Errorf("CanonicalTransferEncoding(%q) = (%q, %v), want (%q, %v)", c.raw, got, ok, c.want, c.wantOK)
		}
	}
}
