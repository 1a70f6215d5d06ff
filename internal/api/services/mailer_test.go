package services

import "testing"

func TestEnvelopeFrom(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"FoodLink <no-reply@foodlink.local>", "no-reply@foodlink.local"},
		{"no-reply@foodlink.local", "no-reply@foodlink.local"},
		{"not an address", "not an address"},
	}
	for _, tc := range cases {
		if got := envelopeFrom(tc.in); got != tc.want {
			t.Errorf("envelopeFrom(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
