package handlers

import (
	"strings"
	"testing"

	"github.com/rohits-web03/foodlink/internal/models"
)

func TestOAuthStateRoundTrip(t *testing.T) {
	encoded, err := EncodeState(OAuthState{Flow: "register", Role: models.RoleNGO})
	if err != nil {
		t.Fatal(err)
	}
	if parts := strings.Split(encoded, "."); len(parts) != 2 || parts[0] == "" {
		t.Fatalf("encoded state %q does not carry a nonce and a payload", encoded)
	}

	decoded, err := DecodeState(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Flow != "register" || decoded.Role != models.RoleNGO {
		t.Errorf("decoded state = %+v, want flow register, role ngo", decoded)
	}
}

func TestOAuthStateNonceVaries(t *testing.T) {
	a, err := EncodeState(OAuthState{Flow: "login"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodeState(OAuthState{Flow: "login"})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encodings of the same state share a nonce")
	}
}

func TestDecodeStateRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "nodot", "a.b.c", "nonce.!!!notbase64!!!"} {
		if _, err := DecodeState(bad); err == nil {
			t.Errorf("DecodeState(%q) accepted malformed input", bad)
		}
	}
}
