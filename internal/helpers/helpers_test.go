package helpers

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(secret, "user-123", "admin", "admin@wanderbay.app", time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.UserID != "user-123" || claims.Role != "admin" || claims.Email != "admin@wanderbay.app" {
		t.Errorf("claims do not round-trip: %+v", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", "user-123", "user", "a@b.c", time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	if _, err := ValidateToken("secret-b", token); err == nil {
		t.Error("expected validation with wrong secret to fail")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", "user-123", "user", "a@b.c", -time.Minute)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	if _, err := ValidateToken("secret", token); err == nil {
		t.Error("expected expired token to fail validation")
	}
}

func TestIsPasswordStrong(t *testing.T) {
	cases := []struct {
		password string
		strong   bool
	}{
		{"Aa1!aaaa", true},
		{"Str0ng&Pass", true},
		{"short1!", false},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigits!!", false},
		{"NoSymbols11", false},
	}
	for _, tc := range cases {
		if got := IsPasswordStrong(tc.password); got != tc.strong {
			t.Errorf("IsPasswordStrong(%q) = %v, want %v", tc.password, got, tc.strong)
		}
	}
}

func TestGenerateSlug(t *testing.T) {
	slug := GenerateSlug("Grand Hotel", "Cape Town")
	if !strings.HasPrefix(slug, "grand-hotel-cape-town-") {
		t.Errorf("unexpected slug shape: %q", slug)
	}
	if GenerateSlug("Grand Hotel") == GenerateSlug("Grand Hotel") {
		t.Error("expected distinct slugs for same input")
	}
	if GenerateSlug("") == "" {
		t.Error("empty input should still produce a suffix-only slug")
	}
	if s := GenerateSlug("Café & Søme! weird"); strings.ContainsAny(s, " &!é") {
		t.Errorf("slug contains unsafe characters: %q", s)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	got := RemoveDuplicates([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}
