package utils

import (
	"regexp"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateInviteTokenFormat(t *testing.T) {
	token, err := GenerateInviteToken()
	if err != nil {
		t.Fatalf("GenerateInviteToken failed: %v", err)
	}
	if !hexToken.MatchString(token) {
		t.Errorf("token %q is not 64 lowercase hex chars", token)
	}
}

func TestGenerateInviteTokenProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every token is 64 lowercase hex chars", prop.ForAll(
		func(_ int) bool {
			token, err := GenerateInviteToken()
			return err == nil && hexToken.MatchString(token)
		},
		gen.Int(),
	))

	properties.Property("batches of tokens never collide", prop.ForAll(
		func(n int) bool {
			seen := make(map[string]bool, n)
			for i := 0; i < n; i++ {
				token, err := GenerateInviteToken()
				if err != nil || seen[token] {
					return false
				}
				seen[token] = true
			}
			return true
		},
		gen.IntRange(1, 256),
	))

	properties.TestingRun(t)
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	userID, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want user-123", userID)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
	if _, err := ParseToken(""); err == nil {
		t.Error("expected error for empty token")
	}
}
