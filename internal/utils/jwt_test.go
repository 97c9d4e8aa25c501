package utils

import (
	"testing"
	"time"
)

func TestUserJWTRoundTrip(t *testing.T) {
	token, err := GenerateUserJWT("test-secret", "u1", "Alice", "organizer", time.Hour)
	if err != nil {
		t.Fatalf("GenerateUserJWT() error = %v", err)
	}

	claims, err := ValidateUserJWT("test-secret", token)
	if err != nil {
		t.Fatalf("ValidateUserJWT() error = %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "Alice" || claims.Role != "organizer" {
		t.Fatalf("claims = %+v, want u1/Alice/organizer", claims)
	}
	if claims.Issuer != "eventbeta" || claims.Subject != "u1" {
		t.Fatalf("registered claims = %+v, want issuer eventbeta and subject u1", claims.RegisteredClaims)
	}
}

func TestUserJWTWrongSecret(t *testing.T) {
	token, err := GenerateUserJWT("test-secret", "u1", "Alice", "attendee", time.Hour)
	if err != nil {
		t.Fatalf("GenerateUserJWT() error = %v", err)
	}

	if _, err := ValidateUserJWT("other-secret", token); err == nil {
		t.Fatal("ValidateUserJWT() accepted a token signed with a different secret")
	}
}

func TestUserJWTExpired(t *testing.T) {
	token, err := GenerateUserJWT("test-secret", "u1", "Alice", "attendee", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateUserJWT() error = %v", err)
	}

	if _, err := ValidateUserJWT("test-secret", token); err == nil {
		t.Fatal("ValidateUserJWT() accepted an expired token")
	}
}
