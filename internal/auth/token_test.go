package auth

import (
	"testing"
	"time"
)

func TestTokenService(t *testing.T) {
	service, err := NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create token service: %v", err)
	}

	t.Run("GenerateAndValidate", func(t *testing.T) {
		token, err := service.Generate("actor123")
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}
		if token == "" {
			t.Error("Token should not be empty")
		}

		claims, err := service.Validate(token)
		if err != nil {
			t.Errorf("Failed to validate token: %v", err)
		}
		if claims != nil && claims.ActorID != "actor123" {
			t.Errorf("Expected actor ID 'actor123', got '%s'", claims.ActorID)
		}
	})

	t.Run("ValidateInvalidToken", func(t *testing.T) {
		if _, err := service.Validate("invalid-token"); err == nil {
			t.Error("Should fail to validate invalid token")
		}
	})

	t.Run("ValidateWrongSecret", func(t *testing.T) {
		other, err := NewTokenService("other-secret", time.Hour)
		if err != nil {
			t.Fatalf("Failed to create token service: %v", err)
		}
		token, err := other.Generate("actor123")
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}
		if _, err := service.Validate(token); err == nil {
			t.Error("Should reject token signed with a different secret")
		}
	})

	t.Run("ValidateExpiredToken", func(t *testing.T) {
		short, err := NewTokenService("test-secret", -time.Minute)
		if err != nil {
			t.Fatalf("Failed to create token service: %v", err)
		}
		token, err := short.Generate("actor123")
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}
		if _, err := service.Validate(token); err != ErrTokenExpired {
			t.Errorf("Expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("EmptySecret", func(t *testing.T) {
		if _, err := NewTokenService("", time.Hour); err == nil {
			t.Error("Should reject empty secret")
		}
	})
}
