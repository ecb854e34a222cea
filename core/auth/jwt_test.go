package auth

import "testing"

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Generate("user@example.com")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		claims, err := issuer.Parse(token)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if claims.Email != "user@example.com" {
			t.Errorf("Email = %q", claims.Email)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := issuer.Generate("user@example.com")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		other := NewTokenIssuer("different-secret")
		if _, err := other.Parse(token); err == nil {
			t.Error("token signed with another secret parsed successfully")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := issuer.Parse("not.a.token"); err == nil {
			t.Error("garbage token parsed successfully")
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Password1!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("Password1!", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("WrongPass1!", hash) {
		t.Error("wrong password accepted")
	}
}
