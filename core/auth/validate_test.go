package auth

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"empty", "", ErrPasswordEmpty},
		{"no lowercase", "PASSWORD1!", ErrPasswordNoLower},
		{"no uppercase", "password1!", ErrPasswordNoUpper},
		{"no digit", "Password!", ErrPasswordNoDigit},
		{"no special", "Password1", ErrPasswordNoSpecial},
		{"too short", "Pass1!", ErrPasswordTooShort},
		{"exactly seven", "Pas1!ab", ErrPasswordTooShort},
		{"valid", "Password1!", nil},
		{"valid with brackets", "Abcdefg1[", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password)
			if !errors.Is(got, tt.want) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"UPPER@EXAMPLE.COM", true},
		{"", false},
		{"plainaddress", false},
		{"missing@tld", false},
		{"@example.com", false},
		{"user@.com", false},
		{"user@example.c", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := ValidateName("Ada", "L"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty first name", func(t *testing.T) {
		if err := ValidateName("", "L"); !errors.Is(err, ErrFirstNameTooShort) {
			t.Errorf("got %v, want ErrFirstNameTooShort", err)
		}
	})

	t.Run("first name too long", func(t *testing.T) {
		long := "abcdefghijklmnopqrstuvwxyzabcd"
		if err := ValidateName(long, ""); !errors.Is(err, ErrFirstNameTooLong) {
			t.Errorf("got %v, want ErrFirstNameTooLong", err)
		}
	})

	t.Run("last initial too long", func(t *testing.T) {
		if err := ValidateName("Ada", "Lo"); !errors.Is(err, ErrLastInitialLong) {
			t.Errorf("got %v, want ErrLastInitialLong", err)
		}
	})

	t.Run("last initial optional", func(t *testing.T) {
		if err := ValidateName("Ada", ""); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("Ada", "L"); got != "Ada L." {
		t.Errorf("DisplayName = %q, want %q", got, "Ada L.")
	}
	if got := DisplayName("Ada", ""); got != "Ada" {
		t.Errorf("DisplayName = %q, want %q", got, "Ada")
	}
}
