package auth

import (
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "call2024@admin"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if hash == "" {
		t.Fatal("Expected hash to be generated")
	}

	if hash == password {
		t.Fatal("Hash should not equal plain password")
	}
}

func TestCheckPassword_Valid(t *testing.T) {
	password := "call2024@admin"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	err = CheckPassword(hash, password)
	if err != nil {
		t.Errorf("Expected password to match, got error: %v", err)
	}
}

func TestCheckPassword_Invalid(t *testing.T) {
	password := "call2024@admin"
	wrongPassword := "wrongPassword"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	err = CheckPassword(hash, wrongPassword)
	if err == nil {
		t.Error("Expected error for wrong password")
	}
}
