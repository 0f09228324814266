package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	tok, err := m.Generate("u1", "a@b.test")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@b.test" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewManager("secret-a", time.Hour).Generate("u1", "a@b.test")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewManager("secret-b", time.Hour).Parse(tok); err == nil {
		t.Fatal("token signed with another secret parsed successfully")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	tok, err := m.Generate("u1", "a@b.test")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expired token parsed successfully")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "hunter2!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3!") {
		t.Error("wrong password accepted")
	}
}
