package session

import (
	"errors"
	"testing"
	"time"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager("secret", time.Hour, "test")

	token, err := m.Issue("nickname")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if claims.Nickname != "nickname" {
		t.Errorf("Verify() nickname = %q, want %q", claims.Nickname, "nickname")
	}
}

func TestManager_Verify_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour, "test").Issue("nickname")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	_, err = NewManager("secret-b", time.Hour, "test").Verify(token)
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Verify() error = %v, want ErrInvalidSession", err)
	}
}

func TestManager_Verify_Expired(t *testing.T) {
	m := NewManager("secret", -time.Minute, "test")

	token, err := m.Issue("nickname")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrExpiredSession) {
		t.Errorf("Verify() error = %v, want ErrExpiredSession", err)
	}
}

func TestManager_Verify_Garbage(t *testing.T) {
	m := NewManager("secret", time.Hour, "test")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidSession", token, err)
		}
	}
}
