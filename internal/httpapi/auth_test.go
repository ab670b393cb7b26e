package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"medsupply/backend/internal/domain"
	"medsupply/backend/internal/store/memory"
)

func TestRegisterValidation(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, memory.New())
	ctx := context.Background()

	cases := []struct {
		email    string
		password string
		want     error
	}{
		{"not-an-email", "secret1", ErrInvalidEmail},
		{"", "secret1", ErrInvalidEmail},
		{"owner@example.com", "short", ErrPasswordTooShort},
	}
	for _, tc := range cases {
		_, err := auth.Register(ctx, domain.RegisterRequest{Email: tc.email, Password: tc.password})
		if !errors.Is(err, tc.want) {
			t.Fatalf("Register(%q, %q) = %v, want %v", tc.email, tc.password, err, tc.want)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, memory.New())
	ctx := context.Background()

	req := domain.RegisterRequest{Email: "owner@example.com", Password: "secret1"}
	resp, err := auth.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.Email != "owner@example.com" {
		t.Fatalf("registration should sign in: %+v", resp)
	}

	// Same address with different casing still collides.
	req.Email = "Owner@Example.COM"
	if _, err := auth.Register(ctx, req); !errors.Is(err, ErrEmailRegistered) {
		t.Fatalf("duplicate register = %v, want ErrEmailRegistered", err)
	}
}

func TestLogin(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, memory.New())
	ctx := context.Background()

	if _, err := auth.Register(ctx, domain.RegisterRequest{Email: "owner@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.Login(ctx, domain.LoginRequest{Email: "owner@example.com", Password: "wrong"}); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password = %v, want ErrBadCredentials", err)
	}
	if _, err := auth.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "secret1"}); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown email = %v, want ErrBadCredentials", err)
	}

	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "OWNER@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if actor.Email != "owner@example.com" {
		t.Fatalf("actor email = %q", actor.Email)
	}
}

func TestParseTokenRejectsForgedToken(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, memory.New())
	other := NewAuthManager("another-secret-another-secret-ok", time.Hour, memory.New())
	ctx := context.Background()

	resp, err := other.Register(ctx, domain.RegisterRequest{Email: "owner@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("token signed with a different secret was accepted")
	}
	if _, err := auth.ParseToken("not-a-token"); err == nil {
		t.Fatalf("garbage token was accepted")
	}
}
