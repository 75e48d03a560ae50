package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/promptdeck/promptdeck/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "data.json")})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	return NewService(Config{Store: st, BcryptCost: bcrypt.MinCost})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register("Alice@Example.com", "s3cret", "Alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", user.Email)
	}
	if user.Role != "user" {
		t.Errorf("role = %q, want user", user.Role)
	}
	if user.AvatarURL == "" {
		t.Error("avatar URL not generated")
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Error("password stored unhashed")
	}

	t.Run("login with correct password", func(t *testing.T) {
		got, token, err := svc.Login("alice@example.com", "s3cret")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if got.ID != user.ID || token == "" {
			t.Errorf("Login() = %+v, token %q", got, token)
		}

		authed, err := svc.Authenticate(token)
		if err != nil || authed.ID != user.ID {
			t.Errorf("Authenticate() = %+v, %v", authed, err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.Login("alice@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, _, err := svc.Login("bob@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("logout revokes token", func(t *testing.T) {
		_, token, err := svc.Login("alice@example.com", "s3cret")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if err := svc.Logout(token); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if _, err := svc.Authenticate(token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate() after logout = %v, want ErrUnauthorized", err)
		}
	})
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("", "pw", ""); err == nil {
		t.Error("empty email accepted")
	}
	if _, err := svc.Register("a@example.com", "", ""); err == nil {
		t.Error("empty password accepted")
	}

	t.Run("name defaults to email", func(t *testing.T) {
		u, err := svc.Register("noname@example.com", "pw", "")
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if u.Name != "noname@example.com" {
			t.Errorf("Name = %q", u.Name)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := svc.Register("noname@example.com", "pw2", "X"); err == nil {
			t.Error("duplicate email accepted")
		}
	})
}

func TestBearerFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"Bearer  abc123 ", "abc123"},
		{"bearer abc123", ""},
		{"Basic abc123", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BearerFromHeader(tt.header); got != tt.want {
			t.Errorf("BearerFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
