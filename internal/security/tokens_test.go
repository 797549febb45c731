package security

import (
	"testing"
	"time"
)

func testProvider() *TokenProvider {
	return NewTokenProvider("access-secret", "refresh-secret", "bazaar-auth", time.Hour, 24*time.Hour)
}

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p := testProvider()
	roles := []string{"buyer", "seller"}

	access, err := p.IssueAccess("u1", roles, 3)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" {
		t.Fatal("access token empty")
	}

	claims, err := p.ValidateAccess(access)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("sub = %q, want %q", claims.Subject, "u1")
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "buyer" || claims.Roles[1] != "seller" {
		t.Errorf("roles = %v, want %v", claims.Roles, roles)
	}
	if claims.RoleVersion != 3 {
		t.Errorf("role_version = %d, want 3", claims.RoleVersion)
	}
}

func TestTokenProvider_SecretsNotInterchangeable(t *testing.T) {
	p := testProvider()
	access, err := p.IssueAccess("u1", []string{"buyer"}, 1)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateRefresh(access); err != ErrInvalidToken {
		t.Errorf("ValidateRefresh(access token): want ErrInvalidToken, got %v", err)
	}

	refresh, err := p.IssueRefresh("u1", []string{"buyer"}, 1)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := p.ValidateAccess(refresh); err != ErrInvalidToken {
		t.Errorf("ValidateAccess(refresh token): want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ExpiredAccessRejected(t *testing.T) {
	p := NewTokenProvider("a", "r", "bazaar-auth", -time.Minute, 24*time.Hour)
	access, err := p.IssueAccess("u1", []string{"buyer"}, 1)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("expired access token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateInvalid(t *testing.T) {
	p := testProvider()
	if _, err := p.ValidateAccess("not-a-token"); err != ErrInvalidToken {
		t.Errorf("ValidateAccess garbage: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_WrongIssuerRejected(t *testing.T) {
	other := NewTokenProvider("access-secret", "refresh-secret", "someone-else", time.Hour, 24*time.Hour)
	token, err := other.IssueAccess("u1", []string{"buyer"}, 1)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p := testProvider()
	if _, err := p.ValidateAccess(token); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
}
