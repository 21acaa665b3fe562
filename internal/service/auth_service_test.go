package service

import (
	"errors"
	"testing"
)

func TestClientAuthenticator(t *testing.T) {
	hash, err := HashClientSecret("s3cret")
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	auth := NewClientAuthenticator("travel-ui", hash, nil)

	client, err := auth.Authenticate(" travel-ui ", "s3cret", "")
	if err != nil {
		t.Fatalf("expected valid credentials, got %v", err)
	}
	if client.ID != "travel-ui" || FormatScopes(client.Scopes) != "decisions:read decisions:write" {
		t.Fatalf("unexpected client %+v", client)
	}

	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{name: "wrong secret", id: "travel-ui", secret: "nope"},
		{name: "wrong id", id: "other", secret: "s3cret"},
		{name: "empty secret", id: "travel-ui", secret: ""},
		{name: "empty id", id: " ", secret: "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Authenticate(tt.id, tt.secret, ""); !errors.Is(err, ErrInvalidClientCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
		})
	}
}

func TestClientAuthenticatorScopes(t *testing.T) {
	hash, err := HashClientSecret("s3cret")
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	readOnly := NewClientAuthenticator("dashboard", hash, []string{ScopeDecisionsRead})

	client, err := readOnly.Authenticate("dashboard", "s3cret", "")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if len(client.Scopes) != 1 || client.Scopes[0] != ScopeDecisionsRead {
		t.Fatalf("expected read scope only, got %v", client.Scopes)
	}
	if _, err := readOnly.Authenticate("dashboard", "s3cret", "decisions:write"); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope for ungranted scope, got %v", err)
	}
	// credenciales malas ganan sobre un scope inválido
	if _, err := readOnly.Authenticate("dashboard", "nope", "decisions:write"); !errors.Is(err, ErrInvalidClientCredentials) {
		t.Fatalf("expected invalid credentials first, got %v", err)
	}

	full := NewClientAuthenticator("travel-ui", hash, nil)
	narrowed, err := full.Authenticate("travel-ui", "s3cret", "decisions:read")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if FormatScopes(narrowed.Scopes) != ScopeDecisionsRead {
		t.Fatalf("expected narrowed scope, got %v", narrowed.Scopes)
	}
}

func TestClientAuthenticatorNotConfigured(t *testing.T) {
	if _, err := NewClientAuthenticator("", "", nil).Authenticate("a", "b", ""); !errors.Is(err, ErrAuthNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
	if _, err := HashClientSecret("  "); err == nil {
		t.Fatalf("expected error for blank secret")
	}
}
