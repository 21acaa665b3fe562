package service

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidClientCredentials = errors.New("invalid client credentials")
	ErrAuthNotConfigured        = errors.New("auth not configured")
)

// APIClient es el principal autenticado con los scopes que se le emiten.
type APIClient struct {
	ID     string   `json:"client_id"`
	Scopes []string `json:"scopes"`
}

// ClientAuthenticator valida client_id/client_secret contra un hash bcrypt
// configurado y limita los scopes a los concedidos a ese cliente.
type ClientAuthenticator struct {
	clientID   string
	secretHash []byte
	scopes     []string
}

// NewClientAuthenticator sin scopes concede lectura y escritura.
func NewClientAuthenticator(clientID, secretHash string, scopes []string) *ClientAuthenticator {
	if len(scopes) == 0 {
		scopes = knownScopes
	}
	return &ClientAuthenticator{
		clientID:   strings.TrimSpace(clientID),
		secretHash: []byte(strings.TrimSpace(secretHash)),
		scopes:     append([]string(nil), scopes...),
	}
}

func (a *ClientAuthenticator) Configured() bool {
	return a != nil && a.clientID != "" && len(a.secretHash) > 0
}

// Authenticate verifica credenciales y reduce los scopes a requestedScope si se pidió.
func (a *ClientAuthenticator) Authenticate(clientID, secret, requestedScope string) (APIClient, error) {
	if !a.Configured() {
		return APIClient{}, ErrAuthNotConfigured
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || secret == "" {
		return APIClient{}, ErrInvalidClientCredentials
	}
	if subtle.ConstantTimeCompare([]byte(clientID), []byte(a.clientID)) != 1 {
		return APIClient{}, ErrInvalidClientCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.secretHash, []byte(secret)); err != nil {
		return APIClient{}, ErrInvalidClientCredentials
	}
	scopes, err := NarrowScopes(a.scopes, requestedScope)
	if err != nil {
		return APIClient{}, err
	}
	return APIClient{ID: a.clientID, Scopes: scopes}, nil
}

// HashClientSecret genera el valor para API_CLIENT_SECRET_HASH.
func HashClientSecret(secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrInvalidClientCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
