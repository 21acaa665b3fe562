package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer     = "travel-agent"
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

// TokenPair es la respuesta de /auth/token y /auth/refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// Claims de los tokens de cliente. Scope va separado por espacios, como en OAuth2;
// el refresh token no lleva scope porque lo autoritativo es el grant guardado.
type Claims struct {
	ClientID string `json:"cid"`
	Scope    string `json:"scope,omitempty"`
	Use      string `json:"use"`
	jwt.RegisteredClaims
}

func (c Claims) Scopes() []string {
	return strings.Fields(c.Scope)
}

func (c Claims) HasScope(scope string) bool {
	return hasScope(c.Scopes(), scope)
}

// JWTService emite access tokens con scope y refresh tokens de un solo uso.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshTokenStore
	now        func() time.Time
}

func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return NewJWTServiceWithStore(secret, accessTTL, refreshTTL, nil)
}

// NewJWTServiceWithStore usa la store en memoria si store es nil.
func NewJWTServiceWithStore(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *JWTService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	if store == nil {
		store = NewMemoryRefreshTokenStore()
	}
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Enabled indica si hay secreto configurado; sin él la API no exige tokens.
func (s *JWTService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue emite un par para el cliente y registra el grant del refresh token.
func (s *JWTService) Issue(ctx context.Context, client APIClient) (TokenPair, error) {
	if !s.Enabled() || strings.TrimSpace(client.ID) == "" || len(client.Scopes) == 0 {
		return TokenPair{}, ErrJWTInvalid
	}
	now := s.now()
	scope := FormatScopes(client.Scopes)

	access, err := s.sign(Claims{
		ClientID:         client.ID,
		Scope:            scope,
		Use:              tokenUseAccess,
		RegisteredClaims: s.registered(client.ID, uuid.NewString(), now, s.accessTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}

	jti := uuid.NewString()
	refresh, err := s.sign(Claims{
		ClientID:         client.ID,
		Use:              tokenUseRefresh,
		RegisteredClaims: s.registered(client.ID, jti, now, s.refreshTTL),
	})
	if err != nil {
		return TokenPair{}, err
	}
	grant := RefreshGrant{ClientID: client.ID, Scopes: client.Scopes, ExpiresAt: now.Add(s.refreshTTL)}
	if err := s.store.Save(ctx, jti, grant); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh grant: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		Scope:        scope,
	}, nil
}

// Refresh consume el grant del refresh token y emite un par nuevo con sus
// scopes, o con el subconjunto pedido. Un token consumido o revocado es ErrJWTInvalid.
// Si sólo falla el scope pedido, el grant se restaura.
func (s *JWTService) Refresh(ctx context.Context, refreshToken, requestedScope string) (TokenPair, error) {
	claims, err := s.verify(refreshToken, tokenUseRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	grant, err := s.store.Consume(ctx, claims.ID)
	if errors.Is(err, ErrRefreshTokenNotFound) {
		return TokenPair{}, ErrJWTInvalid
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("consume refresh grant: %w", err)
	}
	if grant.ClientID != claims.ClientID {
		return TokenPair{}, ErrJWTInvalid
	}

	scopes, err := NarrowScopes(grant.Scopes, requestedScope)
	if err != nil {
		if saveErr := s.store.Save(ctx, claims.ID, grant); saveErr != nil {
			return TokenPair{}, fmt.Errorf("restore refresh grant: %w", saveErr)
		}
		return TokenPair{}, err
	}
	return s.Issue(ctx, APIClient{ID: grant.ClientID, Scopes: scopes})
}

// Revoke invalida el refresh token.
func (s *JWTService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.verify(refreshToken, tokenUseRefresh)
	if err != nil {
		return err
	}
	return s.store.Revoke(ctx, claims.ID)
}

// ParseAccessToken valida un access token y devuelve sus claims.
func (s *JWTService) ParseAccessToken(accessToken string) (Claims, error) {
	return s.verify(accessToken, tokenUseAccess)
}

func (s *JWTService) registered(clientID, jti string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        jti,
		Issuer:    tokenIssuer,
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *JWTService) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// verify chequea firma, emisor, vencimiento y uso del token.
func (s *JWTService) verify(token, use string) (Claims, error) {
	if !s.Enabled() || strings.TrimSpace(token) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(_ *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Claims{}, ErrJWTExpired
	}
	if err != nil {
		return Claims{}, ErrJWTInvalid
	}
	if claims.Use != use || claims.ClientID == "" || claims.Subject != claims.ClientID || claims.ID == "" {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}
