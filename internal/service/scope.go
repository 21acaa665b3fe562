package service

import (
	"errors"
	"strings"
)

// Scopes de la API de decisiones.
const (
	ScopeDecisionsRead  = "decisions:read"
	ScopeDecisionsWrite = "decisions:write"
)

var ErrInvalidScope = errors.New("invalid scope")

// knownScopes fija además el orden canónico.
var knownScopes = []string{ScopeDecisionsRead, ScopeDecisionsWrite}

// ParseScopes acepta scopes separados por espacio o coma y devuelve la lista
// canónica sin duplicados. Un scope desconocido o una lista vacía es ErrInvalidScope.
func ParseScopes(raw string) ([]string, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) == 0 {
		return nil, ErrInvalidScope
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if !hasScope(knownScopes, f) {
			return nil, ErrInvalidScope
		}
		seen[f] = true
	}
	out := make([]string, 0, len(seen))
	for _, s := range knownScopes {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

// FormatScopes serializa como en el claim "scope" de OAuth2.
func FormatScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}

// NarrowScopes valida lo pedido contra lo concedido. Sin pedido se conserva todo
// lo concedido; pedir un scope no concedido es ErrInvalidScope.
func NarrowScopes(granted []string, requested string) ([]string, error) {
	if strings.TrimSpace(requested) == "" {
		return append([]string(nil), granted...), nil
	}
	want, err := ParseScopes(requested)
	if err != nil {
		return nil, err
	}
	for _, s := range want {
		if !hasScope(granted, s) {
			return nil, ErrInvalidScope
		}
	}
	return want, nil
}

func hasScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
