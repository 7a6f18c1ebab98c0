// Package middleware provides various middleware functionality.
package middleware

import (
	"crypto/subtle"
	"errors"
	"github.com/bwownie/go-browniegate/internal/config"
	"net/http"
)

// CredentialHandler sets object structure.
type CredentialHandler struct {
	cfg *config.ClientConfig
}

// NewCredentialHandler initializes a new gate credential handler.
func NewCredentialHandler(cfg *config.ClientConfig) (*CredentialHandler, error) {
	if cfg == nil {
		return nil, errors.New("nil client config object was found")
	}
	return &CredentialHandler{
		cfg: cfg,
	}, nil
}

// CredentialHandle rejects requests whose authorization and project-uuid
// headers do not match the configured credentials.
func (c *CredentialHandler) CredentialHandle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("authorization")
		projectUUID := r.Header.Get("project-uuid")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(c.cfg.APIKey)) != 1 ||
			subtle.ConstantTimeCompare([]byte(projectUUID), []byte(c.cfg.ProjectUUID)) != 1 {
			http.Error(w, "Invalid API credentials", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
