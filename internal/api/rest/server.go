// Package rest provides functionality for initializing the reference gate
// API server.
package rest

import (
	"github.com/bwownie/go-browniegate/internal/api/rest/handlers"
	"github.com/bwownie/go-browniegate/internal/api/rest/middleware"
	"github.com/bwownie/go-browniegate/internal/config"
	"github.com/bwownie/go-browniegate/internal/service/secretary/v1/secretary"
	"github.com/bwownie/go-browniegate/internal/storage/v1/inmem"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
	"net/http"
	"time"
)

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(cfg *config.Config, log *zerolog.Logger) (server *http.Server, err error) {
	// initialize storage
	storage := inmem.InitStorage(log)

	// initialize secretary
	secretaryService, err := secretary.NewSecretaryService(cfg.SecretConfig)
	if err != nil {
		return nil, err
	}

	// initialize credential handler
	credentialHandler, err := middleware.NewCredentialHandler(cfg.ClientConfig)
	if err != nil {
		return nil, err
	}

	urlHandler, err := handlers.InitHandlers(storage, secretaryService, cfg.SecretConfig, log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	devGroup := r.Group(nil)
	devGroup.Post("/api/dev/register", urlHandler.HandleDevRegister())
	devGroup.Post("/api/dev/issue", urlHandler.HandleDevIssue())
	gateGroup := r.Group(nil)
	gateGroup.Use(credentialHandler.CredentialHandle)
	gateGroup.Post("/api/user/validate", urlHandler.HandleValidate())
	gateGroup.Post("/api/user/get_data", urlHandler.HandleGetUserData())
	gateGroup.Post("/api/user/get_pfp", urlHandler.HandleGetPfp())
	gateGroup.Post("/api/cookie/generate", urlHandler.HandleGenerateCookie())
	gateGroup.Post("/api/cookie/validate", urlHandler.HandleValidateCookie())
	gateGroup.Post("/api/cookie/remove", urlHandler.HandleRemoveCookie())

	srv := &http.Server{
		Addr:         cfg.ServerConfig.ServerAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}
