package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	handlersErrors "github.com/bwownie/go-browniegate/internal/api/rest/errors"
	"github.com/bwownie/go-browniegate/internal/config"
	"github.com/bwownie/go-browniegate/internal/models/modelclaims"
	"github.com/bwownie/go-browniegate/internal/models/modeldto"
	"github.com/bwownie/go-browniegate/internal/models/modelstorage"
	"github.com/bwownie/go-browniegate/internal/service/secretary/v1"
	"github.com/bwownie/go-browniegate/internal/storage/v1"
	storageErrors "github.com/bwownie/go-browniegate/internal/storage/v1/errors"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"
)

type Handler struct {
	storage      storage.Storage
	secretary    secretary.Secretary
	secretConfig *config.SecretConfig
	log          *zerolog.Logger
}

func InitHandlers(st storage.Storage, sec secretary.Secretary, secretConfig *config.SecretConfig, log *zerolog.Logger) (*Handler, error) {
	if st == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil storage was passed to handlers initializer"}
	}
	if sec == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil secretary was passed to handlers initializer"}
	}
	return &Handler{storage: st, secretary: sec, secretConfig: secretConfig, log: log}, nil
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	b, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("reading request body failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return false
	}
	err = json.Unmarshal(b, target)
	if err != nil {
		h.log.Error().Err(err).Msg("parsing request body failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, payload interface{}) {
	resBody, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(resBody)
}

// HandleValidate consumes a one-shot authorization code and resolves it to a
// user identifier. An unknown or already-used code is a validated:false
// response, not an error status.
func (h *Handler) HandleValidate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.ValidateRequest
		if !h.readBody(w, r, &request) {
			return
		}
		userID, err := h.storage.ConsumeCode(ctx, request.Code)
		if err != nil {
			var notFoundError *storageErrors.NotFoundError
			if errors.As(err, &notFoundError) {
				h.respond(w, modeldto.ValidateResponse{Validated: false})
				return
			}
			h.log.Error().Err(err).Msg("handle validate failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.respond(w, modeldto.ValidateResponse{Validated: true, UserID: userID})
	}
}

// HandleGetUserData returns the stored user fields together with a
// validated marker.
func (h *Handler) HandleGetUserData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.UserRequest
		if !h.readBody(w, r, &request) {
			return
		}
		user, err := h.storage.GetUser(ctx, request.UserID)
		if err != nil {
			var notFoundError *storageErrors.NotFoundError
			if errors.As(err, &notFoundError) {
				h.respond(w, map[string]interface{}{"validated": false})
				return
			}
			h.log.Error().Err(err).Msg("handle get_data failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.respond(w, map[string]interface{}{
			"validated":     true,
			"user_id":       user.UserID,
			"login":         user.Login,
			"email":         user.Email,
			"registered_at": user.RegisteredAt,
		})
	}
}

// HandleGenerateCookie issues a session cookie for a known user. The cookie
// is a JSON literal carrying the user identifier and an HS256-signed hash;
// the hash is also retained server-side for later validation.
func (h *Handler) HandleGenerateCookie() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.UserRequest
		if !h.readBody(w, r, &request) {
			return
		}
		if _, err := h.storage.GetUser(ctx, request.UserID); err != nil {
			var notFoundError *storageErrors.NotFoundError
			if errors.As(err, &notFoundError) {
				h.respond(w, modeldto.CookieGenerateResponse{Success: false})
				return
			}
			h.log.Error().Err(err).Msg("handle cookie generate failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		hash, err := h.newCookieHash(request.UserID)
		if err != nil {
			h.log.Error().Err(err).Msg("handle cookie generate failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := h.storage.AddCookieHash(ctx, request.UserID, hash); err != nil {
			h.log.Error().Err(err).Msg("handle cookie generate failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rawCookie, err := json.Marshal(modeldto.Cookie{UserID: request.UserID, Hash: hash})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.respond(w, modeldto.CookieGenerateResponse{Success: true, Cookie: string(rawCookie)})
	}
}

// HandleValidateCookie checks a presented cookie hash against the retained
// one and verifies its signature.
func (h *Handler) HandleValidateCookie() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.CookieValidateRequest
		if !h.readBody(w, r, &request) {
			return
		}
		ok, err := h.storage.CheckCookieHash(ctx, request.UserID, request.CookieHash)
		if err != nil {
			h.log.Error().Err(err).Msg("handle cookie validate failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if ok {
			userID, err := h.validateCookieHash(request.CookieHash)
			ok = err == nil && userID == request.UserID
		}
		h.respond(w, modeldto.CookieValidateResponse{Success: ok})
	}
}

// HandleRemoveCookie revokes the session cookie of a user; revoking an
// absent cookie is still a 200.
func (h *Handler) HandleRemoveCookie() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.UserRequest
		if !h.readBody(w, r, &request) {
			return
		}
		err := h.storage.RemoveCookieHash(ctx, request.UserID)
		if err != nil {
			var notFoundError *storageErrors.NotFoundError
			if !errors.As(err, &notFoundError) {
				h.log.Error().Err(err).Msg("handle cookie remove failed")
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HandleGetPfp returns the profile picture URL of a user when one is set.
func (h *Handler) HandleGetPfp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.UserRequest
		if !h.readBody(w, r, &request) {
			return
		}
		user, err := h.storage.GetUser(ctx, request.UserID)
		if err != nil || user.Pfp == "" {
			h.respond(w, modeldto.PfpResponse{Success: false})
			return
		}
		h.respond(w, modeldto.PfpResponse{Success: true, Pfp: user.Pfp})
	}
}

// HandleDevRegister creates a user record for local development flows.
func (h *Handler) HandleDevRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.RegisterRequest
		if !h.readBody(w, r, &request) {
			return
		}
		userID := uuid.New().String()
		user := modelstorage.UserStorageEntry{
			UserID:       userID,
			Login:        request.Login,
			Email:        request.Email,
			Pfp:          request.Pfp,
			RegisteredAt: time.Now().Format(time.RFC3339),
		}
		if err := h.storage.AddNewUser(ctx, user); err != nil {
			h.log.Error().Err(err).Msg("handle dev register failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("registered dev user %s", userID))
		h.respond(w, modeldto.RegisterResponse{UserID: userID})
	}
}

// HandleDevIssue mints a one-shot code for a user and returns it wrapped in
// an encrypted, URL-escaped payload, the same shape a production redirect
// would carry.
func (h *Handler) HandleDevIssue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		var request modeldto.UserRequest
		if !h.readBody(w, r, &request) {
			return
		}
		if _, err := h.storage.GetUser(ctx, request.UserID); err != nil {
			h.log.Error().Err(err).Msg("handle dev issue failed")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		code := uuid.New().String()
		issuedAt := time.Now().Format(time.RFC3339)
		if err := h.storage.AddCode(ctx, modelstorage.CodeStorageEntry{Code: code, UserID: request.UserID, IssuedAt: issuedAt}); err != nil {
			h.log.Error().Err(err).Msg("handle dev issue failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		plaintext, err := json.Marshal(modeldto.Payload{Code: code, Timestamp: issuedAt})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		encoded, err := h.secretary.Encode(string(plaintext))
		if err != nil {
			h.log.Error().Err(err).Msg("handle dev issue failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.respond(w, modeldto.IssueResponse{Payload: url.QueryEscape(encoded)})
	}
}

func (h *Handler) newCookieHash(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &modelclaims.CookieClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(30 * time.Minute).Unix(),
		},
	})
	return token.SignedString([]byte(h.secretConfig.SecretKey))
}

func (h *Handler) validateCookieHash(hash string) (string, error) {
	token, err := jwt.ParseWithClaims(hash, &modelclaims.CookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.secretConfig.SecretKey), nil
	})
	if err != nil {
		return "", err
	}
	if claims, ok := token.Claims.(*modelclaims.CookieClaims); ok && token.Valid {
		return claims.UserID, nil
	}
	return "", errors.New("invalid cookie hash")
}
