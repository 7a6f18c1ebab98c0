package client

import (
	"context"
	"encoding/json"
	"errors"
	clientErrors "github.com/bwownie/go-browniegate/internal/api/rest/client/errors"
	"github.com/bwownie/go-browniegate/internal/config"
	"github.com/bwownie/go-browniegate/internal/logger"
	"github.com/bwownie/go-browniegate/internal/models/modeldto"
	"github.com/bwownie/go-browniegate/internal/service/secretary/v1/secretary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecretKey = "test_key"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return newTestClientWithKey(t, baseURL, testSecretKey)
}

func newTestClientWithKey(t *testing.T, baseURL string, secretKey string) *Client {
	t.Helper()
	sec, err := secretary.NewSecretaryService(&config.SecretConfig{SecretKey: secretKey})
	require.NoError(t, err)
	clientConfig := &config.ClientConfig{
		APIKey:      "test-api-key",
		ProjectUUID: "test-project-uuid",
		BaseURL:     baseURL,
	}
	c, err := InitClient(clientConfig, sec, logger.InitLog())
	require.NoError(t, err)
	return c
}

func respondJSON(t *testing.T, w http.ResponseWriter, payload interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(payload))
}

func TestInitClientRejectsNilArguments(t *testing.T) {
	sec, err := secretary.NewSecretaryService(&config.SecretConfig{SecretKey: testSecretKey})
	require.NoError(t, err)
	log := logger.InitLog()

	var nilArgument *clientErrors.ClientFoundNilArgument
	_, err = InitClient(nil, sec, log)
	require.Error(t, err)
	assert.True(t, errors.As(err, &nilArgument))
	_, err = InitClient(&config.ClientConfig{}, nil, log)
	require.Error(t, err)
	assert.True(t, errors.As(err, &nilArgument))
}

func TestInitClientNormalizesBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cookie/remove", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL+"///")
	require.NoError(t, c.RemoveCookie(context.Background(), "u1"))
}

func TestRequestCarriesBaseHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("authorization"))
		assert.Equal(t, "test-project-uuid", r.Header.Get("project-uuid"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		respondJSON(t, w, modeldto.ValidateResponse{Validated: true, UserID: "u1"})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	valid, userID, err := c.VerifyPayload(context.Background(), &modeldto.Payload{
		Code:      "code",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "u1", userID)
}

func TestPayloadRoundTrip(t *testing.T) {
	c := newTestClient(t, "http://localhost")
	original := &modeldto.Payload{Code: "X", Timestamp: time.Now().Format(time.RFC3339)}
	encrypted, err := c.EncryptPayload(original)
	require.NoError(t, err)
	decrypted, err := c.DecryptPayload(encrypted)
	require.NoError(t, err)
	assert.Equal(t, original, decrypted)
}

func TestDecryptPayloadRejectsWrongKey(t *testing.T) {
	c := newTestClient(t, "http://localhost")
	other := newTestClientWithKey(t, "http://localhost", "other_key")
	encrypted, err := c.EncryptPayload(&modeldto.Payload{Code: "X", Timestamp: time.Now().Format(time.RFC3339)})
	require.NoError(t, err)

	var decryptionError *clientErrors.DecryptionError
	_, err = other.DecryptPayload(encrypted)
	require.Error(t, err)
	assert.True(t, errors.As(err, &decryptionError))
}

func TestDecryptPayloadRejectsMalformedInput(t *testing.T) {
	c := newTestClient(t, "http://localhost")
	sec, err := secretary.NewSecretaryService(&config.SecretConfig{SecretKey: testSecretKey})
	require.NoError(t, err)
	notJSON, err := sec.Encode("not a json object")
	require.NoError(t, err)

	var decryptionError *clientErrors.DecryptionError
	for _, payload := range []string{"", "garbage ciphertext", "%zz", notJSON} {
		_, err := c.DecryptPayload(payload)
		require.Error(t, err, "payload %q must not decrypt", payload)
		assert.True(t, errors.As(err, &decryptionError))
	}
}

func TestVerifyPayloadFreshnessBoundary(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		respondJSON(t, w, modeldto.ValidateResponse{Validated: true, UserID: "u1"})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	// out-of-window payloads are rejected locally, without a remote call
	for _, offset := range []time.Duration{-61 * time.Second, 61 * time.Second} {
		valid, userID, err := c.VerifyPayload(ctx, &modeldto.Payload{
			Code:      "code",
			Timestamp: time.Now().Add(offset).Format(time.RFC3339),
		})
		require.NoError(t, err)
		assert.False(t, valid)
		assert.Equal(t, "", userID)
	}
	assert.Equal(t, 0, calls)

	// a payload just inside the window reaches the remote API
	valid, userID, err := c.VerifyPayload(ctx, &modeldto.Payload{
		Code:      "code",
		Timestamp: time.Now().Add(-59 * time.Second).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, 1, calls)
}

func TestVerifyPayloadAcceptsZonelessTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, modeldto.ValidateResponse{Validated: true, UserID: "u1"})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	valid, _, err := c.VerifyPayload(context.Background(), &modeldto.Payload{
		Code:      "code",
		Timestamp: time.Now().Format("2006-01-02T15:04:05.999999"),
	})
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyPayloadRejectsUnparseableTimestamp(t *testing.T) {
	c := newTestClient(t, "http://localhost")
	var decryptionError *clientErrors.DecryptionError
	_, _, err := c.VerifyPayload(context.Background(), &modeldto.Payload{Code: "code", Timestamp: "yesterday"})
	require.Error(t, err)
	assert.True(t, errors.As(err, &decryptionError))
}

func TestVerifyPayloadRejectedCodeIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request modeldto.ValidateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "bad-code", request.Code)
		respondJSON(t, w, modeldto.ValidateResponse{Validated: false})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	valid, userID, err := c.VerifyPayload(context.Background(), &modeldto.Payload{
		Code:      "bad-code",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, "", userID)
}

func TestGetUserDataStripsValidatedMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]interface{}{
			"validated": true,
			"user_id":   "u1",
			"email":     "brownie@example.com",
		})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	ok, data, err := c.GetUserData(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"user_id": "u1", "email": "brownie@example.com"}, data)
}

func TestGetUserDataRejectedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]interface{}{"validated": false})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	ok, data, err := c.GetUserData(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestCookieRoundTrip(t *testing.T) {
	rawCookie, err := json.Marshal(modeldto.Cookie{UserID: "u1", Hash: "issued-hash"})
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, modeldto.CookieGenerateResponse{Success: true, Cookie: string(rawCookie)})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)

	encrypted, err := c.GenerateCookie(context.Background(), "u1")
	require.NoError(t, err)
	require.NotEmpty(t, encrypted)
	// the server-issued cookie must never reach the caller in plaintext
	assert.NotContains(t, encrypted, "issued-hash")

	userID, hash, err := c.DecryptCookie(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "issued-hash", hash)
}

func TestGenerateCookieUnavailableIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, modeldto.CookieGenerateResponse{Success: false})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	encrypted, err := c.GenerateCookie(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "", encrypted)
}

func TestDecryptCookieRejectsMalformedInput(t *testing.T) {
	c := newTestClient(t, "http://localhost")
	sec, err := secretary.NewSecretaryService(&config.SecretConfig{SecretKey: testSecretKey})
	require.NoError(t, err)
	notJSON, err := sec.Encode("plain text")
	require.NoError(t, err)
	missingFields, err := sec.Encode(`{"user_id":"u1"}`)
	require.NoError(t, err)

	var decryptionError *clientErrors.DecryptionError
	for _, cookie := range []string{"", "garbage", notJSON, missingFields} {
		_, _, err := c.DecryptCookie(cookie)
		require.Error(t, err, "cookie %q must not decrypt", cookie)
		assert.True(t, errors.As(err, &decryptionError))
	}
}

func TestValidateCookie(t *testing.T) {
	for _, success := range []bool{true, false} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var request modeldto.CookieValidateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
			assert.Equal(t, "u1", request.UserID)
			assert.Equal(t, "h1", request.CookieHash)
			respondJSON(t, w, modeldto.CookieValidateResponse{Success: success})
		}))
		c := newTestClient(t, srv.URL)
		ok, err := c.ValidateCookie(context.Background(), "u1", "h1")
		require.NoError(t, err)
		assert.Equal(t, success, ok)
		srv.Close()
	}
}

func TestGetPfp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, modeldto.PfpResponse{Success: true, Pfp: "https://cdn.example.com/u1.png"})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	pfp, err := c.GetPfp(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/u1.png", pfp)
}

func TestGetPfpUnavailableIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, modeldto.PfpResponse{Success: false})
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	pfp, err := c.GetPfp(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "", pfp)
}

func TestNon200PropagatesAsCommunicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	ctx := context.Background()
	freshPayload := &modeldto.Payload{Code: "code", Timestamp: time.Now().Format(time.RFC3339)}

	tests := []struct {
		name string
		call func() error
	}{
		{name: "verify payload", call: func() error {
			_, _, err := c.VerifyPayload(ctx, freshPayload)
			return err
		}},
		{name: "get user data", call: func() error {
			_, _, err := c.GetUserData(ctx, "u1")
			return err
		}},
		{name: "generate cookie", call: func() error {
			_, err := c.GenerateCookie(ctx, "u1")
			return err
		}},
		{name: "validate cookie", call: func() error {
			_, err := c.ValidateCookie(ctx, "u1", "h1")
			return err
		}},
		{name: "remove cookie", call: func() error {
			return c.RemoveCookie(ctx, "u1")
		}},
		{name: "get pfp", call: func() error {
			_, err := c.GetPfp(ctx, "u1")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			var communicationError *clientErrors.CommunicationError
			require.True(t, errors.As(err, &communicationError))
			assert.Equal(t, http.StatusInternalServerError, communicationError.Status)
		})
	}
}

func TestTransportFailureIsCommunicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := newTestClient(t, srv.URL)
	err := c.RemoveCookie(context.Background(), "u1")
	require.Error(t, err)
	var communicationError *clientErrors.CommunicationError
	require.True(t, errors.As(err, &communicationError))
	assert.Equal(t, 0, communicationError.Status)
}
