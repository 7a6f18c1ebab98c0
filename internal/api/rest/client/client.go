// Package client implements a client for the remote gate API which exchanges
// encrypted payloads and session cookies.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	clientErrors "github.com/bwownie/go-browniegate/internal/api/rest/client/errors"
	"github.com/bwownie/go-browniegate/internal/config"
	"github.com/bwownie/go-browniegate/internal/models/modeldto"
	"github.com/bwownie/go-browniegate/internal/service/secretary/v1"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// payloadValidityWindow bounds the clock skew tolerated between the payload
// issuer and this verifier; payloads older or newer than this are rejected
// without contacting the remote API.
const payloadValidityWindow = time.Minute

// timestampLayouts lists the accepted payload timestamp formats: RFC3339 and
// zoneless ISO-8601, the latter read in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Client defines attributes of a struct available to its methods.
type Client struct {
	client       *resty.Client
	clientConfig *config.ClientConfig
	secretary    secretary.Secretary
	log          *zerolog.Logger
}

// InitClient initializes a resty client for the gate API with a fixed header
// set and a normalized base URL.
func InitClient(clientConfig *config.ClientConfig, sec secretary.Secretary, log *zerolog.Logger) (*Client, error) {
	if clientConfig == nil {
		return nil, &clientErrors.ClientFoundNilArgument{Msg: "nil client config was passed to client initializer"}
	}
	if sec == nil {
		return nil, &clientErrors.ClientFoundNilArgument{Msg: "nil secretary was passed to client initializer"}
	}
	gateClient := resty.New()
	gateClient.SetHeaders(map[string]string{
		"authorization": clientConfig.APIKey,
		"project-uuid":  clientConfig.ProjectUUID,
		"Content-Type":  "application/json",
	})
	gateClient.SetDebug(clientConfig.Debug)
	normalizedConfig := *clientConfig
	normalizedConfig.BaseURL = strings.TrimRight(clientConfig.BaseURL, "/")
	log.Info().Msg("gate API client initialized")
	return &Client{client: gateClient, clientConfig: &normalizedConfig, secretary: sec, log: log}, nil
}

// post performs one JSON POST round trip to a gate API endpoint. A transport
// failure or a non-200 status is a CommunicationError.
func (c *Client) post(ctx context.Context, endpoint string, body interface{}) (*resty.Response, error) {
	if c.clientConfig.Debug {
		c.log.Debug().Msg(fmt.Sprintf("sending request to %s", endpoint))
	}
	response, err := c.client.R().SetContext(ctx).SetBody(body).Post(c.clientConfig.BaseURL + endpoint)
	if err != nil {
		c.log.Err(err).Msg(fmt.Sprintf("request to %s failed", endpoint))
		return nil, &clientErrors.CommunicationError{Err: err}
	}
	if response.StatusCode() != http.StatusOK {
		return nil, &clientErrors.CommunicationError{
			Err:    fmt.Errorf("unexpected status from %s", endpoint),
			Status: response.StatusCode(),
		}
	}
	return response, nil
}

// EncryptPayload ciphers a payload and URL-escapes the result for transport.
func (c *Client) EncryptPayload(payload *modeldto.Payload) (string, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	encoded, err := c.secretary.Encode(string(plaintext))
	if err != nil {
		return "", err
	}
	return url.QueryEscape(encoded), nil
}

// DecryptPayload decodes the URL-escaping of an encrypted payload, deciphers
// it and parses the plaintext as JSON.
func (c *Client) DecryptPayload(payload string) (*modeldto.Payload, error) {
	unescaped, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, &clientErrors.DecryptionError{Err: err}
	}
	plaintext, err := c.secretary.Decode(unescaped)
	if err != nil {
		return nil, &clientErrors.DecryptionError{Err: err}
	}
	var decrypted modeldto.Payload
	err = json.Unmarshal([]byte(plaintext), &decrypted)
	if err != nil {
		return nil, &clientErrors.DecryptionError{Err: err}
	}
	return &decrypted, nil
}

// VerifyPayload checks payload freshness against the local clock and, only if
// fresh, validates the embedded code with the remote API. A stale or
// not-yet-valid payload yields (false, "") without any remote call; an
// unvalidated code yields (false, "") as a value, not an error.
func (c *Client) VerifyPayload(ctx context.Context, payload *modeldto.Payload) (bool, string, error) {
	issuedAt, err := parseTimestamp(payload.Timestamp)
	if err != nil {
		return false, "", &clientErrors.DecryptionError{Err: err}
	}
	now := time.Now()
	if issuedAt.After(now.Add(payloadValidityWindow)) || issuedAt.Before(now.Add(-payloadValidityWindow)) {
		return false, "", nil
	}
	response, err := c.post(ctx, "/api/user/validate", modeldto.ValidateRequest{Code: payload.Code})
	if err != nil {
		return false, "", err
	}
	var result modeldto.ValidateResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return false, "", &clientErrors.CommunicationError{Err: err}
	}
	if !result.Validated {
		return false, "", nil
	}
	return true, result.UserID, nil
}

// GetUserData retrieves the user field mapping for a user identifier. The
// validated marker is stripped from the returned mapping.
func (c *Client) GetUserData(ctx context.Context, userID string) (bool, map[string]interface{}, error) {
	response, err := c.post(ctx, "/api/user/get_data", modeldto.UserRequest{UserID: userID})
	if err != nil {
		return false, nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(response.Body(), &data); err != nil {
		return false, nil, &clientErrors.CommunicationError{Err: err}
	}
	validated, _ := data["validated"].(bool)
	if !validated {
		return false, nil, nil
	}
	delete(data, "validated")
	return true, data, nil
}

// GenerateCookie requests a session cookie for a user and reciphers it with
// the client's own key; the server-issued cookie never leaves this method in
// plaintext. An empty return with a nil error means no cookie was available.
func (c *Client) GenerateCookie(ctx context.Context, userID string) (string, error) {
	response, err := c.post(ctx, "/api/cookie/generate", modeldto.UserRequest{UserID: userID})
	if err != nil {
		return "", err
	}
	var result modeldto.CookieGenerateResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", &clientErrors.CommunicationError{Err: err}
	}
	if !result.Success {
		return "", nil
	}
	return c.secretary.Encode(result.Cookie)
}

// DecryptCookie deciphers a cookie previously returned by GenerateCookie and
// extracts the user identifier and cookie hash from it.
func (c *Client) DecryptCookie(cookie string) (string, string, error) {
	plaintext, err := c.secretary.Decode(cookie)
	if err != nil {
		return "", "", &clientErrors.DecryptionError{Err: err}
	}
	var decrypted modeldto.Cookie
	if err := json.Unmarshal([]byte(plaintext), &decrypted); err != nil {
		return "", "", &clientErrors.DecryptionError{Err: err}
	}
	if decrypted.UserID == "" || decrypted.Hash == "" {
		return "", "", &clientErrors.DecryptionError{Err: fmt.Errorf("cookie is missing user_id or hash")}
	}
	return decrypted.UserID, decrypted.Hash, nil
}

// ValidateCookie checks a cookie hash for a user with the remote API.
func (c *Client) ValidateCookie(ctx context.Context, userID string, cookieHash string) (bool, error) {
	response, err := c.post(ctx, "/api/cookie/validate", modeldto.CookieValidateRequest{UserID: userID, CookieHash: cookieHash})
	if err != nil {
		return false, err
	}
	var result modeldto.CookieValidateResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return false, &clientErrors.CommunicationError{Err: err}
	}
	return result.Success, nil
}

// RemoveCookie revokes the session cookie of a user; a 200 status is silent
// success.
func (c *Client) RemoveCookie(ctx context.Context, userID string) error {
	_, err := c.post(ctx, "/api/cookie/remove", modeldto.UserRequest{UserID: userID})
	return err
}

// GetPfp retrieves the profile picture URL of a user; an empty return with a
// nil error means the user has none.
func (c *Client) GetPfp(ctx context.Context, userID string) (string, error) {
	response, err := c.post(ctx, "/api/user/get_pfp", modeldto.UserRequest{UserID: userID})
	if err != nil {
		return "", err
	}
	var result modeldto.PfpResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", &clientErrors.CommunicationError{Err: err}
	}
	if !result.Success {
		return "", nil
	}
	return result.Pfp, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if issuedAt, err := time.Parse(layout, value); err == nil {
				return issuedAt, nil
			}
			continue
		}
		if issuedAt, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return issuedAt, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse timestamp %q", value)
}
