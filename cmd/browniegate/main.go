// Command browniegate drives one full payload and cookie cycle against a
// running gate API server, for smoke-testing credentials and connectivity.
package main

import (
	"context"
	"fmt"
	"github.com/bwownie/go-browniegate/internal/api/rest/client"
	"github.com/bwownie/go-browniegate/internal/config"
	"github.com/bwownie/go-browniegate/internal/logger"
	"github.com/bwownie/go-browniegate/internal/models/modeldto"
	"github.com/bwownie/go-browniegate/internal/service/secretary/v1/secretary"
	"github.com/go-resty/resty/v2"
	"net/http"
	"strings"
)

func main() {
	log := logger.InitLog()

	// get configuration
	cfg, err := config.NewConfiguration()
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	cfg.ParseFlags()

	// initialize secretary and client
	secretaryService, err := secretary.NewSecretaryService(cfg.SecretConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	gateClient, err := client.InitClient(cfg.ClientConfig, secretaryService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	ctx := context.Background()
	baseURL := strings.TrimRight(cfg.ClientConfig.BaseURL, "/")
	devClient := resty.New().SetHeader("Content-Type", "application/json")

	// register a throwaway user through the dev endpoint
	var registered modeldto.RegisterResponse
	response, err := devClient.R().SetContext(ctx).SetBody(modeldto.RegisterRequest{
		Login: "smoke",
		Email: "smoke@example.com",
		Pfp:   "https://cdn.example.com/smoke.png",
	}).SetResult(&registered).Post(baseURL + "/api/dev/register")
	if err != nil {
		log.Fatal().Err(err).Msg("dev register failed")
	}
	if response.StatusCode() != http.StatusOK {
		log.Fatal().Msg(fmt.Sprintf("dev register failed with status %d", response.StatusCode()))
	}
	log.Info().Msg(fmt.Sprintf("registered smoke user %s", registered.UserID))

	// mint a payload for the user
	var issued modeldto.IssueResponse
	response, err = devClient.R().SetContext(ctx).SetBody(modeldto.UserRequest{
		UserID: registered.UserID,
	}).SetResult(&issued).Post(baseURL + "/api/dev/issue")
	if err != nil {
		log.Fatal().Err(err).Msg("dev issue failed")
	}
	if response.StatusCode() != http.StatusOK {
		log.Fatal().Msg(fmt.Sprintf("dev issue failed with status %d", response.StatusCode()))
	}

	// payload cycle
	decrypted, err := gateClient.DecryptPayload(issued.Payload)
	if err != nil {
		log.Fatal().Err(err).Msg("payload decryption failed")
	}
	valid, userID, err := gateClient.VerifyPayload(ctx, decrypted)
	if err != nil {
		log.Fatal().Err(err).Msg("payload verification failed")
	}
	if !valid {
		log.Fatal().Msg("payload was rejected")
	}
	log.Info().Msg(fmt.Sprintf("payload verified for user %s", userID))

	// user data
	ok, data, err := gateClient.GetUserData(ctx, userID)
	if err != nil {
		log.Fatal().Err(err).Msg("user data retrieval failed")
	}
	if !ok {
		log.Fatal().Msg("user data request was rejected")
	}
	log.Info().Msg(fmt.Sprintf("user data retrieved: %v", data))
	pfp, err := gateClient.GetPfp(ctx, userID)
	if err != nil {
		log.Fatal().Err(err).Msg("pfp retrieval failed")
	}
	log.Info().Msg(fmt.Sprintf("pfp retrieved: %s", pfp))

	// cookie cycle
	encryptedCookie, err := gateClient.GenerateCookie(ctx, userID)
	if err != nil {
		log.Fatal().Err(err).Msg("cookie generation failed")
	}
	if encryptedCookie == "" {
		log.Fatal().Msg("no cookie was available")
	}
	cookieUserID, cookieHash, err := gateClient.DecryptCookie(encryptedCookie)
	if err != nil {
		log.Fatal().Err(err).Msg("cookie decryption failed")
	}
	validCookie, err := gateClient.ValidateCookie(ctx, cookieUserID, cookieHash)
	if err != nil {
		log.Fatal().Err(err).Msg("cookie validation failed")
	}
	if !validCookie {
		log.Fatal().Msg("cookie was rejected")
	}
	if err := gateClient.RemoveCookie(ctx, cookieUserID); err != nil {
		log.Fatal().Err(err).Msg("cookie removal failed")
	}
	log.Info().Msg("cookie cycle succeeded, smoke test passed")
}
