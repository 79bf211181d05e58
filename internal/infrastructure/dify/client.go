package dify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"lesson-server/services/chat-api/internal/config"
	"lesson-server/services/chat-api/internal/domain/provider"
	"lesson-server/services/chat-api/internal/utils/httpclients"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

// Client talks to a Dify-style chat completion API in blocking mode.
type Client struct {
	client  *resty.Client
	creds   *config.ModelCredentialConfig
	baseURL string
	log     zerolog.Logger
}

var _ provider.Exchanger = (*Client)(nil)

// NewClient builds the upstream client. Credential sets are resolved per
// exchange from the model type.
func NewClient(cfg *config.Config, creds *config.ModelCredentialConfig, log zerolog.Logger) *Client {
	client := httpclients.NewClient("dify")
	client.SetTimeout(cfg.ProviderTimeout)
	return &Client{
		client:  client,
		creds:   creds,
		baseURL: strings.TrimRight(cfg.ProviderBaseURL, "/"),
		log:     log.With().Str("component", "dify-client").Logger(),
	}
}

type chatMessageRequest struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	User           string         `json:"user"`
	ConversationID string         `json:"conversation_id,omitempty"`
	ResponseMode   string         `json:"response_mode"`
}

type chatMessageResponse struct {
	Answer         string         `json:"answer"`
	ConversationID string         `json:"conversation_id"`
	Metadata       map[string]any `json:"metadata"`
}

// Exchange sends one blocking chat round trip.
func (c *Client) Exchange(ctx context.Context, req provider.ExchangeRequest) (*provider.ExchangeResult, error) {
	mt := provider.ParseModelType(req.ModelType)
	cred := c.resolveCredential(mt)

	inputs := make(map[string]any, len(req.Inputs)+1)
	for k, v := range req.Inputs {
		inputs[k] = v
	}
	if mt.Instrument != "" {
		inputs["instrument"] = mt.Instrument
	}

	baseURL := c.baseURL
	if cred.BaseURL != "" {
		baseURL = strings.TrimRight(cred.BaseURL, "/")
	}

	var out chatMessageResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(cred.APIKey).
		SetBody(chatMessageRequest{
			Inputs:         inputs,
			Query:          req.Query,
			User:           req.OwnerID,
			ConversationID: req.ConversationID,
			ResponseMode:   "blocking",
		}).
		SetResult(&out).
		Post(baseURL + "/chat-messages")
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "provider request failed", err,
			"f41d8a26-7b93-4c05-9e6a-d2c1b5f08e37")
	}
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal,
			fmt.Sprintf("provider returned status %d", resp.StatusCode()), nil,
			"a93c6e10-5d84-4f27-b0c9-38e7a1d6f502")
	}
	if out.Answer == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "provider returned an empty answer", nil,
			"62b0d9f4-8e31-4a7c-95d6-c40f7e28a1b9")
	}

	return &provider.ExchangeResult{
		Answer:         out.Answer,
		ConversationID: out.ConversationID,
		Metadata:       out.Metadata,
	}, nil
}

// resolveCredential picks the credential set for the model type, falling back
// to the standard set when a dedicated one is not configured. The fallback is
// silent for callers but logged.
func (c *Client) resolveCredential(mt provider.ModelType) config.ModelCredential {
	if !mt.IsStandard() {
		if cred, ok := c.creds.Resolve(mt.CredentialSet()); ok {
			return cred
		}
		c.log.Warn().
			Str("model_type", mt.Raw).
			Str("credential_set", mt.CredentialSet()).
			Msg("credential set not configured, falling back to standard")
	}
	cred, _ := c.creds.Standard()
	return cred
}
