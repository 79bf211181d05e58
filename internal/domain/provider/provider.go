package provider

import (
	"context"
	"strings"
)

// ExchangeRequest is one blocking question/answer round trip with the
// upstream chat provider.
type ExchangeRequest struct {
	OwnerID        string
	Query          string
	ModelType      string
	ConversationID string
	Inputs         map[string]any
}

// ExchangeResult carries the provider answer. ConversationID echoes the
// provider-side conversation, assigned on the first exchange.
type ExchangeResult struct {
	Answer         string
	ConversationID string
	Metadata       map[string]any
}

// Exchanger performs blocking exchanges with an AI chat provider.
type Exchanger interface {
	Exchange(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error)
}

// ModelType is the parsed form of a "{category}-{instrument}-{modelID}" string.
type ModelType struct {
	Raw        string
	Category   string
	Instrument string
	ModelID    string
}

// ParseModelType splits a raw model type string. Malformed values degrade to
// the standard credential set rather than failing.
func ParseModelType(raw string) ModelType {
	mt := ModelType{Raw: strings.TrimSpace(raw)}
	parts := strings.Split(mt.Raw, "-")
	if len(parts) >= 1 {
		mt.Category = parts[0]
	}
	if len(parts) >= 2 {
		mt.Instrument = parts[1]
	}
	if len(parts) >= 3 {
		mt.ModelID = parts[2]
	}
	return mt
}

// IsStandard reports whether the model type resolves to the standard
// credential set. Anything with fewer than three segments does.
func (m ModelType) IsStandard() bool {
	return m.Category == "" || m.Instrument == "" || m.ModelID == "" || m.ModelID == "standard"
}

// CredentialSet returns the name of the credential set this model type
// resolves to.
func (m ModelType) CredentialSet() string {
	if m.IsStandard() {
		return "standard"
	}
	return m.Raw
}
