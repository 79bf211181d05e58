package demoprovider

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"lesson-server/services/chat-api/internal/domain/provider"
	"lesson-server/services/chat-api/internal/utils/idgen"
	"lesson-server/services/chat-api/internal/utils/platformerrors"
)

var cannedResponses = []string{
	"That's a great question. Slow the passage down to half tempo, play it perfectly three times in a row, then raise the tempo in small steps.",
	"Focus on your breathing first. A steady, supported airstream fixes more tone problems than any embouchure adjustment.",
	"Try recording yourself and listening back. You'll often hear rushing or uneven articulation that you can't feel while playing.",
	"Break it into two-bar chunks and loop each one until it feels automatic. Then join the chunks together.",
	"Consistency beats duration. Twenty focused minutes every day will take you further than two hours once a week.",
}

// Exchanger is the demo-mode AI provider. It answers with canned responses
// after a fixed delay, so the client-facing flow matches the live path.
type Exchanger struct {
	delay time.Duration
	log   zerolog.Logger
}

var _ provider.Exchanger = (*Exchanger)(nil)

// NewExchanger builds a demo exchanger with the given response delay.
func NewExchanger(delay time.Duration, log zerolog.Logger) *Exchanger {
	return &Exchanger{
		delay: delay,
		log:   log.With().Str("component", "demo-provider").Logger(),
	}
}

// Exchange returns a canned answer after the configured delay, honoring
// context cancellation.
func (e *Exchanger) Exchange(ctx context.Context, req provider.ExchangeRequest) (*provider.ExchangeResult, error) {
	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeExternal, "demo exchange cancelled", ctx.Err(),
				"48e2d7c0-1a96-4f53-b8d4-09c6e3a5f217")
		case <-timer.C:
		}
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		id, err := idgen.GenerateSecureID("democonv", 12)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeInternal, "failed to generate demo conversation id", err,
				"c5f01b84-62d9-4e37-a0b5-8d24f7e19c60")
		}
		conversationID = id
	}

	answer := cannedResponses[rand.Intn(len(cannedResponses))]
	if mt := provider.ParseModelType(req.ModelType); mt.Instrument != "" {
		answer = fmt.Sprintf("For the %s: %s", mt.Instrument, answer)
	}

	e.log.Debug().Str("conversation_id", conversationID).Msg("served demo response")
	return &provider.ExchangeResult{
		Answer:         answer,
		ConversationID: conversationID,
		Metadata:       map[string]any{"demo": true},
	}, nil
}
