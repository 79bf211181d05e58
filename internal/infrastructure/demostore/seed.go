package demostore

import (
	"context"
	"encoding/json"
	"time"

	"lesson-server/services/chat-api/internal/domain/chatroom"
)

func decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

// seedRoom describes one sample conversation created on first open.
type seedRoom struct {
	title     string
	topic     string
	modelType string
	exchange  [2]string // user question, assistant answer
}

var seedRooms = []seedRoom{
	{
		title:     "Saxophone tone basics",
		topic:     "tone",
		modelType: "artist-saxophone-standard",
		exchange: [2]string{
			"My tone gets thin in the upper register. What should I work on?",
			"Thin upper-register tone usually comes from a tight throat and too little air support. Try long tones from G2 upward with a relaxed embouchure, and overtone exercises on low Bb to open the throat.",
		},
	},
	{
		title:     "Trumpet practice planning",
		topic:     "routine",
		modelType: "artist-trumpet-standard",
		exchange: [2]string{
			"How should I split a 45 minute practice session?",
			"A solid split is 10 minutes of lip slurs and long tones, 15 minutes of technical studies, 15 minutes of repertoire, and 5 minutes of easy cool-down playing. Keep the warm-up light the day after heavy playing.",
		},
	},
}

// Seed creates the sample rooms for the demo owner when the store is empty.
func (g *Gateway) Seed(ctx context.Context, ownerID string) error {
	existing, err := g.loadAll(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	base := time.Now().UTC().Add(-24 * time.Hour)
	for i, s := range seedRooms {
		userMsg, err := chatroom.NewMessage(ctx, chatroom.SenderUser, s.exchange[0])
		if err != nil {
			return err
		}
		room, err := chatroom.NewChatRoom(ctx, ownerID, s.title, s.topic, s.modelType, userMsg)
		if err != nil {
			return err
		}
		reply, err := chatroom.NewMessage(ctx, chatroom.SenderAI, s.exchange[1])
		if err != nil {
			return err
		}
		room.Messages = append(room.Messages, reply)
		// Stagger timestamps so the list order is stable.
		room.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		room.UpdatedAt = room.CreatedAt
		if err := g.save(ctx, newRoomRecord(room)); err != nil {
			return err
		}
	}
	g.log.Info().Int("rooms", len(seedRooms)).Str("owner_id", ownerID).Msg("seeded demo rooms")
	return nil
}
