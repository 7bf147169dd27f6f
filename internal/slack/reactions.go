package slack

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/triage/internal/store"
)

// ReactionEvent is the structure received from slack-forwarder via NATS.
type ReactionEvent struct {
	Reaction  string `json:"reaction"`
	UserID    string `json:"user_id"`
	Channel   string `json:"channel"`
	MessageTS string `json:"message_ts"`
}

// ParseReaction maps a staff reaction on an escalation post to the ticket
// status it requests. ok is false for reactions that mean nothing.
func ParseReaction(reaction string) (status string, ok bool) {
	switch reaction {
	case "eyes":
		return store.StatusInProgress, true
	case "white_check_mark", "heavy_check_mark":
		return store.StatusResolved, true
	case "x", "no_entry":
		return store.StatusClosed, true
	default:
		return "", false
	}
}

// ParseReactionEvent parses a NATS message payload from slack-forwarder into a ReactionEvent.
func ParseReactionEvent(data []byte, logger *slog.Logger) (*ReactionEvent, error) {
	// The slack-forwarder publishes events with metadata in a wrapper.
	var wrapper struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse reaction wrapper: %w", err)
	}

	evt := &ReactionEvent{
		Reaction:  wrapper.Metadata["text"],
		UserID:    wrapper.Metadata["user_id"],
		Channel:   wrapper.Metadata["channel_id"],
		MessageTS: wrapper.Metadata["message_ts"],
	}

	if len(evt.Reaction) > 2 && evt.Reaction[0] == ':' && evt.Reaction[len(evt.Reaction)-1] == ':' {
		evt.Reaction = evt.Reaction[1 : len(evt.Reaction)-1]
	}

	if evt.MessageTS == "" {
		logger.Debug("reaction without message_ts", "reaction", evt.Reaction, "user_id", evt.UserID)
	}
	return evt, nil
}
