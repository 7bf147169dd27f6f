package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// Escalation is a ticket handed to staff.
type Escalation struct {
	ComplaintID string
	Title       string
	Category    string
	Department  string
	Priority    string
	Prefill     string
}

// PostEscalation posts a ticket to the escalations channel. Returns the
// message timestamp (ts) which is used for tracking reactions.
func (p *Poster) PostEscalation(ctx context.Context, e Escalation) (string, error) {
	text := formatEscalation(e)

	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "React: :eyes: in progress | :white_check_mark: resolved | :x: closed",
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	p.logger.Info("posted escalation to slack", "ts", ts, "complaint_id", e.ComplaintID, "department", e.Department)
	return ts, nil
}

// PostThread posts a threaded reply to a message.
func (p *Poster) PostThread(ctx context.Context, threadTS, text string) error {
	_, err := p.post(ctx, map[string]any{
		"channel":   p.channel,
		"thread_ts": threadTS,
		"text":      text,
	})
	return err
}

func (p *Poster) post(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatEscalation(e Escalation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Ticket:* %s\n", e.Title)
	fmt.Fprintf(&sb, "*Category:* %s | *Department:* %s | *Priority:* %s\n", e.Category, e.Department, e.Priority)
	fmt.Fprintf(&sb, "*ID:* `%s`\n\n", e.ComplaintID)

	if prefill := strings.TrimSpace(e.Prefill); prefill != "" {
		sb.WriteString("```\n")
		sb.WriteString(prefill)
		sb.WriteString("\n```")
	} else {
		sb.WriteString("_No AI analysis attached to this ticket._")
	}

	return sb.String()
}
