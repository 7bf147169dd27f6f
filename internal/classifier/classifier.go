// Package classifier calls the text-classification service that suggests a
// ticket category for a complaint.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Labels is the id-to-label table of the deployed model.
var Labels = []string{
	"Certificates_Documents",
	"Courses_Training",
	"Facilities_Logistics",
	"Finance_Admin",
	"IT_Support",
}

type Prediction struct {
	Label string  `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Predict returns the most likely category for text.
func (c *Client) Predict(ctx context.Context, text string) (*Prediction, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier error %d: %s", resp.StatusCode, string(respBody))
	}

	var p Prediction
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	p.Label = NormalizeLabel(p.Label)

	c.logger.Debug("category predicted", "label", p.Label, "score", p.Score)
	return &p, nil
}

// NormalizeLabel maps generic "class_<n>" and "LABEL_<n>" names onto Labels.
// Anything else is returned unchanged.
func NormalizeLabel(label string) string {
	for _, prefix := range []string{"class_", "LABEL_"} {
		rest, ok := strings.CutPrefix(label, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 && n < len(Labels) {
			return Labels[n]
		}
	}
	return label
}
