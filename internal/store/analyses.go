package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Analysis is a stored model answer together with its normalized UI shape.
type Analysis struct {
	ID            uuid.UUID       `json:"id"`
	ComplaintText string          `json:"complaint_text"`
	IsTechnical   bool            `json:"is_technical"`
	Category      *string         `json:"category"`
	UI            json.RawMessage `json:"ui"`
	Raw           json.RawMessage `json:"raw"`
	CreatedAt     time.Time       `json:"created_at"`
}

type NewAnalysis struct {
	ComplaintText string
	IsTechnical   bool
	Category      *string
	UI            any
	Raw           any
}

// SaveAnalysis stores one analysis and returns its ID.
func (s *Store) SaveAnalysis(ctx context.Context, a NewAnalysis) (uuid.UUID, error) {
	ui, err := json.Marshal(a.UI)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal ui: %w", err)
	}
	raw, err := json.Marshal(a.Raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal raw: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO complaint_analyses (id, complaint_text, is_technical, category, ui, raw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		id, a.ComplaintText, a.IsTechnical, a.Category, ui, raw,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis fetches a stored analysis by ID.
func (s *Store) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, complaint_text, is_technical, category, ui, raw, created_at
		FROM complaint_analyses WHERE id = $1`, id)

	var a Analysis
	err := row.Scan(&a.ID, &a.ComplaintText, &a.IsTechnical, &a.Category, &a.UI, &a.Raw, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}
