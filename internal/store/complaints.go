package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/triage/internal/routing"
)

// Ticket statuses.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

// Ticket priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// ValidStatus reports whether s is a known ticket status.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// NormalizePriority maps free-form input onto a known priority, defaulting to
// Medium.
func NormalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

type Complaint struct {
	ID           uuid.UUID  `json:"id"`
	StudentID    string     `json:"student_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	Department   string     `json:"department"`
	AIAnalysisID *uuid.UUID `json:"ai_analysis_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type NewComplaint struct {
	StudentID    string
	Title        string
	Description  string
	Category     string
	Priority     string
	AIAnalysisID *uuid.UUID
}

// ComplaintFilter narrows ListComplaints. Empty fields match everything.
type ComplaintFilter struct {
	Category  string
	Status    string
	StudentID string
	Limit     int
}

const complaintColumns = `id, student_id, title, description, category, priority, status, department, ai_analysis_id, created_at, updated_at`

func scanComplaint(row pgx.Row) (*Complaint, error) {
	var c Complaint
	err := row.Scan(&c.ID, &c.StudentID, &c.Title, &c.Description, &c.Category, &c.Priority,
		&c.Status, &c.Department, &c.AIAnalysisID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComplaint files a new ticket with status Open, routed to the
// department that owns its category.
func (s *Store) CreateComplaint(ctx context.Context, in NewComplaint) (*Complaint, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO complaints (id, student_id, title, description, category, priority, status, department, ai_analysis_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+complaintColumns,
		uuid.New(), in.StudentID, in.Title, in.Description, in.Category,
		NormalizePriority(in.Priority), StatusOpen, routing.DepartmentFor(in.Category), in.AIAnalysisID,
	)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}
	return c, nil
}

// GetComplaint fetches a ticket by ID.
func (s *Store) GetComplaint(ctx context.Context, id uuid.UUID) (*Complaint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// ListComplaints returns tickets newest first.
func (s *Store) ListComplaints(ctx context.Context, f ComplaintFilter) ([]Complaint, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("category", f.Category)
	add("status", f.Status)
	add("student_id", f.StudentID)

	q := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()

	out := []Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateComplaintStatus moves a ticket to status and returns the updated row.
func (s *Store) UpdateComplaintStatus(ctx context.Context, id uuid.UUID, status string) (*Complaint, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE complaints SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+complaintColumns,
		status, id,
	)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}
