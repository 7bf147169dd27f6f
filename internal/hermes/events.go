package hermes

import (
	"github.com/MikeSquared-Agency/triage/internal/classifier"
	"github.com/MikeSquared-Agency/triage/internal/remediation"
)

// QueueGroup is shared by all triage replicas.
const QueueGroup = "triage"

const (
	// SubjectComplaintSubmitted carries complaints to analyze asynchronously.
	SubjectComplaintSubmitted = "triage.complaint.submitted"
	SubjectComplaintAnalyzed  = "triage.complaint.analyzed"
	SubjectTicketCreated      = "triage.ticket.created"
	SubjectTicketEscalated    = "triage.ticket.escalated"
	SubjectTicketStatus       = "triage.ticket.status"
	// SubjectSlackReaction is published by the Slack bridge.
	SubjectSlackReaction = "swarm.slack.reaction"
)

type ComplaintSubmitted struct {
	ComplaintID string `json:"complaint_id"`
	StudentID   string `json:"student_id,omitempty"`
	Text        string `json:"text"`
}

type ComplaintAnalyzed struct {
	ComplaintID string                 `json:"complaint_id"`
	AnalysisID  string                 `json:"analysis_id,omitempty"`
	UI          remediation.UIResult   `json:"ui"`
	Suggested   string                 `json:"suggested_category,omitempty"`
	Classifier  *classifier.Prediction `json:"classifier,omitempty"`
}

type TicketEvent struct {
	ComplaintID string `json:"complaint_id"`
	Category    string `json:"category"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	SlackTS     string `json:"slack_ts,omitempty"`
	ChangedBy   string `json:"changed_by,omitempty"`
}
