package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/triage/internal/agent"
	"github.com/MikeSquared-Agency/triage/internal/classifier"
	"github.com/MikeSquared-Agency/triage/internal/hermes"
	"github.com/MikeSquared-Agency/triage/internal/remediation"
	"github.com/MikeSquared-Agency/triage/internal/routing"
	"github.com/MikeSquared-Agency/triage/internal/slack"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

type Analyzer interface {
	Analyze(ctx context.Context, complaint string) (*remediation.ModelResponse, error)
}

type Classifier interface {
	Predict(ctx context.Context, text string) (*classifier.Prediction, error)
}

type Store interface {
	SaveAnalysis(ctx context.Context, a store.NewAnalysis) (uuid.UUID, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*store.Analysis, error)
	UpdateComplaintStatus(ctx context.Context, id uuid.UUID, status string) (*store.Complaint, error)
}

type Publisher interface {
	Publish(subject string, data any) error
}

type Notifier interface {
	PostEscalation(ctx context.Context, e slack.Escalation) (string, error)
	PostThread(ctx context.Context, threadTS, text string) error
}

// Deps are the collaborators of a Processor. Only Analyzer is required; a nil
// field disables that stage.
type Deps struct {
	Analyzer   Analyzer
	Classifier Classifier
	Store      Store
	Bus        Publisher
	Notifier   Notifier
}

// Processor orchestrates the complaint triage pipeline.
type Processor struct {
	analyzer   Analyzer
	classifier Classifier
	store      Store
	bus        Publisher
	notifier   Notifier
	logger     *slog.Logger

	mu          sync.Mutex
	escalations map[string]uuid.UUID // Slack message TS -> complaint ID
}

func New(d Deps, logger *slog.Logger) *Processor {
	return &Processor{
		analyzer:    d.Analyzer,
		classifier:  d.Classifier,
		store:       d.Store,
		bus:         d.Bus,
		notifier:    d.Notifier,
		logger:      logger,
		escalations: make(map[string]uuid.UUID),
	}
}

// Result is one analyzed complaint.
type Result struct {
	UI         remediation.UIResult       `json:"ui"`
	Raw        *remediation.ModelResponse `json:"raw"`
	AnalysisID string                     `json:"analysis_id,omitempty"`
	Suggested  string                     `json:"suggested_category,omitempty"`
	Classifier *classifier.Prediction     `json:"classifier,omitempty"`
}

// Analyze runs the model, normalizes its answer and records it. A model
// failure is returned as an error; classifier and store failures are logged
// and leave the matching fields empty.
func (p *Processor) Analyze(ctx context.Context, text string) (*Result, error) {
	raw, err := p.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	ui := remediation.Normalize(raw)
	res := &Result{UI: ui, Raw: raw}

	var modelCategory string
	if c := raw.Category(); c != nil {
		modelCategory = *c
	}
	res.Suggested = routing.TicketCategoryFor(modelCategory, raw.IsTechnical())

	if p.classifier != nil {
		pred, err := p.classifier.Predict(ctx, text)
		if err != nil {
			p.logger.Warn("classifier failed", "error", err)
		} else {
			res.Classifier = pred
			if routing.IsTicketCategory(pred.Label) {
				res.Suggested = pred.Label
			}
		}
	}

	if p.store != nil {
		id, err := p.store.SaveAnalysis(ctx, store.NewAnalysis{
			ComplaintText: text,
			IsTechnical:   ui.IsTechnical,
			Category:      ui.Category,
			UI:            ui,
			Raw:           raw,
		})
		if err != nil {
			p.logger.Error("failed to save analysis", "error", err)
		} else {
			res.AnalysisID = id.String()
		}
	}

	p.logger.Info("complaint analyzed",
		"analysis_id", res.AnalysisID,
		"is_technical", ui.IsTechnical,
		"steps", len(ui.Steps),
		"suggested_category", res.Suggested,
	)
	return res, nil
}

// HandleComplaintSubmitted is the NATS handler for triage.complaint.submitted.
func (p *Processor) HandleComplaintSubmitted(subject string, data []byte) {
	ctx := context.Background()

	var evt hermes.ComplaintSubmitted
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse complaint event", "error", err)
		return
	}

	p.logger.Info("processing complaint",
		"complaint_id", evt.ComplaintID,
		"complaint_len", len(evt.Text),
	)

	out := hermes.ComplaintAnalyzed{ComplaintID: evt.ComplaintID}
	res, err := p.Analyze(ctx, evt.Text)
	if err != nil {
		p.logger.Error("analysis failed", "complaint_id", evt.ComplaintID, "error", err)
		out.UI = remediation.Normalize(remediation.Failed(agent.Describe(err)))
	} else {
		out.AnalysisID = res.AnalysisID
		out.UI = res.UI
		out.Suggested = res.Suggested
		out.Classifier = res.Classifier
	}

	p.publish(hermes.SubjectComplaintAnalyzed, out)
}

// TicketFiled announces a new ticket and escalates it to staff on request.
func (p *Processor) TicketFiled(ctx context.Context, c *store.Complaint, escalate bool) {
	p.publish(hermes.SubjectTicketCreated, ticketEvent(c, ""))
	if escalate {
		if err := p.Escalate(ctx, c); err != nil {
			p.logger.Error("escalation failed", "complaint_id", c.ID, "error", err)
		}
	}
}

// Escalate posts the ticket and its AI prefill to the escalations channel and
// tracks the post so staff reactions can move the ticket.
func (p *Processor) Escalate(ctx context.Context, c *store.Complaint) error {
	var ts string
	if p.notifier != nil {
		var err error
		ts, err = p.notifier.PostEscalation(ctx, slack.Escalation{
			ComplaintID: c.ID.String(),
			Title:       c.Title,
			Category:    c.Category,
			Department:  c.Department,
			Priority:    c.Priority,
			Prefill:     p.prefillFor(ctx, c),
		})
		if err != nil {
			return fmt.Errorf("post escalation: %w", err)
		}

		p.mu.Lock()
		p.escalations[ts] = c.ID
		p.mu.Unlock()
	}

	p.publish(hermes.SubjectTicketEscalated, ticketEvent(c, ts))
	return nil
}

// HandleReaction processes staff reactions on escalation posts from
// slack-forwarder via NATS.
func (p *Processor) HandleReaction(subject string, data []byte) {
	ctx := context.Background()

	evt, err := slack.ParseReactionEvent(data, p.logger)
	if err != nil {
		p.logger.Error("failed to parse reaction", "error", err)
		return
	}

	status, ok := slack.ParseReaction(evt.Reaction)
	if !ok {
		return
	}

	p.mu.Lock()
	id, tracked := p.escalations[evt.MessageTS]
	p.mu.Unlock()
	if !tracked || p.store == nil {
		return
	}

	c, err := p.store.UpdateComplaintStatus(ctx, id, status)
	if err != nil {
		p.logger.Error("failed to update ticket status", "complaint_id", id, "status", status, "error", err)
		return
	}

	p.logger.Info("ticket status changed from slack",
		"complaint_id", id,
		"status", status,
		"user_id", evt.UserID,
	)

	ev := ticketEvent(c, evt.MessageTS)
	ev.ChangedBy = evt.UserID
	p.publish(hermes.SubjectTicketStatus, ev)

	if p.notifier != nil {
		msg := fmt.Sprintf("Status changed to *%s* by <@%s>", status, evt.UserID)
		if err := p.notifier.PostThread(ctx, evt.MessageTS, msg); err != nil {
			p.logger.Error("failed to post status thread", "error", err)
		}
	}
}

// StatusChanged announces a status change made outside Slack.
func (p *Processor) StatusChanged(c *store.Complaint) {
	p.publish(hermes.SubjectTicketStatus, ticketEvent(c, ""))
}

func (p *Processor) prefillFor(ctx context.Context, c *store.Complaint) string {
	if c.AIAnalysisID == nil || p.store == nil {
		return ""
	}
	a, err := p.store.GetAnalysis(ctx, *c.AIAnalysisID)
	if err != nil {
		p.logger.Warn("analysis for escalation not found", "analysis_id", c.AIAnalysisID.String(), "error", err)
		return ""
	}
	var ui struct {
		TicketPrefill string `json:"ticket_prefill"`
	}
	if err := json.Unmarshal(a.UI, &ui); err != nil {
		return ""
	}
	return ui.TicketPrefill
}

func (p *Processor) publish(subject string, data any) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish", "subject", subject, "error", err)
	}
}

func ticketEvent(c *store.Complaint, ts string) hermes.TicketEvent {
	return hermes.TicketEvent{
		ComplaintID: c.ID.String(),
		Category:    c.Category,
		Department:  c.Department,
		Priority:    c.Priority,
		Status:      c.Status,
		SlackTS:     ts,
	}
}
