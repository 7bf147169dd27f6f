package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/triage/internal/classifier"
	"github.com/MikeSquared-Agency/triage/internal/hermes"
	"github.com/MikeSquared-Agency/triage/internal/llm"
	"github.com/MikeSquared-Agency/triage/internal/remediation"
	"github.com/MikeSquared-Agency/triage/internal/slack"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

type fakeAnalyzer struct {
	resp *remediation.ModelResponse
	err  error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, complaint string) (*remediation.ModelResponse, error) {
	return f.resp, f.err
}

type fakeClassifier struct {
	pred *classifier.Prediction
	err  error
}

func (f *fakeClassifier) Predict(ctx context.Context, text string) (*classifier.Prediction, error) {
	return f.pred, f.err
}

type fakeStore struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*store.Analysis
	statuses map[uuid.UUID]string
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{analyses: map[uuid.UUID]*store.Analysis{}, statuses: map[uuid.UUID]string{}}
}

func (f *fakeStore) SaveAnalysis(ctx context.Context, a store.NewAnalysis) (uuid.UUID, error) {
	if f.saveErr != nil {
		return uuid.Nil, f.saveErr
	}
	ui, _ := json.Marshal(a.UI)
	raw, _ := json.Marshal(a.Raw)
	id := uuid.New()
	f.mu.Lock()
	f.analyses[id] = &store.Analysis{ID: id, ComplaintText: a.ComplaintText, IsTechnical: a.IsTechnical, Category: a.Category, UI: ui, Raw: raw}
	f.mu.Unlock()
	return id, nil
}

func (f *fakeStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*store.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.analyses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) UpdateComplaintStatus(ctx context.Context, id uuid.UUID, status string) (*store.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return &store.Complaint{ID: id, Category: "IT_Support", Department: "it", Priority: "Medium", Status: status}, nil
}

type published struct {
	subject string
	data    any
}

type fakeBus struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeBus) Publish(subject string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{subject, data})
	return nil
}

func (f *fakeBus) last(subject string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].subject == subject {
			return f.msgs[i].data, true
		}
	}
	return nil, false
}

type fakeNotifier struct {
	posted  []slack.Escalation
	threads []string
}

func (f *fakeNotifier) PostEscalation(ctx context.Context, e slack.Escalation) (string, error) {
	f.posted = append(f.posted, e)
	return "1700000000.000100", nil
}

func (f *fakeNotifier) PostThread(ctx context.Context, threadTS, text string) error {
	f.threads = append(f.threads, text)
	return nil
}

func technicalResponse() *remediation.ModelResponse {
	return &remediation.ModelResponse{
		Routing:  &remediation.Routing{IsTechnical: boolPtr(true), Category: strPtr("dev_env_tooling")},
		Summary:  "requests is missing",
		Steps:    []remediation.Step{{Text: "Install the missing package."}},
		Solution: &remediation.Solution{Code: strPtr("pip install requests")},
	}
}

func TestAnalyze_NormalizesAndStores(t *testing.T) {
	st := newFakeStore()
	p := New(Deps{
		Analyzer:   &fakeAnalyzer{resp: technicalResponse()},
		Classifier: &fakeClassifier{pred: &classifier.Prediction{Label: "IT_Support", Score: 0.9}},
		Store:      st,
	}, discardLogger())

	res, err := p.Analyze(context.Background(), "No module named requests")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.UI.Steps[0] != "Install the missing package by running `pip install requests`." {
		t.Errorf("unexpected step %q", res.UI.Steps[0])
	}
	if res.Suggested != "IT_Support" {
		t.Errorf("expected suggested IT_Support, got %q", res.Suggested)
	}
	if res.Classifier == nil || res.Classifier.Score != 0.9 {
		t.Errorf("expected classifier prediction, got %+v", res.Classifier)
	}
	id, err := uuid.Parse(res.AnalysisID)
	if err != nil {
		t.Fatalf("expected analysis id, got %q", res.AnalysisID)
	}
	if a := st.analyses[id]; a == nil || a.ComplaintText != "No module named requests" {
		t.Errorf("expected stored analysis, got %+v", a)
	}
}

func TestAnalyze_ClassifierFailureFallsBackToRouting(t *testing.T) {
	resp := &remediation.ModelResponse{
		Routing: &remediation.Routing{IsTechnical: boolPtr(false), Category: strPtr("logistics")},
	}
	p := New(Deps{
		Analyzer:   &fakeAnalyzer{resp: resp},
		Classifier: &fakeClassifier{err: errors.New("down")},
	}, discardLogger())

	res, err := p.Analyze(context.Background(), "the AC in room 12 is broken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Suggested != "Facilities_Logistics" {
		t.Errorf("expected Facilities_Logistics, got %q", res.Suggested)
	}
	if res.Classifier != nil || res.AnalysisID != "" {
		t.Errorf("expected no classifier or analysis id, got %+v", res)
	}
}

func TestAnalyze_ModelError(t *testing.T) {
	p := New(Deps{Analyzer: &fakeAnalyzer{err: errors.New("boom")}}, discardLogger())

	if _, err := p.Analyze(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleComplaintSubmitted_PublishesResult(t *testing.T) {
	bus := &fakeBus{}
	p := New(Deps{Analyzer: &fakeAnalyzer{resp: technicalResponse()}, Bus: bus}, discardLogger())

	data, _ := json.Marshal(hermes.ComplaintSubmitted{ComplaintID: "c-1", Text: "pip broken"})
	p.HandleComplaintSubmitted(hermes.SubjectComplaintSubmitted, data)

	msg, ok := bus.last(hermes.SubjectComplaintAnalyzed)
	if !ok {
		t.Fatal("expected analyzed event")
	}
	ev := msg.(hermes.ComplaintAnalyzed)
	if ev.ComplaintID != "c-1" || ev.UI.Status != remediation.StatusOK {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestHandleComplaintSubmitted_ErrorBecomesErrorResult(t *testing.T) {
	bus := &fakeBus{}
	upstream := &llm.UpstreamError{Provider: "openai", Err: errors.New("connection refused")}
	p := New(Deps{Analyzer: &fakeAnalyzer{err: upstream}, Bus: bus}, discardLogger())

	data, _ := json.Marshal(hermes.ComplaintSubmitted{ComplaintID: "c-2", Text: "wifi"})
	p.HandleComplaintSubmitted(hermes.SubjectComplaintSubmitted, data)

	msg, _ := bus.last(hermes.SubjectComplaintAnalyzed)
	ev := msg.(hermes.ComplaintAnalyzed)
	if ev.UI.Status != remediation.StatusError {
		t.Fatalf("expected error status, got %q", ev.UI.Status)
	}
	if ev.UI.Message != "LLM API error: connection refused" {
		t.Errorf("unexpected message %q", ev.UI.Message)
	}
}

func TestHandleComplaintSubmitted_InvalidJSON(t *testing.T) {
	bus := &fakeBus{}
	p := New(Deps{Analyzer: &fakeAnalyzer{resp: technicalResponse()}, Bus: bus}, discardLogger())

	p.HandleComplaintSubmitted(hermes.SubjectComplaintSubmitted, []byte("not json"))
	if len(bus.msgs) != 0 {
		t.Errorf("expected nothing published, got %d", len(bus.msgs))
	}
}

func TestEscalateAndReact(t *testing.T) {
	st := newFakeStore()
	bus := &fakeBus{}
	notifier := &fakeNotifier{}
	p := New(Deps{
		Analyzer: &fakeAnalyzer{resp: technicalResponse()},
		Store:    st,
		Bus:      bus,
		Notifier: notifier,
	}, discardLogger())

	res, err := p.Analyze(context.Background(), "pip broken")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	analysisID := uuid.MustParse(res.AnalysisID)

	c := &store.Complaint{
		ID:           uuid.New(),
		Title:        "pip broken",
		Category:     "IT_Support",
		Department:   "it",
		Priority:     "High",
		Status:       store.StatusOpen,
		AIAnalysisID: &analysisID,
	}
	p.TicketFiled(context.Background(), c, true)

	if _, ok := bus.last(hermes.SubjectTicketCreated); !ok {
		t.Error("expected ticket created event")
	}
	if len(notifier.posted) != 1 {
		t.Fatalf("expected one escalation post, got %d", len(notifier.posted))
	}
	if !strings.HasPrefix(notifier.posted[0].Prefill, "[AI Routing] type=technical; category=dev_env_tooling") {
		t.Errorf("expected ticket prefill in escalation, got %q", notifier.posted[0].Prefill)
	}
	msg, ok := bus.last(hermes.SubjectTicketEscalated)
	if !ok || msg.(hermes.TicketEvent).SlackTS != "1700000000.000100" {
		t.Errorf("expected escalated event with slack ts, got %+v", msg)
	}

	reaction, _ := json.Marshal(map[string]any{"metadata": map[string]string{
		"text":       ":white_check_mark:",
		"user_id":    "U42",
		"message_ts": "1700000000.000100",
	}})
	p.HandleReaction(hermes.SubjectSlackReaction, reaction)

	if st.statuses[c.ID] != store.StatusResolved {
		t.Errorf("expected Resolved, got %q", st.statuses[c.ID])
	}
	msg, ok = bus.last(hermes.SubjectTicketStatus)
	if !ok || msg.(hermes.TicketEvent).ChangedBy != "U42" {
		t.Errorf("expected status event by U42, got %+v", msg)
	}
	if len(notifier.threads) != 1 || !strings.Contains(notifier.threads[0], "Resolved") {
		t.Errorf("expected status thread reply, got %q", notifier.threads)
	}
}

func TestHandleReaction_IgnoresUntrackedAndUnknown(t *testing.T) {
	st := newFakeStore()
	p := New(Deps{Analyzer: &fakeAnalyzer{}, Store: st}, discardLogger())

	for _, text := range []string{":eyes:", ":heart:"} {
		data, _ := json.Marshal(map[string]any{"metadata": map[string]string{
			"text":       text,
			"message_ts": "999.1",
		}})
		p.HandleReaction(hermes.SubjectSlackReaction, data)
	}
	if len(st.statuses) != 0 {
		t.Errorf("expected no status change, got %v", st.statuses)
	}
}
