package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/attacker"
	"github.com/gavelhq/gavel/internal/auditor"
	"github.com/gavelhq/gavel/internal/audits"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/issues"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/internal/pipeline"
	"github.com/gavelhq/gavel/internal/projects"
	"github.com/gavelhq/gavel/internal/retriever"
)

type fakeProjects struct {
	projects.System
	known map[uuid.UUID]*projects.Project
}

func (f *fakeProjects) Find(ctx context.Context, id uuid.UUID) (*projects.Project, error) {
	if p, ok := f.known[id]; ok {
		return p, nil
	}
	return nil, projects.ErrNotFound
}

type fakeDocuments struct {
	documents.System
	byProject map[uuid.UUID][]documents.Document
}

func (f *fakeDocuments) ByProject(ctx context.Context, projectID uuid.UUID) ([]documents.Document, error) {
	return f.byProject[projectID], nil
}

type fakeLaws struct {
	lawentries.System
	sample []int64
}

func (f *fakeLaws) Sample(ctx context.Context, n int) ([]int64, error) {
	return f.sample, nil
}

type fakeRetriever struct {
	entIDs []int64
	err    error
}

func (f *fakeRetriever) ExpandHyDE(ctx context.Context, query string) string { return query }

func (f *fakeRetriever) RetrieveLaw(ctx context.Context, docIDs []uuid.UUID, bill string, topK int) ([]int64, error) {
	return f.entIDs, f.err
}

func (f *fakeRetriever) RetrieveCaseContext(ctx context.Context, snippet string, topK int) string {
	return retriever.NoExtraContext
}

type fakeAttacker struct {
	scenarios []attacker.Scenario
	err       error
}

func (f *fakeAttacker) Generate(
	ctx context.Context,
	entIDs []int64,
	prd, tdd *documents.Document,
	caseContext string,
	maxN int,
) ([]attacker.Scenario, error) {
	return f.scenarios, f.err
}

type fakeAuditor struct {
	judge func(attacker.Scenario) (*auditor.Judgment, error)
}

func (f *fakeAuditor) Audit(ctx context.Context, scenario attacker.Scenario, docs []documents.Document) (*auditor.Judgment, error) {
	return f.judge(scenario)
}

// fakeAudits enforces the same monotonic status transitions as the real
// repository so the pipeline's claim/finish sequencing is observable.
type fakeAudits struct {
	audits.System
	mu       sync.Mutex
	statuses map[uuid.UUID]string
}

func newFakeAudits() *fakeAudits {
	return &fakeAudits{statuses: make(map[uuid.UUID]string)}
}

func (f *fakeAudits) Create(ctx context.Context, projectID uuid.UUID) (*audits.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New()
	f.statuses[id] = audits.StatusPending
	return &audits.Audit{AuditID: id, ProjectID: projectID, Status: audits.StatusPending}, nil
}

func (f *fakeAudits) Begin(ctx context.Context, auditID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.statuses[auditID] {
	case audits.StatusPending:
		f.statuses[auditID] = audits.StatusInProgress
		return nil
	case "":
		return audits.ErrNotFound
	default:
		return audits.ErrAlreadyRunning
	}
}

func (f *fakeAudits) Complete(ctx context.Context, auditID uuid.UUID) error {
	return f.finish(auditID, audits.StatusCompleted)
}

func (f *fakeAudits) Fail(ctx context.Context, auditID uuid.UUID) error {
	return f.finish(auditID, audits.StatusFailed)
}

func (f *fakeAudits) finish(auditID uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.statuses[auditID] != audits.StatusInProgress {
		return fmt.Errorf("%w: audit %s not in progress", audits.ErrInvalid, auditID)
	}
	f.statuses[auditID] = status
	return nil
}

func (f *fakeAudits) status(auditID uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[auditID]
}

type createdIssue struct {
	cmd  issues.CreateCommand
	seed string
}

type fakeIssues struct {
	issues.System
	mu      sync.Mutex
	created []createdIssue
}

func (f *fakeIssues) CreateWithConversation(ctx context.Context, cmd issues.CreateCommand, seedMessage string) (*issues.Seeded, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, createdIssue{cmd: cmd, seed: seedMessage})
	return &issues.Seeded{
		Issue: issues.Issue{
			IssueID:          uuid.New(),
			AuditID:          cmd.AuditID,
			EntID:            cmd.EntID,
			IssueDescription: cmd.IssueDescription,
			Evidence:         cmd.Evidence,
			ClarificationQn:  cmd.ClarificationQn,
			Status:           issues.StatusOpen,
		},
		ConversationID: uuid.New(),
	}, nil
}

type fixture struct {
	rt        *pipeline.Runtime
	sys       pipeline.System
	projectID uuid.UUID
	auditSys  *fakeAudits
	issueSys  *fakeIssues
}

func pipelineConfig() config.PipelineConfig {
	cfg := config.PipelineConfig{}
	if err := cfg.Finalize(); err != nil {
		panic(err)
	}
	return cfg
}

const oauthPRD = "The service exposes a partner API.\n" +
	"Users authenticate via OAuth without redirect URI validation.\n" +
	"Tokens never expire."

func newFixture(t *testing.T) *fixture {
	t.Helper()

	projectID := uuid.New()
	docID := uuid.New()

	judgment := &auditor.Judgment{
		Reasoning:             "Accepting arbitrary redirect URIs lets an attacker harvest tokens.",
		Evidence:              map[uuid.UUID][]int{docID: {1}},
		ClarificationQuestion: "Is the redirect URI allow-listed anywhere upstream?",
	}

	f := &fixture{
		projectID: projectID,
		auditSys:  newFakeAudits(),
		issueSys:  &fakeIssues{},
	}
	f.rt = &pipeline.Runtime{
		Projects: &fakeProjects{known: map[uuid.UUID]*projects.Project{
			projectID: {ID: projectID, Name: "partner-api"},
		}},
		Documents: &fakeDocuments{byProject: map[uuid.UUID][]documents.Document{
			projectID: {{
				ID:          docID,
				ProjectID:   projectID,
				Type:        documents.TypePRD,
				Content:     oauthPRD,
				ContentSpan: "<span0>The service exposes a partner API.</span0>\n<span1>Users authenticate via OAuth without redirect URI validation.</span1>\n<span2>Tokens never expire.</span2>",
				Version:     1,
			}},
		}},
		Laws:      &fakeLaws{sample: []int64{12}},
		Retriever: &fakeRetriever{entIDs: []int64{12}},
		Attacker: &fakeAttacker{scenarios: []attacker.Scenario{{
			Description:  "Register a malicious redirect URI and capture OAuth tokens (Attack vector: open redirect)",
			LawCitations: []int64{12},
			Rationale:    "the PRD states redirect URIs are not validated",
			PRDSpans:     []int{1},
		}}},
		Auditor:  &fakeAuditor{judge: func(attacker.Scenario) (*auditor.Judgment, error) { return judgment, nil }},
		Audits:   f.auditSys,
		Issues:   f.issueSys,
		Config:   pipelineConfig(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	f.sys = pipeline.New(f.rt)
	return f
}

func (f *fixture) run(t *testing.T) (*pipeline.Result, error) {
	t.Helper()
	return f.sys.Run(context.Background(), pipeline.RunCommand{
		ProjectID:    f.projectID,
		MaxScenarios: 1,
	})
}

func TestRunCompletesAudit(t *testing.T) {
	f := newFixture(t)

	result, err := f.run(t)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("issue count: got %d, want 1", result.Count)
	}
	if got := f.auditSys.status(result.AuditID); got != audits.StatusCompleted {
		t.Errorf("audit status: got %s, want completed", got)
	}

	created := f.issueSys.created[0]
	if created.cmd.EntID != 12 {
		t.Errorf("ent_id: got %d, want 12 (first citation)", created.cmd.EntID)
	}
	if created.seed != "Is the redirect URI allow-listed anywhere upstream?" {
		t.Errorf("seed message: got %q, want the clarification question", created.seed)
	}
	if result.Issues[0].ConvID == uuid.Nil {
		t.Error("issue ref has no conversation id")
	}
}

func TestRunRequiresProjectID(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.Run(context.Background(), pipeline.RunCommand{})
	if !errors.Is(err, pipeline.ErrInvalidRun) {
		t.Fatalf("got %v, want ErrInvalidRun", err)
	}
}

func TestRunUnknownProject(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.Run(context.Background(), pipeline.RunCommand{ProjectID: uuid.New()})
	if !errors.Is(err, pipeline.ErrProjectNotFound) {
		t.Fatalf("got %v, want ErrProjectNotFound", err)
	}
}

func TestRunNoDocumentsFailsAudit(t *testing.T) {
	f := newFixture(t)
	f.rt.Documents = &fakeDocuments{byProject: map[uuid.UUID][]documents.Document{}}

	_, err := f.run(t)
	if err == nil || !strings.Contains(err.Error(), pipeline.ErrNoDocuments.Error()) {
		t.Fatalf("got %v, want no-documents failure", err)
	}

	for id, status := range f.auditSys.statuses {
		if status != audits.StatusFailed {
			t.Errorf("audit %s status: got %s, want failed", id, status)
		}
	}
}

func TestRunRetrievalFallsBackToSample(t *testing.T) {
	f := newFixture(t)
	f.rt.Retriever = &fakeRetriever{err: errors.New("search backend down")}
	f.rt.Laws = &fakeLaws{sample: []int64{77}}
	f.rt.Attacker = &fakeAttacker{err: attacker.ErrUnavailable}

	result, err := f.run(t)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// degraded retrieval + degraded generation still produces the batch,
	// citing the sampled entries
	if result.Count != 1 {
		t.Fatalf("issue count: got %d, want 1", result.Count)
	}
	if got := f.issueSys.created[0].cmd.EntID; got != 77 {
		t.Errorf("ent_id: got %d, want sampled 77", got)
	}
}

func TestRunAuditorUnavailableUsesTemplatedJudgment(t *testing.T) {
	f := newFixture(t)
	f.rt.Auditor = &fakeAuditor{judge: func(attacker.Scenario) (*auditor.Judgment, error) {
		return nil, auditor.ErrUnavailable
	}}

	result, err := f.run(t)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("issue count: got %d, want 1", result.Count)
	}
	if f.issueSys.created[0].seed == "" {
		t.Error("templated judgment should still seed the conversation")
	}
	if got := f.auditSys.status(result.AuditID); got != audits.StatusCompleted {
		t.Errorf("audit status: got %s, want completed", got)
	}
}

func TestRunSkipsExhaustedScenario(t *testing.T) {
	f := newFixture(t)
	f.rt.Attacker = &fakeAttacker{scenarios: []attacker.Scenario{
		{Description: "first (Attack vector: a)", LawCitations: []int64{12}, PRDSpans: []int{0}},
		{Description: "second (Attack vector: b)", LawCitations: []int64{12}, PRDSpans: []int{1}},
	}}

	calls := 0
	f.rt.Auditor = &fakeAuditor{judge: func(s attacker.Scenario) (*auditor.Judgment, error) {
		calls++
		if s.Description == "second (Attack vector: b)" {
			return nil, errors.New("retry exhausted after 5 attempts: timeout")
		}
		return &auditor.Judgment{Reasoning: "finding"}, nil
	}}

	result, err := f.sys.Run(context.Background(), pipeline.RunCommand{
		ProjectID:    f.projectID,
		MaxScenarios: 2,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if calls != 2 {
		t.Errorf("auditor calls: got %d, want 2", calls)
	}
	if result.Count != 1 {
		t.Errorf("issue count: got %d, want 1 (failed scenario skipped)", result.Count)
	}
	if got := f.auditSys.status(result.AuditID); got != audits.StatusCompleted {
		t.Errorf("audit status: got %s, want completed (partial success)", got)
	}
}

func TestRunMissingCitedLawFailsAudit(t *testing.T) {
	f := newFixture(t)
	f.rt.Auditor = &fakeAuditor{judge: func(attacker.Scenario) (*auditor.Judgment, error) {
		return nil, fmt.Errorf("fetch cited law: %w", lawentries.ErrMissingEntries)
	}}

	_, err := f.run(t)
	if err == nil || !strings.Contains(err.Error(), lawentries.ErrMissingEntries.Error()) {
		t.Fatalf("got %v, want missing-entries failure", err)
	}

	for id, status := range f.auditSys.statuses {
		if status != audits.StatusFailed {
			t.Errorf("audit %s status: got %s, want failed", id, status)
		}
	}
}

func TestRunDetached(t *testing.T) {
	f := newFixture(t)

	started, err := f.sys.RunDetached(context.Background(), pipeline.RunCommand{
		ProjectID:    f.projectID,
		MaxScenarios: 1,
	})
	if err != nil {
		t.Fatalf("detached run failed: %v", err)
	}

	if !started.Started {
		t.Error("started flag not set")
	}
	if started.Status != audits.StatusInProgress {
		t.Errorf("status: got %s, want in_progress", started.Status)
	}
	// the audit row is claimed before the call returns
	if got := f.auditSys.status(started.AuditID); got == audits.StatusPending || got == "" {
		t.Errorf("audit not claimed synchronously: %q", got)
	}
}

func TestBeginClaimIsExclusive(t *testing.T) {
	f := newFixture(t)

	audit, err := f.auditSys.Create(context.Background(), f.projectID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := f.auditSys.Begin(context.Background(), audit.AuditID); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := f.auditSys.Begin(context.Background(), audit.AuditID); !errors.Is(err, audits.ErrAlreadyRunning) {
		t.Fatalf("second claim: got %v, want ErrAlreadyRunning", err)
	}
}
