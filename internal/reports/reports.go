// Package reports assembles a completed audit into a dossier and drives the
// generator to produce an executive markdown report.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/audits"
	"github.com/gavelhq/gavel/internal/conversations"
	"github.com/gavelhq/gavel/internal/documents"
	"github.com/gavelhq/gavel/internal/issues"
	"github.com/gavelhq/gavel/internal/lawentries"
	"github.com/gavelhq/gavel/internal/projects"
	"github.com/gavelhq/gavel/pkg/genai"
)

// Domain errors for report generation.
var (
	ErrNotFound    = errors.New("audit not found")
	ErrUnavailable = errors.New("report generation unavailable")
)

// MapHTTPStatus maps report errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Report is the generated executive summary for one audit.
type Report struct {
	AuditID     uuid.UUID `json:"audit_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Markdown    string    `json:"markdown"`
	IssueCount  int       `json:"issue_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// System defines the public contract for report generation.
type System interface {
	Handler() *Handler

	// Generate assembles the audit dossier and produces a markdown report.
	Generate(ctx context.Context, auditID uuid.UUID) (*Report, error)
}

type system struct {
	audits    audits.System
	projects  projects.System
	docs      documents.System
	issues    issues.System
	convs     conversations.System
	laws      lawentries.System
	generator genai.Generator
	attempts  int
	retryBase time.Duration
	logger    *slog.Logger
}

// New creates a report generator. generator may be nil; Generate then
// returns ErrUnavailable.
func New(
	auditSys audits.System,
	projectSys projects.System,
	docs documents.System,
	issueSys issues.System,
	convs conversations.System,
	laws lawentries.System,
	generator genai.Generator,
	attempts int,
	retryBase time.Duration,
	logger *slog.Logger,
) System {
	return &system{
		audits:    auditSys,
		projects:  projectSys,
		docs:      docs,
		issues:    issueSys,
		convs:     convs,
		laws:      laws,
		generator: generator,
		attempts:  attempts,
		retryBase: retryBase,
		logger:    logger.With("system", "reports"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Generate(ctx context.Context, auditID uuid.UUID) (*Report, error) {
	if s.generator == nil {
		return nil, ErrUnavailable
	}

	audit, err := s.audits.Find(ctx, auditID)
	if err != nil {
		if errors.Is(err, audits.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	dossier, issueCount, err := s.buildDossier(ctx, audit)
	if err != nil {
		return nil, err
	}

	prompt := reportPreamble + dossier

	markdown, err := genai.Retry(ctx, s.attempts, s.retryBase, func(ctx context.Context) (string, error) {
		text, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", genai.ErrEmptyResponse
		}
		return text, nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	s.logger.Info("report generated", "audit_id", auditID, "issues", issueCount)

	return &Report{
		AuditID:     audit.AuditID,
		ProjectID:   audit.ProjectID,
		Markdown:    markdown,
		IssueCount:  issueCount,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

const reportPreamble = `You are writing an executive compliance report for the audit dossier
below. Produce well-structured markdown with: a one-paragraph executive
summary, a findings section with one subsection per issue (cited law,
reasoning, evidence, discussion outcome), and a recommendations section.
Write for a non-technical leadership audience. Respond with markdown only.

`

func (s *system) buildDossier(ctx context.Context, audit *audits.Audit) (string, int, error) {
	var sb strings.Builder

	project, err := s.projects.Find(ctx, audit.ProjectID)
	if err != nil {
		return "", 0, fmt.Errorf("fetch project: %w", err)
	}

	fmt.Fprintf(&sb, "# Audit dossier\n\nProject: %s\nDescription: %s\nAudit status: %s\nAudit date: %s\n",
		project.Name, project.Description, audit.Status, audit.CreatedAt.Format(time.DateOnly))

	docs, err := s.docs.ByProject(ctx, audit.ProjectID)
	if err != nil {
		return "", 0, fmt.Errorf("fetch documents: %w", err)
	}

	sb.WriteString("\n## Documents audited\n")
	for _, d := range docs {
		fmt.Fprintf(&sb, "- %s (version %d)\n", d.Type, d.Version)
	}

	items, err := s.issues.ByAudit(ctx, audit.AuditID)
	if err != nil {
		return "", 0, fmt.Errorf("fetch issues: %w", err)
	}

	for n, issue := range items {
		fmt.Fprintf(&sb, "\n## Finding %d (status: %s)\n", n+1, issue.Status)

		if issue.EntID != issues.SentinelEntID {
			if law, err := s.laws.Find(ctx, issue.EntID); err == nil {
				fmt.Fprintf(&sb, "Cited law: %s art. %s\n%s\n", law.BelongsTo, law.ArtNum, law.Contents)
			} else {
				s.logger.Warn("report skipping unresolvable citation", "issue_id", issue.IssueID, "ent_id", issue.EntID)
			}
		}

		fmt.Fprintf(&sb, "\nReasoning: %s\n", issue.IssueDescription)

		if highlights, err := s.issues.Highlights(ctx, issue.IssueID); err == nil && len(highlights.Highlights) > 0 {
			sb.WriteString("\nEvidence:\n")
			for _, h := range highlights.Highlights {
				fmt.Fprintf(&sb, "- %q\n", h.Text)
			}
		}

		if conv, err := s.convs.ByIssue(ctx, issue.IssueID); err == nil {
			if transcript, err := s.convs.Messages(ctx, conv.ConvID); err == nil && len(transcript) > 0 {
				sb.WriteString("\nDiscussion:\n")
				for _, m := range transcript {
					fmt.Fprintf(&sb, "[%s] %s\n", m.Type, m.Content)
				}
			}
		}
	}

	return sb.String(), len(items), nil
}
