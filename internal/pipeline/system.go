package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/audits"
	"github.com/gavelhq/gavel/internal/projects"
)

// System defines the public contract for pipeline invocation.
type System interface {
	Handler() *Handler

	// Run executes the full pipeline synchronously: create the audit, claim
	// it, run the graph, and apply the terminal status.
	Run(ctx context.Context, cmd RunCommand) (*Result, error)

	// RunDetached creates and claims the audit synchronously, then runs the
	// graph in the background. Clients poll the audit status endpoint.
	RunDetached(ctx context.Context, cmd RunCommand) (*Started, error)
}

type system struct {
	rt *Runtime
}

// New creates the pipeline system around a fully constructed Runtime.
func New(rt *Runtime) System {
	return &system{rt: rt}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.rt.Logger)
}

func (s *system) Run(ctx context.Context, cmd RunCommand) (*Result, error) {
	audit, cmd, err := s.prepare(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return s.execute(ctx, audit, cmd)
}

func (s *system) RunDetached(ctx context.Context, cmd RunCommand) (*Started, error) {
	audit, cmd, err := s.prepare(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// the run must outlive the triggering request
	go func() {
		runCtx := context.WithoutCancel(ctx)
		if _, err := s.execute(runCtx, audit, cmd); err != nil {
			s.rt.Logger.Error("background audit run failed", "audit_id", audit.AuditID, "error", err)
		}
	}()

	return &Started{
		Started: true,
		AuditID: audit.AuditID,
		Status:  audits.StatusInProgress,
	}, nil
}

// prepare validates the command, creates the audit row, and claims it with
// the compare-and-set transition before any pipeline work begins.
func (s *system) prepare(ctx context.Context, cmd RunCommand) (*audits.Audit, RunCommand, error) {
	if cmd.ProjectID == uuid.Nil {
		return nil, cmd, fmt.Errorf("%w: project_id is required", ErrInvalidRun)
	}
	if cmd.MaxScenarios <= 0 {
		cmd.MaxScenarios = s.rt.Config.MaxScenarios
	}
	if cmd.Bill == "" {
		cmd.Bill = "All"
	}

	if _, err := s.rt.Projects.Find(ctx, cmd.ProjectID); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			return nil, cmd, ErrProjectNotFound
		}
		return nil, cmd, err
	}

	audit, err := s.rt.Audits.Create(ctx, cmd.ProjectID)
	if err != nil {
		return nil, cmd, err
	}

	if err := s.rt.Audits.Begin(ctx, audit.AuditID); err != nil {
		return nil, cmd, err
	}

	return audit, cmd, nil
}

func (s *system) execute(ctx context.Context, audit *audits.Audit, cmd RunCommand) (*Result, error) {
	result, err := Execute(ctx, s.rt, audit.AuditID, cmd.ProjectID, cmd.MaxScenarios, cmd.Bill)
	if err != nil {
		// the status write must survive a cancelled request context
		if failErr := s.rt.Audits.Fail(context.WithoutCancel(ctx), audit.AuditID); failErr != nil {
			s.rt.Logger.Error("failed to mark audit failed", "audit_id", audit.AuditID, "error", failErr)
		}
		return nil, err
	}

	if err := s.rt.Audits.Complete(ctx, audit.AuditID); err != nil {
		return nil, err
	}

	s.rt.Logger.Info("audit run complete",
		"audit_id", audit.AuditID,
		"project_id", audit.ProjectID,
		"issues", result.Count,
	)
	return result, nil
}
