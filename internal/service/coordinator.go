package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

// CoordinateRequest es la unidad de trabajo: un candidato y un puesto.
type CoordinateRequest struct {
	ApplicationID string                  `json:"application_id" validate:"required"`
	// CandidateID lo fija el host (token o flag), nunca el cuerpo del request.
	CandidateID   string                  `json:"-"`
	Job           domain.JobDescription   `json:"job"`
	Candidate     domain.CandidateProfile `json:"candidate"`
	Company       domain.Company          `json:"company"`
	Now           time.Time               `json:"now,omitempty"`
}

// CoordinationResult se devuelve completo o no se devuelve.
type CoordinationResult struct {
	ApplicationID        string                      `json:"application_id"`
	Sessions             []domain.InterviewSession   `json:"sessions"`
	Progression          ProgressionReport           `json:"progression"`
	Plan                 domain.PreparationPlan      `json:"plan"`
	Negotiation          *domain.NegotiationAnalysis `json:"negotiation,omitempty"`
	CoordinationComplete bool                        `json:"coordination_complete"`
}

// Coordinate ejecuta scheduler, planner y analisis de oferta en ese orden. El primer
// error corta la ejecucion.
func (p *Pipeline) Coordinate(ctx context.Context, req CoordinateRequest) (CoordinationResult, error) {
	if strings.TrimSpace(req.ApplicationID) == "" {
		return CoordinationResult{}, domain.InvalidInput(componentPipeline, "application id is required")
	}
	now := req.Now
	if now.IsZero() {
		now = p.Now()
	}
	if req.Company.Name != "" && req.Job.Company == "" {
		req.Job.Company = req.Company.Name
	}
	if req.Company.Size != "" && req.Job.CompanySize == "" {
		req.Job.CompanySize = req.Company.Size
	}

	sessions, err := p.scheduler.Schedule(req.ApplicationID, req.Job, now)
	if err != nil {
		return CoordinationResult{}, err
	}
	plan, err := p.planner.Plan(req.Job, req.Candidate, now)
	if err != nil {
		return CoordinationResult{}, err
	}
	var negotiation *domain.NegotiationAnalysis
	if req.Job.Salary != nil {
		analysis, err := p.negotiator.Analyze(req.Job)
		if err != nil {
			return CoordinationResult{}, err
		}
		negotiation = &analysis
	}
	if p.history != nil && strings.TrimSpace(req.CandidateID) != "" {
		if err := p.history.SetLastPlan(ctx, req.CandidateID, plan.ID); err != nil {
			return CoordinationResult{}, storageError(fmt.Errorf("store last plan for %s: %w", req.CandidateID, err))
		}
	}

	p.logger.Info("application coordinated",
		zap.String("application_id", req.ApplicationID),
		zap.Int("sessions", len(sessions)),
		zap.String("plan_id", plan.ID),
	)
	return CoordinationResult{
		ApplicationID:        req.ApplicationID,
		Sessions:             sessions,
		Progression:          p.scheduler.Progression(sessions),
		Plan:                 plan,
		Negotiation:          negotiation,
		CoordinationComplete: true,
	}, nil
}
