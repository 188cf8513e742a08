package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

const componentPipeline = "pipeline"

// PipelineConfig agrupa los parametros de los componentes.
type PipelineConfig struct {
	Platform        string
	DailyCapMinutes int
	FollowUp        FollowUpOrchestratorConfig
	// RequireHistory hace obligatorio el HistoryStore al construir.
	RequireHistory bool
}

// Pipeline es la API del core que usan los hosts HTTP y CLI.
type Pipeline struct {
	logger  *zap.Logger
	clock   domain.Clock
	history domain.HistoryStore

	scorer       DimensionScorer
	aggregator   *PerformanceAggregator
	predictor    *TrajectoryPredictor
	planner      *PreparationPlanner
	scheduler    *SessionScheduler
	orchestrator *FollowUpOrchestrator
	negotiator   *NegotiationAdvisor
}

// NewPipeline falla con MissingCollaborator si falta el reloj, la biblioteca o un
// store requerido por configuracion.
func NewPipeline(logger *zap.Logger, clock domain.Clock, library domain.QuestionLibrary, history domain.HistoryStore, cfg PipelineConfig) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		return nil, domain.MissingCollaborator(componentPipeline, "clock")
	}
	if cfg.RequireHistory && history == nil {
		return nil, domain.MissingCollaborator(componentPipeline, "history store")
	}
	planner, err := NewPreparationPlanner(logger, library, cfg.DailyCapMinutes)
	if err != nil {
		return nil, err
	}
	orchestrator, err := NewFollowUpOrchestrator(logger, cfg.FollowUp)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		logger:       logger,
		clock:        clock,
		history:      history,
		scorer:       NewResponseScorer(logger),
		aggregator:   NewPerformanceAggregator(),
		predictor:    NewTrajectoryPredictor(logger),
		planner:      planner,
		scheduler:    NewSessionScheduler(logger, cfg.Platform),
		orchestrator: orchestrator,
		negotiator:   NewNegotiationAdvisor(logger),
	}, nil
}

// WithScorer reemplaza el scorer por keywords; usado en tests.
func (p *Pipeline) WithScorer(s DimensionScorer) *Pipeline {
	cp := *p
	cp.scorer = s
	return &cp
}

func (p *Pipeline) Now() time.Time {
	return p.clock.Now().UTC()
}

// HasHistory indica si hay un store configurado.
func (p *Pipeline) HasHistory() bool {
	return p.history != nil
}

func (p *Pipeline) PlanPreparation(job domain.JobDescription, candidate domain.CandidateProfile) (domain.PreparationPlan, error) {
	return p.planner.Plan(job, candidate, p.Now())
}

func (p *Pipeline) ScheduleSessions(applicationID string, job domain.JobDescription, now time.Time) ([]domain.InterviewSession, error) {
	if now.IsZero() {
		now = p.Now()
	}
	return p.scheduler.Schedule(applicationID, job, now)
}

func (p *Pipeline) TransitionSession(session domain.InterviewSession, to domain.SessionStatus, newTime *time.Time) (domain.InterviewSession, error) {
	return p.scheduler.Transition(session, to, newTime, p.Now())
}

func (p *Pipeline) Progression(sessions []domain.InterviewSession) ProgressionReport {
	return p.scheduler.Progression(sessions)
}

func (p *Pipeline) ScoreResponses(bundle domain.ResponseBundle, interviewType string) (domain.DimensionScores, error) {
	return p.scorer.Score(bundle, interviewType)
}

// RecordPerformance puntua, arma el registro y, si hay candidato y store, lo agrega
// a la historia. Si el store falla no se devuelve registro.
func (p *Pipeline) RecordPerformance(ctx context.Context, candidateID string, session domain.InterviewSession, bundle domain.ResponseBundle, interviewType string) (domain.PerformanceRecord, error) {
	if interviewType == "" {
		interviewType = session.Type
	}
	dims, err := p.scorer.Score(bundle, interviewType)
	if err != nil {
		return domain.PerformanceRecord{}, err
	}
	return p.RecordScores(ctx, candidateID, session, dims, interviewType)
}

// RecordScores es RecordPerformance con dimensiones ya calculadas.
func (p *Pipeline) RecordScores(ctx context.Context, candidateID string, session domain.InterviewSession, dims domain.DimensionScores, interviewType string) (domain.PerformanceRecord, error) {
	record, err := p.aggregator.BuildRecord(session, dims, interviewType, p.Now())
	if err != nil {
		return domain.PerformanceRecord{}, err
	}
	if p.history != nil && strings.TrimSpace(candidateID) != "" {
		if err := p.history.Append(ctx, candidateID, record); err != nil {
			return domain.PerformanceRecord{}, storageError(fmt.Errorf("append history for %s: %w", candidateID, err))
		}
	}
	p.logger.Info("performance recorded",
		zap.String("session_id", session.ID),
		zap.Float64("overall", record.Overall),
	)
	return record, nil
}

// History devuelve el documento del candidato. Sin store es MissingCollaborator.
func (p *Pipeline) History(ctx context.Context, candidateID string) (domain.HistoryDocument, error) {
	if p.history == nil {
		return domain.HistoryDocument{}, domain.MissingCollaborator(componentPipeline, "history store")
	}
	if strings.TrimSpace(candidateID) == "" {
		return domain.HistoryDocument{}, domain.InvalidInput(componentPipeline, "candidate id is required")
	}
	doc, err := p.history.Load(ctx, candidateID)
	if err != nil {
		return domain.HistoryDocument{}, storageError(fmt.Errorf("load history for %s: %w", candidateID, err))
	}
	return doc, nil
}

func (p *Pipeline) Forecast(history []domain.PerformanceRecord, fctx domain.ForecastContext) (domain.Forecast, error) {
	return p.predictor.Forecast(history, fctx)
}

// ForecastCandidate pronostica sobre la historia persistida.
func (p *Pipeline) ForecastCandidate(ctx context.Context, candidateID string, fctx domain.ForecastContext) (domain.Forecast, error) {
	doc, err := p.History(ctx, candidateID)
	if err != nil {
		return domain.Forecast{}, err
	}
	return p.predictor.Forecast(doc.Records, fctx)
}

func (p *Pipeline) ForecastOffer(predicted float64, octx domain.OfferContext) (domain.OfferForecast, error) {
	return p.predictor.ForecastOffer(predicted, octx)
}

func (p *Pipeline) PlanFollowUp(session domain.InterviewSession, record domain.PerformanceRecord, company domain.Company, fc FollowUpContext) (domain.FollowUpPlan, error) {
	return p.orchestrator.Plan(session, record, company, fc)
}

func (p *Pipeline) AnalyzeOffer(job domain.JobDescription) (domain.NegotiationAnalysis, error) {
	return p.negotiator.Analyze(job)
}

// storageError etiqueta como StorageFailure salvo que ya sea un error del dominio.
func storageError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.StorageFailure(componentPipeline, err)
}
