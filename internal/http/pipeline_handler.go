package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
	"interview-coach/internal/service"
)

// PipelineHandler expone las operaciones del pipeline de preparacion.
type PipelineHandler struct {
	logger   *zap.Logger
	pipeline *service.Pipeline
	queue    repository.FollowUpQueue
	similar  repository.SimilarityFinder
}

// NewPipelineHandler acepta queue y similar nil: sin queue los follow-ups solo se
// planifican, sin similar la ruta de registros cercanos responde 503.
func NewPipelineHandler(logger *zap.Logger, pipeline *service.Pipeline, queue repository.FollowUpQueue, similar repository.SimilarityFinder) *PipelineHandler {
	return &PipelineHandler{
		logger:   logger,
		pipeline: pipeline,
		queue:    queue,
		similar:  similar,
	}
}

var errorStatus = map[domain.ErrorKind]int{
	domain.KindInvalidInput:        http.StatusBadRequest,
	domain.KindMissingCollaborator: http.StatusServiceUnavailable,
	domain.KindStorageFailure:      http.StatusBadGateway,
	domain.KindContractViolation:   http.StatusInternalServerError,
}

// writeError traduce errores del dominio a {"error": {component, kind, message}}.
func (h *PipelineHandler) writeError(c *gin.Context, op string, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"kind": "internal", "message": "internal error"}})
		return
	}
	status := errorStatus[de.Kind]
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", zap.String("component", de.Component), zap.String("kind", string(de.Kind)), zap.Error(err))
	} else {
		h.logger.Warn(op+" rejected", zap.String("component", de.Component), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": gin.H{
		"component": de.Component,
		"kind":      de.Kind,
		"message":   de.Message(),
	}})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": domain.KindInvalidInput, "message": err.Error()}})
}

// PlanPreparation maneja POST /plans.
func (h *PipelineHandler) PlanPreparation(c *gin.Context) {
	var req struct {
		Job       domain.JobDescription   `json:"job"`
		Candidate domain.CandidateProfile `json:"candidate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.pipeline.PlanPreparation(req.Job, req.Candidate)
	if err != nil {
		h.writeError(c, "plan preparation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// ScheduleSessions maneja POST /sessions/schedule.
func (h *PipelineHandler) ScheduleSessions(c *gin.Context) {
	var req struct {
		ApplicationID string                `json:"application_id"`
		Job           domain.JobDescription `json:"job"`
		Now           time.Time             `json:"now"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sessions, err := h.pipeline.ScheduleSessions(req.ApplicationID, req.Job, req.Now)
	if err != nil {
		h.writeError(c, "schedule sessions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "progression": h.pipeline.Progression(sessions)})
}

// TransitionSession maneja POST /sessions/transition.
func (h *PipelineHandler) TransitionSession(c *gin.Context) {
	var req struct {
		Session domain.InterviewSession `json:"session"`
		To      domain.SessionStatus    `json:"to" binding:"required"`
		NewTime *time.Time              `json:"new_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.pipeline.TransitionSession(req.Session, req.To, req.NewTime)
	if err != nil {
		h.writeError(c, "transition session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ScoreResponses maneja POST /responses/score.
func (h *PipelineHandler) ScoreResponses(c *gin.Context) {
	var req struct {
		Responses     domain.ResponseBundle `json:"responses"`
		InterviewType string                `json:"interview_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	scores, err := h.pipeline.ScoreResponses(req.Responses, req.InterviewType)
	if err != nil {
		h.writeError(c, "score responses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

// RecordPerformance maneja POST /performance. Con token el registro se agrega a la
// historia del candidato.
func (h *PipelineHandler) RecordPerformance(c *gin.Context) {
	var req struct {
		Session       domain.InterviewSession `json:"session"`
		Responses     domain.ResponseBundle   `json:"responses"`
		Scores        *domain.DimensionScores `json:"scores"`
		InterviewType string                  `json:"interview_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	var (
		record domain.PerformanceRecord
		err    error
	)
	if req.Scores != nil {
		record, err = h.pipeline.RecordScores(ctx, candidateID(c), req.Session, *req.Scores, req.InterviewType)
	} else {
		record, err = h.pipeline.RecordPerformance(ctx, candidateID(c), req.Session, req.Responses, req.InterviewType)
	}
	if err != nil {
		h.writeError(c, "record performance", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// History maneja GET /performance/history.
func (h *PipelineHandler) History(c *gin.Context) {
	doc, err := h.pipeline.History(c.Request.Context(), candidateID(c))
	if err != nil {
		h.writeError(c, "load history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": doc})
}

// SimilarRecords maneja GET /performance/similar?k=5: registros cercanos al ultimo.
func (h *PipelineHandler) SimilarRecords(c *gin.Context) {
	if h.similar == nil {
		h.writeError(c, "similar records", domain.MissingCollaborator("http", "similarity index"))
		return
	}
	k, err := strconv.Atoi(c.DefaultQuery("k", "5"))
	if err != nil || k <= 0 {
		badRequest(c, errors.New("k must be a positive integer"))
		return
	}
	ctx := c.Request.Context()
	id := candidateID(c)
	doc, err := h.pipeline.History(ctx, id)
	if err != nil {
		h.writeError(c, "similar records", err)
		return
	}
	if len(doc.Records) == 0 {
		c.JSON(http.StatusOK, gin.H{"records": []repository.SimilarRecord{}})
		return
	}
	latest := doc.Records[len(doc.Records)-1]
	records, err := h.similar.SimilarRecords(ctx, id, latest.Scores, k)
	if err != nil {
		h.writeError(c, "similar records", domain.StorageFailure("http", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// Forecast maneja POST /forecast. Sin historia en el body y con token se usa la
// historia persistida.
func (h *PipelineHandler) Forecast(c *gin.Context) {
	var req struct {
		History []domain.PerformanceRecord `json:"history"`
		Context domain.ForecastContext     `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	var (
		forecast domain.Forecast
		err      error
	)
	if id := candidateID(c); len(req.History) == 0 && id != "" && h.pipeline.HasHistory() {
		forecast, err = h.pipeline.ForecastCandidate(c.Request.Context(), id, req.Context)
	} else {
		forecast, err = h.pipeline.Forecast(req.History, req.Context)
	}
	if err != nil {
		h.writeError(c, "forecast", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecast": forecast})
}

// ForecastOffer maneja POST /forecast/offer.
func (h *PipelineHandler) ForecastOffer(c *gin.Context) {
	var req struct {
		Predicted float64             `json:"predicted"`
		Context   domain.OfferContext `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	offer, err := h.pipeline.ForecastOffer(req.Predicted, req.Context)
	if err != nil {
		h.writeError(c, "forecast offer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offer": offer})
}

// PlanFollowUp maneja POST /follow-ups. Solo un candidato autenticado encola sus
// mensajes; sin token la secuencia se devuelve sin encolar.
func (h *PipelineHandler) PlanFollowUp(c *gin.Context) {
	var req struct {
		Session       domain.InterviewSession  `json:"session"`
		Record        domain.PerformanceRecord `json:"record"`
		Company       domain.Company           `json:"company"`
		Position      string                   `json:"position"`
		ApplicantName string                   `json:"applicant_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.pipeline.PlanFollowUp(req.Session, req.Record, req.Company, service.FollowUpContext{
		Position:      req.Position,
		ApplicantName: req.ApplicantName,
	})
	if err != nil {
		h.writeError(c, "plan follow-up", err)
		return
	}
	queued := false
	if owner := candidateID(c); owner != "" && h.queue != nil && req.Company.ContactEmail != "" {
		for i := range plan.Messages {
			plan.Messages[i].CandidateID = owner
		}
		if err := h.queue.Enqueue(c.Request.Context(), plan.Messages); err != nil {
			h.writeError(c, "enqueue follow-up", domain.StorageFailure("http", err))
			return
		}
		queued = true
	}
	c.JSON(http.StatusOK, gin.H{"follow_up": plan, "queued": queued})
}

// AnalyzeOffer maneja POST /negotiation.
func (h *PipelineHandler) AnalyzeOffer(c *gin.Context) {
	var req struct {
		Job domain.JobDescription `json:"job"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	analysis, err := h.pipeline.AnalyzeOffer(req.Job)
	if err != nil {
		h.writeError(c, "analyze offer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"negotiation": analysis})
}

// Coordinate maneja POST /coordinate.
func (h *PipelineHandler) Coordinate(c *gin.Context) {
	var req service.CoordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.CandidateID = candidateID(c)
	result, err := h.pipeline.Coordinate(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "coordinate", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
