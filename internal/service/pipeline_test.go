package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"interview-coach/internal/domain"
	"interview-coach/internal/library"
	"interview-coach/internal/repository"
)

type failingHistory struct {
	appendErr error
	planErr   error
	appended  int
}

func (f *failingHistory) Load(_ context.Context, candidateID string) (domain.HistoryDocument, error) {
	return domain.NewHistoryDocument(candidateID), nil
}

func (f *failingHistory) Append(context.Context, string, domain.PerformanceRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended++
	return nil
}

func (f *failingHistory) SetLastPlan(context.Context, string, string) error {
	return f.planErr
}

type fixedScorer struct{ dims domain.DimensionScores }

func (s fixedScorer) Score(domain.ResponseBundle, string) (domain.DimensionScores, error) {
	return s.dims, nil
}

func newTestPipeline(t *testing.T, history domain.HistoryStore) *Pipeline {
	t.Helper()
	p, err := NewPipeline(zap.NewNop(), domain.FixedClock{At: monday}, library.MustDefault(), history, PipelineConfig{})
	require.NoError(t, err)
	return p
}

func TestNewPipeline_MissingCollaborators(t *testing.T) {
	lib := library.MustDefault()

	_, err := NewPipeline(nil, nil, lib, nil, PipelineConfig{})
	assert.ErrorIs(t, err, domain.ErrMissingCollaborator)

	_, err = NewPipeline(nil, domain.SystemClock{}, nil, nil, PipelineConfig{})
	assert.ErrorIs(t, err, domain.ErrMissingCollaborator)

	_, err = NewPipeline(nil, domain.SystemClock{}, lib, nil, PipelineConfig{RequireHistory: true})
	assert.ErrorIs(t, err, domain.ErrMissingCollaborator)
}

func TestPipeline_RecordScoresContractViolation(t *testing.T) {
	history := &failingHistory{}
	p := newTestPipeline(t, history)
	session := completedSession("s1", monday)

	rec, err := p.RecordScores(context.Background(), "cand-1", session, domain.DimensionScores{Communication: 1.2}, "")
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	assert.Empty(t, rec.ID)
	assert.Zero(t, history.appended)
}

func TestPipeline_RecordPerformancePersists(t *testing.T) {
	store := repository.NewMemoryHistoryStore()
	dims := domain.DimensionScores{Communication: 0.8, Technical: 0.7, ProblemSolving: 0.6, CulturalFit: 0.9, Consciousness: 0.5}
	p := newTestPipeline(t, store).WithScorer(fixedScorer{dims: dims})
	ctx := context.Background()

	rec, err := p.RecordPerformance(ctx, "cand-1", completedSession("s1", monday), domain.ResponseBundle{"q": "answer"}, "")
	require.NoError(t, err)
	assert.Equal(t, monday, rec.CreatedAt)

	doc, err := p.History(ctx, "cand-1")
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, rec.ID, doc.Records[0].ID)

	forecast, err := p.ForecastCandidate(ctx, "cand-1", domain.ForecastContext{})
	require.NoError(t, err)
	assert.Equal(t, domain.TrendInsufficientData, forecast.Trend)
}

func TestPipeline_StorageFailure(t *testing.T) {
	history := &failingHistory{appendErr: errors.New("disk full")}
	p := newTestPipeline(t, history)

	rec, err := p.RecordScores(context.Background(), "cand-1", completedSession("s1", monday), domain.DimensionScores{Communication: 0.5}, "")
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, domain.PerformanceRecord{}, rec)

	// sin candidato no se toca el store
	_, err = p.RecordScores(context.Background(), "", completedSession("s1", monday), domain.DimensionScores{Communication: 0.5}, "")
	assert.NoError(t, err)
}

func TestPipeline_HistoryWithoutStore(t *testing.T) {
	p := newTestPipeline(t, nil)
	_, err := p.History(context.Background(), "cand-1")
	assert.ErrorIs(t, err, domain.ErrMissingCollaborator)
	assert.False(t, p.HasHistory())
}

func TestPipeline_Coordinate(t *testing.T) {
	store := repository.NewMemoryHistoryStore()
	p := newTestPipeline(t, store)
	ctx := context.Background()

	res, err := p.Coordinate(ctx, CoordinateRequest{
		ApplicationID: "app-1",
		CandidateID:   "cand-1",
		Job:           seniorPythonJob(),
		Candidate:     domain.CandidateProfile{Experience: domain.SenioritySenior, AvailableMinutes: 480},
		Company:       domain.Company{Name: "Acme", Size: "startup"},
	})
	require.NoError(t, err)
	assert.True(t, res.CoordinationComplete)
	assert.Len(t, res.Sessions, 3)
	assert.Equal(t, 480, res.Plan.TotalMinutes)
	require.NotNil(t, res.Negotiation)
	assert.Equal(t, "at_market", res.Negotiation.Competitiveness)

	doc, err := store.Load(ctx, "cand-1")
	require.NoError(t, err)
	assert.Equal(t, res.Plan.ID, doc.LastPlanID)
}

func TestPipeline_CoordinateFailsWhole(t *testing.T) {
	ctx := context.Background()
	req := CoordinateRequest{
		ApplicationID: "app-1",
		CandidateID:   "cand-1",
		Job:           domain.JobDescription{Title: "Engineer"},
		Candidate:     domain.CandidateProfile{Experience: domain.SeniorityMid, AvailableMinutes: 300},
		Now:           time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC),
	}

	p := newTestPipeline(t, &failingHistory{planErr: errors.New("timeout")})
	res, err := p.Coordinate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrStorageFailure)
	assert.Equal(t, CoordinationResult{}, res)

	bad := req
	bad.Candidate.AvailableMinutes = 0
	res, err = newTestPipeline(t, nil).Coordinate(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, res.CoordinationComplete)

	ok, err := newTestPipeline(t, nil).Coordinate(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, ok.Negotiation)
	assert.Equal(t, time.Date(2025, 2, 6, 9, 0, 0, 0, time.UTC), ok.Sessions[0].ScheduledAt)
}
