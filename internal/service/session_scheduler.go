package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

const componentScheduler = "session_scheduler"

const (
	DefaultPlatform = "zoom"
	minStageGap     = 72 * time.Hour
	firstSlotDelay  = 3 * 24 * time.Hour
)

type stageSpec struct {
	stage    domain.Stage
	kind     string
	duration int
}

var stageProgressions = map[domain.Seniority][]stageSpec{
	domain.SeniorityJunior: {
		{domain.StageInitial, "behavioral", 45},
		{domain.StageTechnical, "technical", 60},
	},
	domain.SeniorityMid: {
		{domain.StageInitial, "behavioral", 60},
		{domain.StageTechnical, "technical", 90},
		{domain.StageFinal, "executive", 60},
	},
	domain.SenioritySenior: {
		{domain.StageInitial, "behavioral", 60},
		{domain.StageTechnical, "systemic", 120},
		{domain.StageFinal, "executive", 90},
	},
	domain.SeniorityExecutive: {
		{domain.StageInitial, "executive", 90},
		{domain.StageTechnical, "strategic", 120},
		{domain.StageFinal, "executive", 120},
	},
}

type clockTime struct{ hour, minute int }

// preferredHours por etapa, en orden ascendente.
var preferredHours = map[domain.Stage][]clockTime{
	domain.StageInitial:   {{9, 0}, {10, 30}, {14, 0}},
	domain.StageTechnical: {{10, 0}, {13, 0}, {15, 0}},
	domain.StageFinal:     {{9, 0}, {11, 0}, {16, 0}},
	domain.StageExecutive: {{8, 0}, {9, 0}, {16, 0}},
}

var (
	seniorTitleTerms    = []string{"senior", "lead", "principal", "architect", "director"}
	executiveTitleTerms = []string{"manager", "head", "vp", "executive", "chief"}
	juniorTitleTerms    = []string{"junior", "associate", "entry"}
)

var typeDifficulty = map[string]int{
	"behavioral": 1,
	"technical":  2,
	"systemic":   3,
	"strategic":  3,
	"executive":  4,
}

// ProgressionReport resume la calidad de una secuencia de sesiones. Solo informativo.
type ProgressionReport struct {
	Smoothness       float64 `json:"smoothness"`
	TimingEfficiency float64 `json:"timing_efficiency"`
	Stages           int     `json:"stages"`
}

type SessionScheduler struct {
	logger   *zap.Logger
	platform string
}

func NewSessionScheduler(logger *zap.Logger, platform string) *SessionScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(platform) == "" {
		platform = DefaultPlatform
	}
	return &SessionScheduler{logger: logger, platform: platform}
}

// DeriveSeniority: tag explicito, luego titulo, luego salario; por defecto mid.
func DeriveSeniority(job domain.JobDescription) domain.Seniority {
	if s := job.Seniority.Normalize(); s != "" {
		return s
	}
	words := titleWords(job.Title)
	switch {
	case hasAnyWord(words, seniorTitleTerms):
		return domain.SenioritySenior
	case hasAnyWord(words, executiveTitleTerms):
		return domain.SeniorityExecutive
	case hasAnyWord(words, juniorTitleTerms):
		return domain.SeniorityJunior
	}
	if job.Salary != nil {
		switch {
		case job.Salary.Max > 200000:
			return domain.SeniorityExecutive
		case job.Salary.Max > 150000:
			return domain.SenioritySenior
		}
	}
	return domain.SeniorityMid
}

// Schedule devuelve las sesiones ordenadas, en UTC y separadas al menos 72h.
func (s *SessionScheduler) Schedule(applicationID string, job domain.JobDescription, now time.Time) ([]domain.InterviewSession, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, domain.InvalidInput(componentScheduler, "application id is required")
	}
	if err := job.Validate(); err != nil {
		return nil, domain.InvalidInput(componentScheduler, "malformed job: %v", err)
	}
	now = now.UTC()
	seniority := DeriveSeniority(job)
	progression := stageProgressions[seniority]

	sessions := make([]domain.InterviewSession, 0, len(progression))
	var prev time.Time
	for i, step := range progression {
		at := firstSlot(step.stage, now)
		if i > 0 && at.Before(prev.Add(minStageGap)) {
			at = spacedSlot(step.stage, prev)
		}
		sessions = append(sessions, domain.InterviewSession{
			ID:              stableID(applicationID, string(step.stage)),
			ApplicationID:   applicationID,
			Stage:           step.stage,
			Type:            step.kind,
			DurationMinutes: step.duration,
			ScheduledAt:     at,
			Platform:        s.platform,
			Status:          domain.SessionScheduled,
			UpdatedAt:       now,
		})
		prev = at
	}
	if err := checkSessions(sessions); err != nil {
		return nil, err
	}
	s.logger.Debug("sessions scheduled",
		zap.String("application_id", applicationID),
		zap.String("seniority", string(seniority)),
		zap.Int("sessions", len(sessions)),
	)
	return sessions, nil
}

// Transition aplica la maquina de estados de la sesion.
func (s *SessionScheduler) Transition(session domain.InterviewSession, to domain.SessionStatus, newTime *time.Time, now time.Time) (domain.InterviewSession, error) {
	next, err := session.Transition(to, newTime, now)
	if err != nil {
		return session, domain.InvalidInput(componentScheduler, "%v", err)
	}
	if to == domain.SessionScheduled && !isWeekday(next.ScheduledAt) {
		return session, domain.InvalidInput(componentScheduler, "rescheduled time %s is not a weekday", next.ScheduledAt.Format(time.RFC3339))
	}
	return next, nil
}

// Progression evalua suavidad de dificultad y espaciado entre etapas.
func (s *SessionScheduler) Progression(sessions []domain.InterviewSession) ProgressionReport {
	report := ProgressionReport{Stages: len(sessions)}
	if len(sessions) < 2 {
		report.Smoothness = 1
		report.TimingEfficiency = 1
		return report
	}
	var jumps, timing []float64
	for i := 1; i < len(sessions); i++ {
		jump := typeDifficulty[sessions[i].Type] - typeDifficulty[sessions[i-1].Type]
		if jump < 0 {
			jump = -jump
		}
		jumps = append(jumps, 1-clamp01(float64(jump-1)/3))
		days := sessions[i].ScheduledAt.Sub(sessions[i-1].ScheduledAt).Hours() / 24
		timing = append(timing, gapEfficiency(days))
	}
	report.Smoothness = mean(jumps...)
	report.TimingEfficiency = mean(timing...)
	return report
}

func gapEfficiency(days float64) float64 {
	switch {
	case days >= 3 && days <= 14:
		return 1.0
	case days >= 1 && days <= 21:
		return 0.8
	case days < 1:
		return 0.3
	default:
		return 0.6
	}
}

func isWeekday(t time.Time) bool {
	d := t.Weekday()
	return d != time.Saturday && d != time.Sunday
}

// nextWeekday avanza t (inclusive) hasta lunes-viernes.
func nextWeekday(t time.Time) time.Time {
	for !isWeekday(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func atClock(day time.Time, c clockTime) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, time.UTC)
}

func firstSlot(stage domain.Stage, now time.Time) time.Time {
	hours := preferredHours[stage]
	day := nextWeekday(now.Add(firstSlotDelay))
	at := atClock(day, hours[0])
	if !at.After(now) {
		at = nextWeekday(at.AddDate(0, 0, 7))
	}
	return at
}

// spacedSlot busca el primer horario preferido que respete la separacion minima.
func spacedSlot(stage domain.Stage, prev time.Time) time.Time {
	hours := preferredHours[stage]
	earliest := prev.Add(minStageGap)
	day := nextWeekday(earliest)
	for {
		for _, c := range hours {
			at := atClock(day, c)
			if !at.Before(earliest) {
				return at
			}
		}
		day = nextWeekday(day.AddDate(0, 0, 1))
	}
}

func checkSessions(sessions []domain.InterviewSession) error {
	for i, sess := range sessions {
		if sess.DurationMinutes <= 0 {
			return domain.ContractViolation(componentScheduler, "session %s has non-positive duration", sess.ID)
		}
		if !isWeekday(sess.ScheduledAt) {
			return domain.ContractViolation(componentScheduler, "session %s falls on a weekend", sess.ID)
		}
		if i > 0 && sess.ScheduledAt.Sub(sessions[i-1].ScheduledAt) < minStageGap {
			return domain.ContractViolation(componentScheduler, "session %s is closer than 72h to the previous stage", sess.ID)
		}
	}
	return nil
}
