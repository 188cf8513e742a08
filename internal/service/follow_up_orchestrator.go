package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-coach/internal/domain"
)

const componentOrchestrator = "follow_up_orchestrator"

const (
	DefaultWorkStart          = "09:00"
	DefaultBusinessHoursStart = 8
	DefaultBusinessHoursEnd   = 18
)

var messageOrder = []domain.MessageType{
	domain.MessageThankYou,
	domain.MessageReferenceRequest,
	domain.MessagePositionInquiry,
	domain.MessageValueAdd,
}

var baseOffsetDays = []float64{2, 5, 10, 15}

var strategyLength = map[domain.FollowUpStrategy]int{
	domain.StrategyAggressiveNurture:       4,
	domain.StrategyStandardProfessional:    3,
	domain.StrategyConservativePersistence: 2,
	domain.StrategyMinimalTouch:            1,
}

var strategyMultiplier = map[domain.FollowUpStrategy]float64{
	domain.StrategyAggressiveNurture:       0.8,
	domain.StrategyStandardProfessional:    1.0,
	domain.StrategyConservativePersistence: 1.5,
	domain.StrategyMinimalTouch:            2.0,
}

// sendOffset es el desfase sobre work_start para cada tipo.
var sendOffset = map[domain.MessageType]time.Duration{
	domain.MessageThankYou:         90 * time.Minute,
	domain.MessageReferenceRequest: 2 * time.Hour,
	domain.MessagePositionInquiry:  4 * time.Hour,
	domain.MessageValueAdd:         3*time.Hour + 30*time.Minute,
}

type messageTemplate struct {
	subject string
	body    string
}

var messageTemplates = map[domain.MessageType]messageTemplate{
	domain.MessageThankYou: {
		subject: "Following Up on Our Interview for {position} Role",
		body: `Dear {interviewer_name},

I hope this email finds you well. I wanted to follow up on our conversation about the **{position}** role at {company}.

I'm very enthusiastic about the opportunity to contribute to {company}'s mission and work with the talented team I spoke with.

I'm particularly excited about {specific_interest}. I believe my experience in {relevant_experience} would allow me to make meaningful contributions from day one.

I'd love to learn more about the next steps in the process and answer any additional questions you might have.

Thank you again for your time and consideration.

Best regards,
{applicant_name}`,
	},
	domain.MessageReferenceRequest: {
		subject: "Reference Request - {position} Role Discussion",
		body: `Dear {interviewer_name},

Thank you again for taking the time to discuss the **{position}** role at {company}. Our conversation gave me valuable insights into both the role and {company}'s culture and vision.

I'd greatly appreciate any advice you might be able to provide regarding the role or the team's current priorities.

Please don't hesitate to reach out if there's anything I can provide to support your decision-making process.

Best regards,
{applicant_name}`,
	},
	domain.MessagePositionInquiry: {
		subject: "Update on {position} Role - Next Steps",
		body: `Dear {interviewer_name},

I hope you're doing well. I wanted to follow up regarding the **{position}** role we discussed. I'm still very interested in the opportunity and would love to hear about any updates on the timeline.

Based on our conversation, I'm even more excited about the possibility of joining {company} and contributing to {specific_value_proposition}.

Thank you for your time and consideration.

Best regards,
{applicant_name}`,
	},
	domain.MessageValueAdd: {
		subject: "Resource Related to Our {position} Conversation",
		body: `Dear {interviewer_name},

Our conversation about the **{position}** role stayed with me, especially around {specific_interest}.

I came across a resource on {relevant_experience} that seemed relevant to the work at {company}, and I wanted to share it in case it is useful to the team.

Best regards,
{applicant_name}`,
	},
}

// FollowUpOrchestratorConfig define la ventana horaria de envio (UTC).
type FollowUpOrchestratorConfig struct {
	WorkStart          string
	BusinessHoursStart int
	BusinessHoursEnd   int
}

type FollowUpOrchestrator struct {
	logger    *zap.Logger
	workStart time.Duration
	openHour  int
	closeHour int
}

func NewFollowUpOrchestrator(logger *zap.Logger, cfg FollowUpOrchestratorConfig) (*FollowUpOrchestrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WorkStart == "" {
		cfg.WorkStart = DefaultWorkStart
	}
	if cfg.BusinessHoursStart == 0 && cfg.BusinessHoursEnd == 0 {
		cfg.BusinessHoursStart = DefaultBusinessHoursStart
		cfg.BusinessHoursEnd = DefaultBusinessHoursEnd
	}
	if cfg.BusinessHoursStart < 0 || cfg.BusinessHoursEnd > 24 || cfg.BusinessHoursStart >= cfg.BusinessHoursEnd {
		return nil, domain.InvalidInput(componentOrchestrator, "invalid business hours [%d,%d)", cfg.BusinessHoursStart, cfg.BusinessHoursEnd)
	}
	start, err := parseClock(cfg.WorkStart)
	if err != nil {
		return nil, domain.InvalidInput(componentOrchestrator, "invalid work start %q: %v", cfg.WorkStart, err)
	}
	return &FollowUpOrchestrator{
		logger:    logger,
		workStart: start,
		openHour:  cfg.BusinessHoursStart,
		closeHour: cfg.BusinessHoursEnd,
	}, nil
}

func parseClock(v string) (time.Duration, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute %q", parts[1])
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// SelectStrategy elige la estrategia por score y tamaño de empresa.
func SelectStrategy(overall float64, companySize string) domain.FollowUpStrategy {
	size := strings.ToLower(strings.TrimSpace(companySize))
	switch {
	case overall >= 0.8 && (size == "startup" || size == "small"):
		return domain.StrategyAggressiveNurture
	case overall >= 0.7:
		return domain.StrategyStandardProfessional
	case overall >= 0.6:
		return domain.StrategyConservativePersistence
	default:
		return domain.StrategyMinimalTouch
	}
}

// FollowUpContext completa los slots que no vienen de la sesion.
type FollowUpContext struct {
	Position      string
	ApplicantName string
}

// Plan genera la secuencia; nunca envia.
func (o *FollowUpOrchestrator) Plan(session domain.InterviewSession, record domain.PerformanceRecord, company domain.Company, fc FollowUpContext) (domain.FollowUpPlan, error) {
	if session.Status != domain.SessionCompleted {
		return domain.FollowUpPlan{}, domain.InvalidInput(componentOrchestrator, "session %s is %s, expected completed", session.ID, session.Status)
	}
	if record.SessionID != "" && record.SessionID != session.ID {
		return domain.FollowUpPlan{}, domain.InvalidInput(componentOrchestrator, "record belongs to session %s, not %s", record.SessionID, session.ID)
	}
	if record.Overall < 0 || record.Overall > 1 || math.IsNaN(record.Overall) {
		return domain.FollowUpPlan{}, domain.ContractViolation(componentOrchestrator, "overall score %v outside [0,1]", record.Overall)
	}

	strategy := SelectStrategy(record.Overall, company.Size)
	vars := map[string]string{
		"interviewer_name": defaultString(firstNonEmpty(company.InterviewerName, session.InterviewerName), "Recruitment Team"),
		"position":         defaultString(fc.Position, "Position"),
		"company":          defaultString(company.Name, "Company"),
		"applicant_name":   defaultString(fc.ApplicantName, "Applicant"),
	}

	sessionAt := session.ScheduledAt.UTC()
	prev := sessionAt
	messages := make([]domain.FollowUpMessage, 0, strategyLength[strategy])
	for i := 0; i < strategyLength[strategy]; i++ {
		kind := messageOrder[i]
		at := o.sendTime(sessionAt, baseOffsetDays[i]*strategyMultiplier[strategy], kind)
		for !at.After(prev) {
			at = o.sendTime(at, 1, kind)
		}
		tmpl := messageTemplates[kind]
		messages = append(messages, domain.FollowUpMessage{
			ID:              stableID("followup", session.ID, strconv.Itoa(i+1)),
			SessionID:       session.ID,
			Sequence:        i + 1,
			Type:            kind,
			ScheduledAt:     at,
			SubjectTemplate: tmpl.subject,
			BodyTemplate:    tmpl.body,
			Variables:       copyVars(vars),
			Recipient:       company.ContactEmail,
			Status:          domain.MessagePending,
		})
		prev = at
	}
	if err := o.checkMessages(sessionAt, messages); err != nil {
		return domain.FollowUpPlan{}, err
	}

	harmony := intervalHarmony(messages)
	plan := domain.FollowUpPlan{
		Strategy:           strategy,
		Messages:           messages,
		HarmonyScore:       harmony,
		ConsciousnessScore: o.sequenceConsciousness(messages, harmony),
	}
	o.logger.Debug("follow-up sequence planned",
		zap.String("session_id", session.ID),
		zap.String("strategy", string(strategy)),
		zap.Int("messages", len(messages)),
	)
	return plan, nil
}

// sendTime suma dias calendario, avanza a dia habil y fija la hora del tipo.
func (o *FollowUpOrchestrator) sendTime(from time.Time, days float64, kind domain.MessageType) time.Time {
	day := from.AddDate(0, 0, int(math.Round(days)))
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	at := day.Add(o.workStart + sendOffset[kind])
	open := time.Date(at.Year(), at.Month(), at.Day(), o.openHour, 0, 0, 0, time.UTC)
	closing := time.Date(at.Year(), at.Month(), at.Day(), o.closeHour, 0, 0, 0, time.UTC)
	switch {
	case at.Before(open):
		at = open
	case !at.Before(closing):
		at = open.AddDate(0, 0, 1)
	}
	return nextWeekday(at)
}

func (o *FollowUpOrchestrator) checkMessages(sessionAt time.Time, messages []domain.FollowUpMessage) error {
	prev := sessionAt
	for _, m := range messages {
		if !m.ScheduledAt.After(prev) {
			return domain.ContractViolation(componentOrchestrator, "message %d is not after its predecessor", m.Sequence)
		}
		if !isWeekday(m.ScheduledAt) {
			return domain.ContractViolation(componentOrchestrator, "message %d falls on a weekend", m.Sequence)
		}
		if h := m.ScheduledAt.Hour(); h < o.openHour || h >= o.closeHour {
			return domain.ContractViolation(componentOrchestrator, "message %d outside business hours", m.Sequence)
		}
		prev = m.ScheduledAt
	}
	return nil
}

// intervalHarmony premia intervalos medios cercanos a una semana.
func intervalHarmony(messages []domain.FollowUpMessage) float64 {
	if len(messages) < 2 {
		return 1.0
	}
	var gaps []float64
	for i := 1; i < len(messages); i++ {
		gaps = append(gaps, messages[i].ScheduledAt.Sub(messages[i-1].ScheduledAt).Hours()/24)
	}
	return 1 - math.Min(0.5, math.Abs(mean(gaps...)-7)/14)
}

// optimizedTime indica si el mensaje conserva la hora preferida de su tipo.
func (o *FollowUpOrchestrator) optimizedTime(m domain.FollowUpMessage) bool {
	at := m.ScheduledAt.UTC()
	clock := time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute
	return clock == o.workStart+sendOffset[m.Type]
}

func (o *FollowUpOrchestrator) sequenceConsciousness(messages []domain.FollowUpMessage, harmony float64) float64 {
	if len(messages) == 0 {
		return 0
	}
	score := 0.0
	if len(messages) >= 3 && messages[0].Type == domain.MessageThankYou {
		score++
	}
	for _, m := range messages {
		if o.optimizedTime(m) {
			score++
			break
		}
	}
	unique := make(map[domain.MessageType]bool)
	for _, m := range messages {
		unique[m.Type] = true
	}
	score += math.Min(1, float64(len(unique))/3)
	if harmony > 0.7 {
		score++
	}
	return clamp01(score / 4)
}

func copyVars(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
