package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"interview-coach/internal/domain"
	"interview-coach/internal/repository"
)

// AccountService registra y autentica candidatos.
type AccountService struct {
	logger     *zap.Logger
	candidates repository.CandidateRepository
	now        func() time.Time
}

func NewAccountService(logger *zap.Logger, candidates repository.CandidateRepository) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		logger:     logger,
		candidates: candidates,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

var (
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
)

const minPasswordLength = 8

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (domain.Candidate, error) {
	if s.candidates == nil {
		return domain.Candidate{}, errors.New("account service not configured")
	}
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Candidate{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < minPasswordLength {
		return domain.Candidate{}, ErrWeakPassword
	}
	if _, err := s.candidates.GetByEmail(ctx, email); err == nil {
		return domain.Candidate{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Candidate{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Candidate{}, err
	}
	candidate := domain.Candidate{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Candidate{}, ErrEmailTaken
		}
		return domain.Candidate{}, err
	}
	s.logger.Info("candidate registered", zap.String("candidate_id", candidate.ID))
	return candidate, nil
}

func (s *AccountService) Authenticate(ctx context.Context, emailAddr, password string) (domain.Candidate, error) {
	if s.candidates == nil {
		return domain.Candidate{}, errors.New("account service not configured")
	}
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.Candidate{}, ErrInvalidCredentials
	}
	candidate, err := s.candidates.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Candidate{}, ErrInvalidCredentials
		}
		return domain.Candidate{}, err
	}
	if candidate.PasswordHash == "" {
		return domain.Candidate{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(candidate.PasswordHash), []byte(password)); err != nil {
		return domain.Candidate{}, ErrInvalidCredentials
	}
	return candidate, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (domain.Candidate, error) {
	candidate, err := s.candidates.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Candidate{}, ErrCandidateNotFound
	}
	return candidate, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
