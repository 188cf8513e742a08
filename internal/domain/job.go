package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Seniority es el nivel del puesto o del candidato.
type Seniority string

const (
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityExecutive Seniority = "executive"
)

// Normalize acepta alias como "mid_level" y devuelve el nivel canonico.
func (s Seniority) Normalize() Seniority {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "junior", "entry":
		return SeniorityJunior
	case "mid", "mid_level", "intermediate":
		return SeniorityMid
	case "senior", "lead":
		return SenioritySenior
	case "executive":
		return SeniorityExecutive
	default:
		return ""
	}
}

type SalaryRange struct {
	Min int `json:"min" yaml:"min" validate:"gte=0"`
	Max int `json:"max" yaml:"max" validate:"gte=0,gtefield=Min"`
}

// Average devuelve el punto medio del rango.
func (r SalaryRange) Average() float64 {
	return float64(r.Min+r.Max) / 2
}

// JobDescription es el puesto al que aplica el candidato.
type JobDescription struct {
	Title          string       `json:"title" yaml:"title" validate:"required"`
	Company        string       `json:"company" yaml:"company"`
	RequiredSkills []string     `json:"requirements,omitempty" yaml:"requirements"`
	Seniority      Seniority    `json:"seniority,omitempty" yaml:"seniority" validate:"omitempty,seniority"`
	Salary         *SalaryRange `json:"salary,omitempty" yaml:"salary"`
	CultureTags    []string     `json:"culture_tags,omitempty" yaml:"culture_tags"`
	CompanySize    string       `json:"company_size,omitempty" yaml:"company_size" validate:"omitempty,oneof=startup small medium enterprise"`
}

// validate reconoce el tag "seniority": cualquier valor que Normalize acepte.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("seniority", func(fl validator.FieldLevel) bool {
		return Seniority(fl.Field().String()).Normalize() != ""
	})
	return v
}

func (j *JobDescription) Validate() error {
	if err := validate.Struct(j); err != nil {
		return err
	}
	if strings.TrimSpace(j.Title) == "" {
		return ErrInvalidInput
	}
	return nil
}

// CandidateProfile describe al candidato que se prepara.
type CandidateProfile struct {
	Name             string    `json:"name,omitempty" yaml:"name"`
	Email            string    `json:"email,omitempty" yaml:"email" validate:"omitempty,email"`
	Experience       Seniority `json:"experience" yaml:"experience" validate:"required,seniority"`
	AvailableMinutes int       `json:"available_minutes" yaml:"available_minutes" validate:"gt=0"`
	PriorRoles       []string  `json:"prior_roles,omitempty" yaml:"prior_roles"`
}

func (c *CandidateProfile) Validate() error {
	return validate.Struct(c)
}

// Company reune los datos de la empresa usados en follow-ups y forecasts.
type Company struct {
	Name            string `json:"name" yaml:"name"`
	Size            string `json:"size,omitempty" yaml:"size"`
	InterviewerName string `json:"interviewer_name,omitempty" yaml:"interviewer_name"`
	ContactEmail    string `json:"contact_email,omitempty" yaml:"contact_email" validate:"omitempty,email"`
}
