package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los errores que el pipeline expone a los hosts.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindMissingCollaborator ErrorKind = "missing_collaborator"
	KindStorageFailure      ErrorKind = "storage_failure"
	KindContractViolation   ErrorKind = "contract_violation"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrMissingCollaborator = errors.New("missing collaborator")
	ErrStorageFailure      = errors.New("storage failure")
	ErrContractViolation   = errors.New("contract violation")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidInput:        ErrInvalidInput,
	KindMissingCollaborator: ErrMissingCollaborator,
	KindStorageFailure:      ErrStorageFailure,
	KindContractViolation:   ErrContractViolation,
}

// Error es el payload estructurado: componente que falla y tipo de error.
type Error struct {
	Component string    `json:"component"`
	Kind      ErrorKind `json:"kind"`
	Err       error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Component, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is permite errors.Is(err, domain.ErrInvalidInput) sin conocer el componente.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// Message devuelve el detalle sin prefijos; no se garantiza estable.
func (e *Error) Message() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func NewError(component string, kind ErrorKind, err error) *Error {
	return &Error{Component: component, Kind: kind, Err: err}
}

func InvalidInput(component, format string, args ...any) error {
	return NewError(component, KindInvalidInput, fmt.Errorf(format, args...))
}

func MissingCollaborator(component, name string) error {
	return NewError(component, KindMissingCollaborator, fmt.Errorf("%s not supplied", name))
}

func StorageFailure(component string, err error) error {
	return NewError(component, KindStorageFailure, err)
}

func ContractViolation(component, format string, args ...any) error {
	return NewError(component, KindContractViolation, fmt.Errorf(format, args...))
}

// KindOf extrae el tipo de un error del dominio; vacio si no lo es.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// ComponentOf extrae el componente de un error del dominio.
func ComponentOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Component
	}
	return ""
}
