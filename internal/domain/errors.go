package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Usar con errors.Is.
var (
	ErrArticleNotFound = errors.New("artículo no encontrado")
	ErrStockNotFound   = errors.New("el artículo no tiene registro de stock")
	ErrDuplicateCode   = errors.New("código de artículo duplicado")
	ErrInvalidInput    = errors.New("entrada inválida")

	// ErrInsufficientStock se envuelve en InsufficientStockError con cantidades.
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrValidationFailed se envuelve en ValidationError con detalle por campo.
	ErrValidationFailed = errors.New("movimiento inválido")

	// ErrConcurrencyConflict: la escritura condicional perdió la carrera.
	// El ledger reintenta un número acotado de veces antes de exponerlo.
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia sobre el stock")

	// ErrPersistenceUnavailable: fallo de infraestructura; el llamador puede
	// reintentar con backoff. Nunca se descarta en silencio.
	ErrPersistenceUnavailable = errors.New("persistencia no disponible")
)

// InsufficientStockError detalla un rechazo por política de stock no negativo.
type InsufficientStockError struct {
	ArticleID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d",
		e.ArticleID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// FieldViolation violación de una regla de validación sobre un campo concreto.
type FieldViolation struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

// ValidationError agrupa las violaciones de la primera regla que falló.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}
	v := e.Violations[0]
	return fmt.Sprintf("movimiento inválido: %s (%s)", v.Field, v.Code)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// IsRetryable indica si el error puede resolverse reintentando.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrPersistenceUnavailable)
}
