package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// Intent movimiento propuesto, todavía sin aplicar. El validador lo revisa
// contra reglas estáticas; no tiene efectos secundarios.
type Intent struct {
	Type          entity.MovementType
	Quantity      int64
	UnitPrice     *decimal.Decimal
	Counterpart   string
	Actor         string
	PhysicalCount *int64 // solo tipos de conteo (INVENTAIRE/CORRECTION)
}

// Códigos de violación por campo.
const (
	CodeUnknownType   = "UNKNOWN_TYPE"
	CodeNotPositive   = "NOT_POSITIVE"
	CodeRequired      = "REQUIRED"
	CodeNegativeCount = "NEGATIVE_COUNT"
)

// Validate aplica las reglas en orden; gana la primera regla que falla y se
// devuelven sus violaciones campo a campo. nil significa intento válido.
func Validate(in Intent) *domain.ValidationError {
	rule, ok := RuleFor(in.Type)
	if !ok {
		return violation("type", CodeUnknownType)
	}

	// 1. La cantidad debe ser un entero positivo.
	if in.Quantity <= 0 {
		return violation("quantity", CodeNotPositive)
	}

	// 2. Entradas con precio (ENTREE): precio unitario > 0 y proveedor.
	if rule.RequiresPrice {
		var vs []domain.FieldViolation
		if in.UnitPrice == nil {
			vs = append(vs, domain.FieldViolation{Field: "unit_price", Code: CodeRequired})
		} else if !in.UnitPrice.GreaterThan(decimal.Zero) {
			vs = append(vs, domain.FieldViolation{Field: "unit_price", Code: CodeNotPositive})
		}
		if in.Counterpart == "" {
			vs = append(vs, domain.FieldViolation{Field: "counterpart", Code: CodeRequired})
		}
		if len(vs) > 0 {
			return &domain.ValidationError{Violations: vs}
		}
	}

	// 3. Salidas (SORTIE y afines): referencia de contraparte obligatoria.
	if !rule.Inbound && rule.RequiresCounterpart && in.Counterpart == "" {
		return violation("counterpart", CodeRequired)
	}

	// 4. Tipos de conteo: sin precio ni contraparte, pero el conteo físico
	// declarado no puede ser negativo.
	if rule.IsCount && in.PhysicalCount != nil && *in.PhysicalCount < 0 {
		return violation("physical_count", CodeNegativeCount)
	}

	// 5. Identidad del actor obligatoria para todo tipo.
	if in.Actor == "" {
		return violation("actor", CodeRequired)
	}

	return nil
}

func violation(field, code string) *domain.ValidationError {
	return &domain.ValidationError{Violations: []domain.FieldViolation{{Field: field, Code: code}}}
}
