package ledger

import "github.com/jhoicas/kardex-api/internal/domain/entity"

// TypeRule clasificación estática de un tipo de movimiento. Tabla de datos
// consultada por el validador y por el ledger: la dirección del movimiento
// decide la rama aritmética, nunca hay lógica repartida en métodos del tipo.
type TypeRule struct {
	Inbound             bool // true = suma cantidad; false = resta
	RequiresPrice       bool // precio unitario obligatorio (> 0)
	RequiresCounterpart bool // referencia de contraparte obligatoria
	BypassStockCheck    bool // exento de la política de stock no negativo
	IsCount             bool // proviene de un conteo físico (INVENTAIRE/CORRECTION)
}

// typeRules tabla de clasificación por tipo de movimiento.
//
// CORRECTION ejecuta la rama de salida con la verificación de stock
// desactivada: es el movimiento que absorbe faltantes de inventario y debe
// poder llevar la cantidad exactamente al conteo físico observado.
// PERTE se acota estrictamente como SORTIE (no está exenta).
var typeRules = map[entity.MovementType]TypeRule{
	entity.MovementEntree:            {Inbound: true, RequiresPrice: true, RequiresCounterpart: true},
	entity.MovementRetourClient:      {Inbound: true},
	entity.MovementTransfertEntree:   {Inbound: true},
	entity.MovementInventaire:        {Inbound: true, BypassStockCheck: true, IsCount: true},
	entity.MovementSortie:            {RequiresCounterpart: true},
	entity.MovementRetourFournisseur: {RequiresCounterpart: true},
	entity.MovementPerte:             {RequiresCounterpart: true},
	entity.MovementTransfertSortie:   {RequiresCounterpart: true},
	entity.MovementCorrection:        {BypassStockCheck: true, IsCount: true},
}

// RuleFor devuelve la clasificación del tipo; ok=false si el tipo no existe.
func RuleFor(t entity.MovementType) (TypeRule, bool) {
	r, ok := typeRules[t]
	return r, ok
}
