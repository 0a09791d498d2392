package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de stock. Se conservan los códigos
// históricos del sistema; la clasificación entrada/salida es una tabla de
// datos en el paquete ledger, no comportamiento del tipo.
type MovementType string

const (
	MovementEntree            MovementType = "ENTREE"             // recepción de proveedor
	MovementSortie            MovementType = "SORTIE"             // salida a cliente
	MovementInventaire        MovementType = "INVENTAIRE"         // ajuste por conteo físico (excedente)
	MovementRetourClient      MovementType = "RETOUR_CLIENT"      // devolución de cliente
	MovementRetourFournisseur MovementType = "RETOUR_FOURNISSEUR" // devolución a proveedor
	MovementPerte             MovementType = "PERTE"              // pérdida / merma
	MovementTransfertEntree   MovementType = "TRANSFERT_ENTREE"   // transferencia entrante
	MovementTransfertSortie   MovementType = "TRANSFERT_SORTIE"   // transferencia saliente
	MovementCorrection        MovementType = "CORRECTION"         // ajuste por conteo físico (faltante)
)

// Movement movimiento de stock aplicado contra un artículo. Inmutable una vez
// creado: el diario solo agrega, nunca actualiza ni borra.
// StockBefore/StockAfter son la instantánea de cantidad calculada por el
// ledger en el momento de aplicar.
type Movement struct {
	ID          string
	ArticleID   string
	Type        MovementType
	Quantity    int64            // siempre positivo; la dirección la da el tipo
	UnitPrice   *decimal.Decimal // obligatorio en ENTREE, opcional en el resto
	Counterpart string           // proveedor en entradas, cliente en salidas
	StockBefore int64
	StockAfter  int64
	Actor       string // identidad de quien registra el movimiento
	Reason      string
	CreatedAt   time.Time
}
