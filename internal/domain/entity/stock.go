package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus clasificación derivada del nivel de stock frente a los umbrales del artículo.
type StockStatus string

// Estados posibles del stock. Se conservan los códigos históricos del sistema.
const (
	StatusNormal   StockStatus = "NORMAL"
	StatusLow      StockStatus = "FAIBLE"
	StatusCritical StockStatus = "CRITIQUE"
	StatusExcess   StockStatus = "EXCESSIF"
)

// Stock registro único de existencias por artículo (1:1, creado perezosamente
// con el primer movimiento o por inicialización explícita).
//
// Available y Value son campos derivados: se recalculan junto con cada
// mutación (ver ledger.Recompute) y nunca deben observarse desactualizados.
// Version soporta escritura condicional (concurrencia optimista).
type Stock struct {
	ArticleID     string
	Quantity      int64           // cantidad actual en existencia
	Reserved      int64           // cantidad reservada contra salidas futuras
	Available     int64           // derivado: Quantity - Reserved (negativo si hay sobre-reserva)
	AverageCost   decimal.Decimal // costo promedio ponderado, escala 2
	Value         decimal.Decimal // derivado: Quantity * AverageCost
	LastEntry     *time.Time      // última entrada aplicada
	LastExit      *time.Time      // última salida aplicada
	LastCount     *int64          // último conteo físico registrado
	CountVariance *int64          // variación del último conteo vs. sistema
	LastCountAt   *time.Time
	Status        StockStatus
	Version       int64
	UpdatedAt     time.Time
}

// OverReserved indica la anomalía de sobre-reserva (Reserved > Quantity).
// Permitida por política, pero se marca para reportes.
func (s *Stock) OverReserved() bool {
	return s.Reserved > s.Quantity
}
