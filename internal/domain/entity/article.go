package entity

import "time"

// Article representa un artículo (SKU) del almacén: identidad, designación,
// unidad de medida y umbrales de reorden. Los umbrales alimentan la
// clasificación de estado del stock (StockMin/StockMax pueden ser nil).
type Article struct {
	ID          string
	Code        string // código único del artículo
	Designation string
	UnitMeasure string
	StockMin    *int64 // umbral de reorden; nil = sin umbral
	StockMax    *int64 // sobre-stock; nil = sin límite
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
