package ledger

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo promedio ponderado tras una entrada
// (servicio de dominio, función pura).
//
//	NuevoCosto = ((CantActual * CostoActual) + (CantEntrada * PrecioEntrada)) / (CantActual + CantEntrada)
//
// redondeado a 2 decimales (mitad hacia arriba). Con stock en cero el costo
// pasa a ser directamente el precio de la entrada: evita la división por cero
// y que un precio viejo diluya el costo de un stock vacío.
func WeightedAverageCost(currentQty int64, currentCost decimal.Decimal, inQty int64, unitPrice decimal.Decimal) decimal.Decimal {
	if currentQty <= 0 {
		return unitPrice.Round(2)
	}
	qty := decimal.NewFromInt(currentQty)
	in := decimal.NewFromInt(inQty)
	num := qty.Mul(currentCost).Add(in.Mul(unitPrice))
	return num.Div(qty.Add(in)).Round(2)
}
