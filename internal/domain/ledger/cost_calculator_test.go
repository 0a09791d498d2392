package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/kardex-api/internal/domain/ledger"
)

// 10 unidades a 5.00 más 10 unidades a 7.00 deben promediar exactamente 6.00.
func TestWeightedAverageCost_PromedioExacto(t *testing.T) {
	cost := ledger.WeightedAverageCost(10, decimal.NewFromInt(5), 10, decimal.NewFromInt(7))
	assert.True(t, cost.Equal(decimal.NewFromFloat(6.00)), "esperaba 6.00, obtuvo %s", cost)
}

// Con stock en cero el costo pasa a ser el precio de la entrada; no hay
// división por cero ni dilución con costos viejos.
func TestWeightedAverageCost_StockEnCero(t *testing.T) {
	cost := ledger.WeightedAverageCost(0, decimal.NewFromInt(99), 4, decimal.NewFromFloat(12.5))
	assert.True(t, cost.Equal(decimal.NewFromFloat(12.50)), "esperaba 12.50, obtuvo %s", cost)
}

func TestWeightedAverageCost_RedondeoADosDecimales(t *testing.T) {
	// (3*10.00 + 1*10.01) / 4 = 10.0025 -> 10.00 (mitad hacia arriba)
	cost := ledger.WeightedAverageCost(3, decimal.NewFromInt(10), 1, decimal.NewFromFloat(10.01))
	assert.True(t, cost.Equal(decimal.NewFromFloat(10.00)), "esperaba 10.00, obtuvo %s", cost)

	// (1*10.00 + 1*10.01) / 2 = 10.005 -> 10.01
	cost = ledger.WeightedAverageCost(1, decimal.NewFromInt(10), 1, decimal.NewFromFloat(10.01))
	assert.True(t, cost.Equal(decimal.NewFromFloat(10.01)), "esperaba 10.01, obtuvo %s", cost)
}

func TestWeightedAverageCost_MismoPrecioNoCambia(t *testing.T) {
	cost := ledger.WeightedAverageCost(50, decimal.NewFromFloat(3.25), 25, decimal.NewFromFloat(3.25))
	assert.True(t, cost.Equal(decimal.NewFromFloat(3.25)))
}
