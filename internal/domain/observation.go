package domain

import (
	"fmt"
	"time"
)

// MarketObservation es una vela OHLC de un bucket temporal de un mercado.
// Los campos de precio son punteros: los feeds históricos reales tienen
// huecos, y un campo ausente tiene que ser distinguible de 0.0. Nunca se
// usan sentinelas (-1, NaN) para representar ausencia.
type MarketObservation struct {
	OpenTS  time.Time
	CloseTS time.Time
	Open    *float64
	High    *float64
	Low     *float64
	Close   *float64
	Volume  *float64
}

// IsComplete devuelve true si los cuatro campos OHLC están presentes.
// Una vela incompleta no sirve como valor pre-trade resuelto.
func (o MarketObservation) IsComplete() bool {
	return o.Open != nil && o.High != nil && o.Low != nil && o.Close != nil
}

// Float64 devuelve un puntero a v. Helper para construir observaciones
// con campos opcionales (parsers, fixtures de tests).
func Float64(v float64) *float64 {
	return &v
}

// ValidateSeries verifica que la serie esté ordenada estrictamente por
// OpenTS y sin timestamps duplicados. Una serie inválida es un error de
// configuración del provider, no un hueco de datos tolerable.
func ValidateSeries(obs []MarketObservation) error {
	for i := 1; i < len(obs); i++ {
		prev, cur := obs[i-1].OpenTS, obs[i].OpenTS
		if cur.Equal(prev) {
			return fmt.Errorf("domain.ValidateSeries: duplicate timestamp %s at index %d", cur, i)
		}
		if cur.Before(prev) {
			return fmt.Errorf("domain.ValidateSeries: out of order timestamp %s at index %d", cur, i)
		}
	}
	return nil
}
