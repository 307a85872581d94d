package domain

// instrument.go — especificación de instrumentos y curación de precios.
//
// Los cálculos intermedios del engine trabajan en float64 sin restricciones,
// pero todo precio que toca un trade (entry, stop-loss, take-profit, exit)
// tiene que caer en la rejilla legal de ticks del instrumento. La curación
// se aplica exactamente una vez, en la frontera entre cálculo y valoración —
// nunca sobre valores intermedios.

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// RoundingRule define cómo se proyecta un precio crudo a la rejilla.
type RoundingRule int

const (
	// RoundDecimals redondea al número canónico de decimales del
	// instrumento (rejilla = 10^-n).
	RoundDecimals RoundingRule = iota

	// RoundHalfTick proyecta el último decimal al punto 0/5 más cercano:
	// restos 1-2 bajan al tick inferior, 3-4 y 6-7 van al medio tick,
	// 8-9 suben al tick entero siguiente. 0 y 5 ya son legales.
	RoundHalfTick

	// RoundNearestTick redondea al múltiplo entero más cercano de TickSize.
	RoundNearestTick
)

// InstrumentSpec es la especificación inmutable de un instrumento operable.
// La tabla completa se carga una vez al arrancar y es de solo lectura.
type InstrumentSpec struct {
	Symbol        string
	DecimalPlaces int32   // precisión decimal canónica del instrumento
	TickSize      float64 // incremento mínimo legal de precio
	TickValue     float64 // valor monetario de un tick
	Rounding      RoundingRule
}

// Curate proyecta un precio crudo de float64 a la rejilla legal del
// instrumento. Función pura, total sobre cualquier float finito e
// idempotente: Curate(Curate(x)) == Curate(x).
func (s InstrumentSpec) Curate(raw float64) float64 {
	switch s.Rounding {
	case RoundHalfTick:
		return roundHalfTick(raw, s.DecimalPlaces)
	case RoundNearestTick:
		return roundNearestTick(raw, s.TickSize, s.DecimalPlaces)
	default:
		return roundDecimals(raw, s.DecimalPlaces)
	}
}

// PriceToTicks convierte una delta de precio en número de ticks (redondeado).
func (s InstrumentSpec) PriceToTicks(delta float64) float64 {
	if s.TickSize == 0 {
		return delta
	}
	return math.Round(delta / s.TickSize)
}

// TicksToDollar convierte un número de ticks en valor monetario.
func (s InstrumentSpec) TicksToDollar(ticks float64) float64 {
	return ticks * s.TickValue
}

// roundDecimals redondea al decimal n-ésimo. Usamos aritmética decimal para
// evitar los residuos binarios del estilo 1.1530499999999999.
func roundDecimals(raw float64, places int32) float64 {
	return decimal.NewFromFloat(raw).Round(places).InexactFloat64()
}

// roundHalfTick implementa el remapeo de cinco vías sobre el dígito en la
// posición decimal n: el resultado siempre termina en 0 o 5 en esa posición.
func roundHalfTick(raw float64, places int32) float64 {
	shifted := decimal.NewFromFloat(raw).Shift(places).Round(0)
	last := shifted.Mod(decimal.NewFromInt(10)).IntPart()

	var adjustment int64
	switch last {
	case 1, 2:
		adjustment = -last // baja al tick inferior
	case 3, 4, 6, 7:
		adjustment = 5 - last // va al medio tick
	case 8, 9:
		adjustment = 10 - last // sube al tick entero
	default:
		adjustment = 0 // 0 y 5 ya están en la rejilla
	}

	return shifted.
		Add(decimal.NewFromInt(adjustment)).
		Shift(-places).
		InexactFloat64()
}

// roundNearestTick proyecta al múltiplo entero más cercano de tick,
// re-expresado a la precisión canónica del instrumento.
func roundNearestTick(raw float64, tick float64, places int32) float64 {
	if tick == 0 {
		return roundDecimals(raw, places)
	}
	d := decimal.NewFromFloat(raw)
	t := decimal.NewFromFloat(tick)
	return d.DivRound(t, 0).Mul(t).Round(places).InexactFloat64()
}

// instruments es la tabla de instrumentos conocidos: los futuros de divisas
// del CME más btcusdt spot. Solo lectura después de la inicialización.
var instruments = map[string]InstrumentSpec{
	"btcusdt": {Symbol: "btcusdt", DecimalPlaces: 2, TickSize: 0.01, TickValue: 1.0, Rounding: RoundDecimals},
	"6e":      {Symbol: "6e", DecimalPlaces: 5, TickSize: 0.00005, TickValue: 6.25, Rounding: RoundHalfTick},
	"6a":      {Symbol: "6a", DecimalPlaces: 5, TickSize: 0.00005, TickValue: 5.0, Rounding: RoundHalfTick},
	"6b":      {Symbol: "6b", DecimalPlaces: 4, TickSize: 0.0001, TickValue: 6.25, Rounding: RoundDecimals},
	"6c":      {Symbol: "6c", DecimalPlaces: 5, TickSize: 0.00005, TickValue: 5.0, Rounding: RoundHalfTick},
	"6j":      {Symbol: "6j", DecimalPlaces: 7, TickSize: 0.0000005, TickValue: 6.25, Rounding: RoundHalfTick},
	"6n":      {Symbol: "6n", DecimalPlaces: 5, TickSize: 0.00005, TickValue: 5.0, Rounding: RoundHalfTick},
	"6btc":    {Symbol: "6btc", DecimalPlaces: 0, TickSize: 5.0, TickValue: 25.0, Rounding: RoundNearestTick},
}

// SpecFor devuelve la especificación del instrumento dado.
func SpecFor(symbol string) (InstrumentSpec, error) {
	spec, ok := instruments[symbol]
	if !ok {
		return InstrumentSpec{}, fmt.Errorf("domain.SpecFor: unknown instrument %q", symbol)
	}
	return spec, nil
}
