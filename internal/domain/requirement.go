package domain

import "fmt"

// RequirementKind distingue las dos familias de valores pre-trade.
type RequirementKind int

const (
	// ReqCandleAtOffset pide la vela en el offset semántico n dentro de la
	// ventana pre-trade (0 = el ancla de la ventana).
	ReqCandleAtOffset RequirementKind = iota

	// ReqIndicator pide un escalar derivado de la ventana pre-trade.
	ReqIndicator
)

// IndicatorKind identifica el indicador escalar pedido.
type IndicatorKind string

const (
	IndicatorLastPrice   IndicatorKind = "last_price"
	IndicatorHighestHigh IndicatorKind = "highest_high"
	IndicatorLowestLow   IndicatorKind = "lowest_low"
)

// DataRequirement es la referencia etiquetada a una observación semántica
// que una estrategia necesita antes de entrar. La estrategia declara su set
// de requirements; el tag es la clave en el ResolvedValueSet.
type DataRequirement struct {
	Kind      RequirementKind
	Offset    int           // solo para ReqCandleAtOffset
	Indicator IndicatorKind // solo para ReqIndicator
}

// Tag devuelve la clave única del requirement dentro del set resuelto.
func (r DataRequirement) Tag() string {
	if r.Kind == ReqIndicator {
		return fmt.Sprintf("indicator:%s", r.Indicator)
	}
	return fmt.Sprintf("candle:%d", r.Offset)
}

// CandleAt construye un requirement de vela en el offset dado.
func CandleAt(offset int) DataRequirement {
	return DataRequirement{Kind: ReqCandleAtOffset, Offset: offset}
}

// Indicator construye un requirement de indicador escalar.
func Indicator(kind IndicatorKind) DataRequirement {
	return DataRequirement{Kind: ReqIndicator, Indicator: kind}
}

// ResolvedValue es el valor (posiblemente vacío) de un requirement resuelto.
// La ausencia es representable y se propaga: nunca es un error.
type ResolvedValue struct {
	Observation *MarketObservation
	Scalar      *float64
}

// IsEmpty devuelve true si el requirement quedó sin resolver.
func (v ResolvedValue) IsEmpty() bool {
	return v.Observation == nil && v.Scalar == nil
}

// ResolvedValueSet mapea cada requirement declarado a su valor resuelto.
// Invariante: todo requirement declarado tiene exactamente una entrada,
// posiblemente vacía.
type ResolvedValueSet map[string]ResolvedValue

// Candle devuelve la observación resuelta para el requirement dado.
func (s ResolvedValueSet) Candle(r DataRequirement) (*MarketObservation, bool) {
	v, ok := s[r.Tag()]
	if !ok || v.Observation == nil {
		return nil, false
	}
	return v.Observation, true
}

// Scalar devuelve el escalar resuelto para el requirement dado.
func (s ResolvedValueSet) Scalar(r DataRequirement) (float64, bool) {
	v, ok := s[r.Tag()]
	if !ok || v.Scalar == nil {
		return 0, false
	}
	return *v.Scalar, true
}

// Complete devuelve true si todos los requirements dados resolvieron a un
// valor no vacío.
func (s ResolvedValueSet) Complete(reqs []DataRequirement) bool {
	for _, r := range reqs {
		v, ok := s[r.Tag()]
		if !ok || v.IsEmpty() {
			return false
		}
	}
	return true
}
