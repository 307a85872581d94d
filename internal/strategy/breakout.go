package strategy

// breakout.go — estrategia de ruptura del rango de la sesión previa.
//
// Entra long si el precio supera el máximo previo más un offset en ticks, y
// short bajo el mínimo previo menos el offset. Stop y target se derivan del
// rango previo. Es la estrategia de ejemplo del repo: el engine solo la ve a
// través del contrato ports.Strategy.

import (
	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// Breakout implementa ports.Strategy.
type Breakout struct {
	spec        domain.InstrumentSpec
	offsetTicks float64 // ticks añadidos al extremo previo antes de disparar
	stopRatio   float64 // fracción del rango previo hasta el stop
	tpRatio     float64 // múltiplo del rango previo hasta el target
}

// NewBreakout construye la estrategia para un instrumento concreto.
func NewBreakout(spec domain.InstrumentSpec, offsetTicks, stopRatio, tpRatio float64) *Breakout {
	return &Breakout{spec: spec, offsetTicks: offsetTicks, stopRatio: stopRatio, tpRatio: tpRatio}
}

func (b *Breakout) Name() string { return "breakout" }

// Requirements declara los valores pre-trade: extremos y último precio de la
// ventana previa.
func (b *Breakout) Requirements() []domain.DataRequirement {
	return []domain.DataRequirement{
		domain.Indicator(domain.IndicatorHighestHigh),
		domain.Indicator(domain.IndicatorLowestLow),
		domain.Indicator(domain.IndicatorLastPrice),
	}
}

// SuppliesEntryTimestamp: el engine puede sintetizar el timestamp con la
// observación que disparó la entrada.
func (b *Breakout) SuppliesEntryTimestamp() bool { return false }

// CheckEntry dispara cuando la vela actual toca el nivel de ruptura. Con
// requirements sin resolver no hay señal — la ausencia se propaga, no se
// adivina.
func (b *Breakout) CheckEntry(values domain.ResolvedValueSet, obs domain.MarketObservation) (domain.EntrySignal, bool) {
	hi, okHi := values.Scalar(domain.Indicator(domain.IndicatorHighestHigh))
	lo, okLo := values.Scalar(domain.Indicator(domain.IndicatorLowestLow))
	if !okHi || !okLo {
		return domain.EntrySignal{}, false
	}

	rng := hi - lo
	if rng <= 0 {
		return domain.EntrySignal{}, false
	}
	offset := b.offsetTicks * b.spec.TickSize

	longEntry := hi + offset
	if obs.High != nil && *obs.High >= longEntry {
		return domain.EntrySignal{
			Direction:  domain.Long,
			EntryPrice: longEntry,
			StopLoss:   longEntry - b.stopRatio*rng,
			TakeProfit: longEntry + b.tpRatio*rng,
		}, true
	}

	shortEntry := lo - offset
	if obs.Low != nil && *obs.Low <= shortEntry {
		return domain.EntrySignal{
			Direction:  domain.Short,
			EntryPrice: shortEntry,
			StopLoss:   shortEntry + b.stopRatio*rng,
			TakeProfit: shortEntry - b.tpRatio*rng,
		}, true
	}

	return domain.EntrySignal{}, false
}

var _ ports.Strategy = (*Breakout)(nil)
