package strategy

// counter.go — estrategia contraria: desvanece la ruptura de la vela ancla.
//
// Usa el requirement de vela en offset para anclarse a una observación
// semántica concreta de la ventana previa (con el fallback de huecos del
// resolver) y aporta su propio entry timestamp: si el ancla no resuelve, el
// ciclo termina en NoEntry en vez de inventar un timestamp.

import (
	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// Counter implementa ports.Strategy.
type Counter struct {
	spec         domain.InstrumentSpec
	anchorOffset int     // offset semántico de la vela ancla en la ventana previa
	stopTicks    float64 // distancia del stop en ticks
	tpTicks      float64 // distancia del target en ticks
}

// NewCounter construye la estrategia contraria.
func NewCounter(spec domain.InstrumentSpec, anchorOffset int, stopTicks, tpTicks float64) *Counter {
	return &Counter{spec: spec, anchorOffset: anchorOffset, stopTicks: stopTicks, tpTicks: tpTicks}
}

func (c *Counter) Name() string { return "counter" }

func (c *Counter) Requirements() []domain.DataRequirement {
	return []domain.DataRequirement{domain.CandleAt(c.anchorOffset)}
}

// SuppliesEntryTimestamp: esta estrategia decide su propio timestamp de
// entrada (el cierre de la vela que tocó el extremo del ancla).
func (c *Counter) SuppliesEntryTimestamp() bool { return true }

// CheckEntry dispara contra los extremos de la vela ancla: short al tocar su
// máximo, long al tocar su mínimo.
func (c *Counter) CheckEntry(values domain.ResolvedValueSet, obs domain.MarketObservation) (domain.EntrySignal, bool) {
	anchor, ok := values.Candle(domain.CandleAt(c.anchorOffset))
	if !ok {
		return domain.EntrySignal{}, false
	}

	stop := c.stopTicks * c.spec.TickSize
	target := c.tpTicks * c.spec.TickSize

	if obs.High != nil && *obs.High >= *anchor.High {
		entry := *anchor.High
		return domain.EntrySignal{
			Direction:  domain.Short,
			EntryPrice: entry,
			StopLoss:   entry + stop,
			TakeProfit: entry - target,
			EntryTS:    obs.CloseTS,
		}, true
	}

	if obs.Low != nil && *obs.Low <= *anchor.Low {
		entry := *anchor.Low
		return domain.EntrySignal{
			Direction:  domain.Long,
			EntryPrice: entry,
			StopLoss:   entry - stop,
			TakeProfit: entry + target,
			EntryTS:    obs.CloseTS,
		}, true
	}

	return domain.EntrySignal{}, false
}

var _ ports.Strategy = (*Counter)(nil)
