package engine

// resolver.go — resolución de valores pre-trade con fallback acotado.
//
// Los feeds históricos reales tienen huecos puntuales (minutos sueltos que
// faltan) que no deben abortar una evaluación por lo demás sana. Huecos
// grandes (horas o días) sí tienen que aflorar como requirement sin resolver
// en vez de sustituir silenciosamente datos viejos. El fallback se acota a la
// ventana de offsets declarada: nunca busca antes del offset 0.

import (
	"time"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// Resolve produce el ResolvedValueSet para los requirements dados sobre una
// ventana pre-trade de observaciones. Solo se consideran observaciones
// cerradas en o antes de asOf. Función pura: sin efectos, nunca entra en
// pánico por datos ausentes — la ausencia es representable.
//
// Para un requirement de vela en offset n: se busca la observación en ese
// offset exacto; si falta o está internamente incompleta (cualquier campo
// OHLC nulo), se retrocede n-1, n-2, … hasta el offset 0 y se devuelve la
// primera observación completamente válida. Si no hay ninguna, el
// requirement resuelve vacío.
func Resolve(reqs []domain.DataRequirement, obs []domain.MarketObservation, asOf time.Time) domain.ResolvedValueSet {
	window := truncateAsOf(obs, asOf)

	set := make(domain.ResolvedValueSet, len(reqs))
	for _, r := range reqs {
		switch r.Kind {
		case domain.ReqCandleAtOffset:
			set[r.Tag()] = resolveCandle(window, r.Offset)
		case domain.ReqIndicator:
			set[r.Tag()] = resolveIndicator(window, r.Indicator)
		}
	}
	return set
}

// truncateAsOf recorta la ventana a las observaciones cerradas en o antes
// de asOf. La serie llega ordenada, así que basta con cortar por el final.
func truncateAsOf(obs []domain.MarketObservation, asOf time.Time) []domain.MarketObservation {
	end := len(obs)
	for end > 0 && obs[end-1].CloseTS.After(asOf) {
		end--
	}
	return obs[:end]
}

func resolveCandle(window []domain.MarketObservation, offset int) domain.ResolvedValue {
	if offset < 0 {
		return domain.ResolvedValue{}
	}
	// fallback acotado: offset, offset-1, …, 0 — nunca antes del ancla.
	for i := offset; i >= 0; i-- {
		if i >= len(window) {
			continue
		}
		if window[i].IsComplete() {
			o := window[i]
			return domain.ResolvedValue{Observation: &o}
		}
	}
	return domain.ResolvedValue{}
}

// resolveIndicator calcula el escalar sobre la ventana completa. Cada campo
// se evalúa por presencia individual: una vela sin High igualmente aporta su
// Low al mínimo.
func resolveIndicator(window []domain.MarketObservation, kind domain.IndicatorKind) domain.ResolvedValue {
	switch kind {
	case domain.IndicatorLastPrice:
		for i := len(window) - 1; i >= 0; i-- {
			if window[i].Close != nil {
				return domain.ResolvedValue{Scalar: domain.Float64(*window[i].Close)}
			}
		}
	case domain.IndicatorHighestHigh:
		var best *float64
		for _, o := range window {
			if o.High != nil && (best == nil || *o.High > *best) {
				v := *o.High
				best = &v
			}
		}
		if best != nil {
			return domain.ResolvedValue{Scalar: best}
		}
	case domain.IndicatorLowestLow:
		var best *float64
		for _, o := range window {
			if o.Low != nil && (best == nil || *o.Low < *best) {
				v := *o.Low
				best = &v
			}
		}
		if best != nil {
			return domain.ResolvedValue{Scalar: best}
		}
	}
	return domain.ResolvedValue{}
}
