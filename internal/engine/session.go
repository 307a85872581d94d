package engine

// session.go — una sesión acotada (un día de trading) de la máquina de
// estados, consumiendo el feed de observaciones instante a instante.
//
// Determinismo: para una secuencia fija de observaciones y un set fijo de
// estrategias, la secuencia de estados y el outcome terminal son
// reproducibles bit a bit. Ninguna decisión depende de reloj de pared, de
// orden de iteración de maps ni de scheduling de goroutines.

import (
	"fmt"
	"math"
	"time"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// SessionWindow delimita la sesión: [Start, End) con velas de duración Bar.
// End es el cierre esperado; si los datos terminan más de una vela antes,
// la sesión sufrió pérdida total de datos.
type SessionWindow struct {
	Start time.Time
	End   time.Time
	Bar   time.Duration
}

type sessionInput struct {
	spec       domain.InstrumentSpec
	strategies []ports.Strategy
	policy     ports.DecisionPolicy
	resolved   map[string]domain.ResolvedValueSet // por nombre de estrategia
	window     SessionWindow
	obs        []domain.MarketObservation
}

// runSession conduce la máquina Idle → Active → Exiting → Closed sobre la
// sesión y devuelve los registros finalizados (uno por ciclo; un pivot
// produce varios). El error solo señala violaciones de invariantes — los
// huecos de datos y la falta de señal se absorben en el modelo de datos.
func runSession(in sessionInput) ([]domain.TradePnL, error) {
	eligible := eligibleStrategies(in.strategies, in.resolved)
	if len(eligible) == 0 {
		// Requirements sin resolver y la estrategia exige aportar su
		// propio timestamp: directo a Closed(NoEntry), sin inventar nada.
		return []domain.TradePnL{NoEntryRecord()}, nil
	}

	var (
		records []domain.TradePnL
		state   TradeState = Idle{}
		entered            = -1 // índice de la observación de entrada
	)

	for i, o := range in.obs {
		switch st := state.(type) {
		case Idle:
			signals := collectSignals(eligible, in.resolved, o, "")
			if len(signals) == 0 {
				continue
			}
			// precedencia fija: gana la primera declarada.
			next, err := activate(in.spec, signals[0], eligible, o)
			if err != nil {
				return nil, err
			}
			state = next
			entered = i

		case Active:
			// primero el cruce de stop/target con la vela actual; la vela
			// de entrada no se evalúa contra sus propios niveles.
			if i > entered {
				if fill, reason, ok := crossExit(st.Trade, o); ok {
					closed := st.ExitAt(reason, fill.Price, fill.TS).Close(in.spec)
					records = append(records, closed.Record)
					state = closed.Reset()
					continue
				}
			}

			signals := collectSignals(eligible, in.resolved, o, st.Strategy)
			pd := in.policy.Decide(st.Strategy, signals)
			switch pd.Decision {
			case ports.DecisionExit:
				if o.Close == nil {
					continue // sin precio no hay salida valorable
				}
				closed := st.ExitAt(domain.ExitPivot, *o.Close, o.CloseTS).Close(in.spec)
				records = append(records, closed.Record)
				state = closed.Reset()

			case ports.DecisionSwitch:
				target, ok := findSignal(signals, pd.Target)
				if !ok {
					continue
				}
				// cierre por pivot y reentrada en el mismo instante: no se
				// salta ninguna observación.
				closed := st.ExitAt(domain.ExitPivot, target.Signal.EntryPrice, signalTS(target.Signal, o)).Close(in.spec)
				records = append(records, closed.Record)
				next, err := activate(in.spec, target, eligible, o)
				if err != nil {
					return nil, err
				}
				state = next
				entered = i
			}
		}
	}

	// fin de sesión
	switch st := state.(type) {
	case Idle:
		if len(records) == 0 {
			records = append(records, NoEntryRecord())
		}
	case Active:
		records = append(records, settleOpen(in, st).Record)
	}

	return records, nil
}

// settleOpen cierra un trade que sigue vivo al agotarse las observaciones:
// timeout con el último cierre usable, o Indeterminate si la sesión perdió
// los datos restantes (más de una vela entre el último cierre y End).
func settleOpen(in sessionInput, st Active) Closed {
	for i := len(in.obs) - 1; i >= 0; i-- {
		o := in.obs[i]
		if o.Close == nil {
			continue
		}
		if in.window.End.Sub(o.CloseTS) > in.window.Bar {
			break // el hueco llega hasta el fin de la sesión
		}
		return st.ExitAt(domain.ExitTimeout, *o.Close, o.CloseTS).Close(in.spec)
	}
	return st.ExitDataGap().Close(in.spec)
}

// eligibleStrategies filtra las estrategias que pueden producir una entrada
// legítima en esta sesión. Una estrategia con requirements sin resolver que
// además exige aportar su propio entry timestamp queda fuera.
func eligibleStrategies(strategies []ports.Strategy, resolved map[string]domain.ResolvedValueSet) []ports.Strategy {
	out := make([]ports.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if !resolved[s.Name()].Complete(s.Requirements()) && s.SuppliesEntryTimestamp() {
			continue
		}
		out = append(out, s)
	}
	return out
}

// collectSignals evalúa los predicados de entrada en orden de declaración,
// saltando la estrategia actualmente activa.
func collectSignals(eligible []ports.Strategy, resolved map[string]domain.ResolvedValueSet, o domain.MarketObservation, active string) []ports.StrategySignal {
	var out []ports.StrategySignal
	for _, s := range eligible {
		if s.Name() == active {
			continue
		}
		if sig, ok := s.CheckEntry(resolved[s.Name()], o); ok {
			out = append(out, ports.StrategySignal{Strategy: s.Name(), Signal: sig})
		}
	}
	return out
}

// activate valida la señal y transiciona Idle → Active. Una señal
// inconsistente es una violación de invariante: fatal para esta evaluación,
// sin tocar a los workers hermanos.
func activate(spec domain.InstrumentSpec, ss ports.StrategySignal, eligible []ports.Strategy, o domain.MarketObservation) (Active, error) {
	sig := ss.Signal
	if sig.EntryTS.IsZero() {
		if strategySupplies(eligible, ss.Strategy) {
			return Active{}, fmt.Errorf("engine.activate: strategy %q declared it supplies the entry timestamp but produced none", ss.Strategy)
		}
		sig.EntryTS = o.CloseTS
	}
	if err := checkSignal(sig); err != nil {
		return Active{}, fmt.Errorf("engine.activate: strategy %q: %w", ss.Strategy, err)
	}
	return Idle{}.Activate(spec, ss.Strategy, sig), nil
}

func strategySupplies(eligible []ports.Strategy, name string) bool {
	for _, s := range eligible {
		if s.Name() == name {
			return s.SuppliesEntryTimestamp()
		}
	}
	return false
}

// checkSignal verifica la coherencia mínima de una señal: precios finitos y
// stop/target al lado correcto de la entrada.
func checkSignal(sig domain.EntrySignal) error {
	for _, px := range []float64{sig.EntryPrice, sig.StopLoss, sig.TakeProfit} {
		if math.IsNaN(px) || math.IsInf(px, 0) || px <= 0 {
			return fmt.Errorf("non-finite or non-positive price in entry signal")
		}
	}
	if sig.Direction == domain.Long && !(sig.StopLoss < sig.EntryPrice && sig.EntryPrice < sig.TakeProfit) {
		return fmt.Errorf("long signal with inverted stop/target")
	}
	if sig.Direction == domain.Short && !(sig.TakeProfit < sig.EntryPrice && sig.EntryPrice < sig.StopLoss) {
		return fmt.Errorf("short signal with inverted stop/target")
	}
	return nil
}

// crossExit detecta el cruce de stop-loss o take-profit dentro de la vela.
// Si la vela toca ambos niveles el resultado no es claro: se asume el peor
// caso (stop-loss primero).
func crossExit(t domain.Trade, o domain.MarketObservation) (ExitFill, domain.ExitReason, bool) {
	var slHit, tpHit bool
	if t.Direction == domain.Long {
		slHit = o.Low != nil && *o.Low <= t.StopLoss
		tpHit = o.High != nil && *o.High >= t.TakeProfit
	} else {
		slHit = o.High != nil && *o.High >= t.StopLoss
		tpHit = o.Low != nil && *o.Low <= t.TakeProfit
	}

	switch {
	case slHit:
		return ExitFill{Price: t.StopLoss, TS: o.CloseTS}, domain.ExitStopLoss, true
	case tpHit:
		return ExitFill{Price: t.TakeProfit, TS: o.CloseTS}, domain.ExitTakeProfit, true
	default:
		return ExitFill{}, domain.ExitNone, false
	}
}

func findSignal(signals []ports.StrategySignal, name string) (ports.StrategySignal, bool) {
	for _, s := range signals {
		if s.Strategy == name {
			return s, true
		}
	}
	return ports.StrategySignal{}, false
}

func signalTS(sig domain.EntrySignal, o domain.MarketObservation) time.Time {
	if sig.EntryTS.IsZero() {
		return o.CloseTS
	}
	return sig.EntryTS
}
