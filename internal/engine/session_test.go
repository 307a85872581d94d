package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// stubStrategy es una estrategia de test con predicado inyectable.
type stubStrategy struct {
	name     string
	reqs     []domain.DataRequirement
	supplies bool
	check    func(domain.ResolvedValueSet, domain.MarketObservation) (domain.EntrySignal, bool)
}

func (s stubStrategy) Name() string                           { return s.name }
func (s stubStrategy) Requirements() []domain.DataRequirement { return s.reqs }
func (s stubStrategy) SuppliesEntryTimestamp() bool           { return s.supplies }
func (s stubStrategy) CheckEntry(v domain.ResolvedValueSet, o domain.MarketObservation) (domain.EntrySignal, bool) {
	if s.check == nil {
		return domain.EntrySignal{}, false
	}
	return s.check(v, o)
}

// policyFunc adapta una función a ports.DecisionPolicy.
type policyFunc func(active string, signals []ports.StrategySignal) ports.PivotDecision

func (f policyFunc) Decide(active string, signals []ports.StrategySignal) ports.PivotDecision {
	return f(active, signals)
}

var holdPolicy = policyFunc(func(string, []ports.StrategySignal) ports.PivotDecision {
	return ports.PivotDecision{Decision: ports.DecisionHold}
})

// longAbove entra long cuando el High toca level.
func longAbove(name string, level, stop, target float64) stubStrategy {
	return stubStrategy{
		name: name,
		check: func(_ domain.ResolvedValueSet, o domain.MarketObservation) (domain.EntrySignal, bool) {
			if o.High == nil || *o.High < level {
				return domain.EntrySignal{}, false
			}
			return domain.EntrySignal{
				Direction:  domain.Long,
				EntryPrice: level,
				StopLoss:   stop,
				TakeProfit: target,
			}, true
		},
	}
}

func fixture(t *testing.T, strategies []ports.Strategy, policy ports.DecisionPolicy, obs []domain.MarketObservation) sessionInput {
	t.Helper()
	spec, err := domain.SpecFor("btcusdt")
	require.NoError(t, err)

	resolved := make(map[string]domain.ResolvedValueSet, len(strategies))
	for _, s := range strategies {
		resolved[s.Name()] = Resolve(s.Requirements(), nil, t0)
	}

	end := t0
	if len(obs) > 0 {
		end = obs[len(obs)-1].CloseTS
	}
	return sessionInput{
		spec:       spec,
		strategies: strategies,
		policy:     policy,
		resolved:   resolved,
		window:     SessionWindow{Start: t0, End: end, Bar: time.Minute},
		obs:        obs,
	}
}

func TestRunSession_TakeProfitWinner(t *testing.T) {
	strat := longAbove("s", 100, 95, 110)
	obs := []domain.MarketObservation{
		bar(0, 99, 101, 98, 100),   // dispara la entrada
		bar(1, 100, 111, 100, 109), // cruza el target
	}

	records, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, domain.OutcomeWinner, r.Outcome)
	assert.Equal(t, domain.ExitTakeProfit, r.Reason)
	assert.Equal(t, 100.0, r.EntryPrice)
	// la salida se valora al nivel, no al extremo de la vela
	assert.Equal(t, 110.0, r.ExitPrice)
	assert.Equal(t, 1000.0, r.Ticks)
	assert.Equal(t, 1000.0, r.Dollars)
	assert.Equal(t, obs[0].CloseTS, r.EntryTS)
	assert.Equal(t, obs[1].CloseTS, r.ExitTS)
}

func TestRunSession_EntryBarNotEvaluatedAgainstOwnLevels(t *testing.T) {
	strat := longAbove("s", 100, 95, 110)
	// la vela de entrada ya supera el target: no puede salir en su propia vela
	obs := []domain.MarketObservation{
		bar(0, 99, 115, 98, 105),
		bar(1, 105, 106, 104, 105),
	}

	records, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)

	// sin cruce en la vela 1 → timeout al final de la sesión
	assert.Equal(t, domain.ExitTimeout, records[0].Reason)
	assert.Equal(t, domain.OutcomeTimeoutWinner, records[0].Outcome)
	assert.Equal(t, 105.0, records[0].ExitPrice)
}

func TestRunSession_StopLossFirstWhenBothHit(t *testing.T) {
	strat := longAbove("s", 100, 95, 110)
	// la vela 1 toca stop y target: se asume el peor caso
	obs := []domain.MarketObservation{
		bar(0, 99, 101, 98, 100),
		bar(1, 100, 112, 94, 100),
	}

	records, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, domain.OutcomeLoser, records[0].Outcome)
	assert.Equal(t, domain.ExitStopLoss, records[0].Reason)
	assert.Equal(t, 95.0, records[0].ExitPrice)
	assert.Equal(t, -500.0, records[0].Dollars)
}

func TestRunSession_TimeoutLoser(t *testing.T) {
	strat := longAbove("s", 100, 95, 110)
	obs := []domain.MarketObservation{
		bar(0, 99, 101, 98, 100),
		bar(1, 100, 101, 97, 98), // ni stop ni target
	}

	records, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, domain.OutcomeTimeoutLoser, records[0].Outcome)
	assert.Equal(t, domain.ExitTimeout, records[0].Reason)
	assert.Equal(t, 98.0, records[0].ExitPrice)
}

func TestRunSession_IndeterminateOnTruncatedSession(t *testing.T) {
	strat := longAbove("s", 100, 95, 110)
	obs := []domain.MarketObservation{
		bar(0, 99, 101, 98, 100),
		bar(1, 100, 101, 99, 100),
	}

	in := fixture(t, []ports.Strategy{strat}, holdPolicy, obs)
	// la sesión debía durar mucho más: el hueco llega hasta el final
	in.window.End = t0.Add(8 * time.Hour)

	records, err := runSession(in)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, domain.OutcomeIndeterminate, r.Outcome)
	assert.Equal(t, domain.ExitDataGap, r.Reason)
	// sin precio de salida no hay campos monetarios
	assert.Equal(t, 0.0, r.ExitPrice)
	assert.Equal(t, 0.0, r.Dollars)
}

func TestRunSession_NoEntry(t *testing.T) {
	strat := longAbove("s", 1000, 995, 1010) // nunca dispara
	obs := []domain.MarketObservation{bar(0, 99, 101, 98, 100)}

	records, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.OutcomeNoEntry, records[0].Outcome)
}

func TestRunSession_UnresolvedAndSuppliesTimestamp_NoEntry(t *testing.T) {
	strat := stubStrategy{
		name:     "s",
		reqs:     []domain.DataRequirement{domain.CandleAt(0)},
		supplies: true,
		check: func(domain.ResolvedValueSet, domain.MarketObservation) (domain.EntrySignal, bool) {
			t.Fatal("ineligible strategy must never be evaluated")
			return domain.EntrySignal{}, false
		},
	}
	obs := []domain.MarketObservation{bar(0, 99, 101, 98, 100)}

	records, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.OutcomeNoEntry, records[0].Outcome)
}

func TestRunSession_PivotExitAtClose(t *testing.T) {
	strat := longAbove("s", 100, 95, 110)
	exitPolicy := policyFunc(func(active string, _ []ports.StrategySignal) ports.PivotDecision {
		if active == "" {
			return ports.PivotDecision{Decision: ports.DecisionHold}
		}
		return ports.PivotDecision{Decision: ports.DecisionExit}
	})
	obs := []domain.MarketObservation{
		bar(0, 99, 101, 98, 100),
		bar(1, 100, 105, 100, 104),
	}

	records, err := runSession(fixture(t, []ports.Strategy{strat}, exitPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, domain.ExitPivot, records[0].Reason)
	assert.Equal(t, domain.OutcomeWinner, records[0].Outcome)
	assert.Equal(t, 104.0, records[0].ExitPrice)
}

func TestRunSession_SwitchReentersSameObservation(t *testing.T) {
	a := longAbove("a", 100, 95, 110)
	b := stubStrategy{
		name: "b",
		check: func(_ domain.ResolvedValueSet, o domain.MarketObservation) (domain.EntrySignal, bool) {
			if o.Low == nil || *o.Low > 99 {
				return domain.EntrySignal{}, false
			}
			return domain.EntrySignal{
				Direction:  domain.Short,
				EntryPrice: 103,
				StopLoss:   106,
				TakeProfit: 98,
			}, true
		},
	}
	preferB := policyFunc(func(active string, signals []ports.StrategySignal) ports.PivotDecision {
		if active == "b" {
			return ports.PivotDecision{Decision: ports.DecisionHold}
		}
		for _, s := range signals {
			if s.Strategy == "b" {
				return ports.PivotDecision{Decision: ports.DecisionSwitch, Target: "b"}
			}
		}
		return ports.PivotDecision{Decision: ports.DecisionHold}
	})

	obs := []domain.MarketObservation{
		bar(0, 99, 101, 100, 100),  // entra "a"
		bar(1, 100, 105, 98, 104),  // "b" señala: pivot en la misma observación
		bar(2, 104, 104, 100, 101), // "b" sigue vivo
	}

	records, err := runSession(fixture(t, []ports.Strategy{a, b}, preferB, obs))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// el trade de "a" cierra al precio de entrada de "b", causa pivot
	assert.Equal(t, domain.ExitPivot, records[0].Reason)
	assert.Equal(t, 103.0, records[0].ExitPrice)
	assert.Equal(t, domain.OutcomeWinner, records[0].Outcome)

	// "b" reentra en la misma observación y liquida por timeout al final
	assert.Equal(t, domain.ExitTimeout, records[1].Reason)
	assert.Equal(t, domain.Short, records[1].Direction)
	assert.Equal(t, 103.0, records[1].EntryPrice)
	assert.Equal(t, 101.0, records[1].ExitPrice)
	assert.Equal(t, domain.OutcomeTimeoutWinner, records[1].Outcome)
}

func TestRunSession_DeclarationOrderPrecedence(t *testing.T) {
	// ambas disparan en la vela 0: gana la primera declarada
	a := longAbove("a", 100, 95, 110)
	b := longAbove("b", 100, 90, 120)
	obs := []domain.MarketObservation{
		bar(0, 99, 101, 98, 100),
		bar(1, 100, 111, 100, 109),
	}

	records, err := runSession(fixture(t, []ports.Strategy{a, b}, holdPolicy, obs))
	require.NoError(t, err)
	require.Len(t, records, 1)
	// sale al target de "a" (110), no al de "b"
	assert.Equal(t, 110.0, records[0].ExitPrice)
}

func TestRunSession_InvalidSignalIsInvariantViolation(t *testing.T) {
	strat := stubStrategy{
		name: "s",
		check: func(domain.ResolvedValueSet, domain.MarketObservation) (domain.EntrySignal, bool) {
			// long con stop por encima de la entrada: incoherente
			return domain.EntrySignal{
				Direction:  domain.Long,
				EntryPrice: 100,
				StopLoss:   105,
				TakeProfit: 110,
			}, true
		},
	}
	obs := []domain.MarketObservation{bar(0, 99, 101, 98, 100)}

	_, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	assert.Error(t, err)
}

func TestRunSession_Deterministic(t *testing.T) {
	strat := longAbove("s", 100, 95, 110)
	obs := []domain.MarketObservation{
		bar(0, 99, 101, 98, 100),
		bar(1, 100, 105, 96, 97),
		bar(2, 97, 112, 97, 109),
	}

	first, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)
	second, err := runSession(fixture(t, []ports.Strategy{strat}, holdPolicy, obs))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
