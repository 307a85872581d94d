package engine

// evaluator.go — evaluación end-to-end de una configuración candidata:
// fetch de observaciones → sesiones diarias (resolver → máquina de estados →
// valoración) → métricas agregadas y score.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// StrategyFactory materializa el set de estrategias de una configuración.
// Se inyecta desde fuera: el engine no conoce ninguna estrategia concreta.
type StrategyFactory func(c domain.CandidateConfiguration, spec domain.InstrumentSpec) ([]ports.Strategy, error)

// Engine evalúa configuraciones candidatas de forma independiente y
// determinista. Todo su estado es de solo lectura: una misma instancia se
// comparte entre workers sin locks.
type Engine struct {
	provider ports.MarketProvider
	factory  StrategyFactory
	policy   ports.DecisionPolicy
	bar      time.Duration
}

// New crea un Engine. bar es la duración de vela del feed (para detectar
// pérdida total de datos al final de una sesión); si es 0 usa un minuto.
func New(provider ports.MarketProvider, factory StrategyFactory, policy ports.DecisionPolicy, bar time.Duration) *Engine {
	if bar <= 0 {
		bar = time.Minute
	}
	return &Engine{provider: provider, factory: factory, policy: policy, bar: bar}
}

// Evaluate corre una configuración completa y devuelve su ScoredResult. Los
// fallos (provider, serie inválida, invariantes) quedan registrados en el
// resultado como categoría Failed — nunca tumban a los workers hermanos.
func (e *Engine) Evaluate(ctx context.Context, c domain.CandidateConfiguration) domain.ScoredResult {
	spec, err := domain.SpecFor(c.Instrument)
	if err != nil {
		return failed(c, err)
	}

	obs, err := e.provider.FetchObservations(ctx, c.Instrument, c.From, c.To)
	if err != nil {
		return failed(c, fmt.Errorf("engine.Evaluate: fetch observations: %w", err))
	}
	if err := domain.ValidateSeries(obs); err != nil {
		return failed(c, fmt.Errorf("engine.Evaluate: %w", err))
	}

	strategies, err := e.factory(c, spec)
	if err != nil {
		return failed(c, fmt.Errorf("engine.Evaluate: build strategies: %w", err))
	}

	days := splitDays(obs)
	span := maxSessionSpan(days)

	var (
		perf   domain.Performance
		ledger []domain.TradePnL
	)

	// la primera jornada solo siembra la ventana pre-trade de la segunda.
	for i := 1; i < len(days); i++ {
		pre, cur := days[i-1], days[i]

		resolved := make(map[string]domain.ResolvedValueSet, len(strategies))
		for _, s := range strategies {
			resolved[s.Name()] = Resolve(s.Requirements(), pre.obs, cur.start)
		}

		records, err := runSession(sessionInput{
			spec:       spec,
			strategies: strategies,
			policy:     e.policy,
			resolved:   resolved,
			window:     SessionWindow{Start: cur.start, End: cur.start.Add(span), Bar: e.bar},
			obs:        cur.obs,
		})
		if err != nil {
			return failed(c, fmt.Errorf("engine.Evaluate: session %s: %w", cur.start.Format("2006-01-02"), err))
		}

		for _, r := range records {
			perf.Add(r)
			ledger = append(ledger, r)
		}
	}

	slog.Debug("candidate evaluated",
		"candidate", c.ID,
		"instrument", c.Instrument,
		"sessions", max(0, len(days)-1),
		"trades", perf.Trades,
		"net", perf.NetDollars,
	)

	return domain.ScoredResult{
		Candidate: c,
		Score:     perf.Score(),
		Perf:      perf,
		Ledger:    ledger,
	}
}

func failed(c domain.CandidateConfiguration, err error) domain.ScoredResult {
	return domain.ScoredResult{Candidate: c, Err: err}
}

type tradingDay struct {
	start time.Time
	obs   []domain.MarketObservation
}

// splitDays corta la serie en jornadas UTC preservando el orden.
func splitDays(obs []domain.MarketObservation) []tradingDay {
	var days []tradingDay
	for _, o := range obs {
		day := o.OpenTS.UTC().Truncate(24 * time.Hour)
		if len(days) == 0 || !days[len(days)-1].start.Equal(day) {
			days = append(days, tradingDay{start: day})
		}
		last := &days[len(days)-1]
		last.obs = append(last.obs, o)
	}
	return days
}

// maxSessionSpan devuelve la duración de sesión más larga observada en la
// serie: es el cierre esperado contra el que se detecta la pérdida total de
// datos de una jornada truncada.
func maxSessionSpan(days []tradingDay) time.Duration {
	span := time.Duration(0)
	for _, d := range days {
		for i := len(d.obs) - 1; i >= 0; i-- {
			if !d.obs[i].CloseTS.IsZero() {
				if s := d.obs[i].CloseTS.Sub(d.start); s > span {
					span = s
				}
				break
			}
		}
	}
	if span == 0 {
		span = 24 * time.Hour
	}
	return span
}
