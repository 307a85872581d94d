package strategy

import (
	"fmt"
	"strings"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/engine"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// Factory devuelve la StrategyFactory estándar del repo. El campo Strategy
// de la configuración nombra las estrategias separadas por '+' y el orden de
// declaración fija la precedencia de entrada ("breakout+counter").
func Factory() engine.StrategyFactory {
	return func(c domain.CandidateConfiguration, spec domain.InstrumentSpec) ([]ports.Strategy, error) {
		names := strings.Split(c.Strategy, "+")
		out := make([]ports.Strategy, 0, len(names))
		for _, name := range names {
			switch strings.TrimSpace(name) {
			case "breakout":
				out = append(out, NewBreakout(
					spec,
					c.Param("offset_ticks", 5),
					c.Param("stop_ratio", 0.5),
					c.Param("tp_ratio", 1.0),
				))
			case "counter":
				out = append(out, NewCounter(
					spec,
					int(c.Param("anchor_offset", 0)),
					c.Param("stop_ticks", 20),
					c.Param("tp_ticks", 40),
				))
			default:
				return nil, fmt.Errorf("strategy.Factory: unknown strategy %q", name)
			}
		}
		return out, nil
	}
}

// PolicyFor devuelve la política de decisión nombrada: "choose_first" o
// "prefer:<estrategia>".
func PolicyFor(name string) (ports.DecisionPolicy, error) {
	switch {
	case name == "" || name == "choose_first":
		return ChooseFirst{}, nil
	case strings.HasPrefix(name, "prefer:"):
		return Priority{Preferred: strings.TrimPrefix(name, "prefer:")}, nil
	default:
		return nil, fmt.Errorf("strategy.PolicyFor: unknown policy %q", name)
	}
}
