package strategy

// policy.go — políticas de decisión de pivoting.
//
// La máquina de estados no decide pivots: delega en una política inyectada.
// ChooseFirst nunca pivota; Priority cede el trade activo a la estrategia
// preferida cuando esta señala.

import "github.com/alejandrodnm/stratsweep/internal/ports"

// ChooseFirst mantiene el trade activo hasta su salida natural. La entrada
// desde Idle ya la resuelve la precedencia de declaración del engine.
type ChooseFirst struct{}

func (ChooseFirst) Decide(active string, signals []ports.StrategySignal) ports.PivotDecision {
	return ports.PivotDecision{Decision: ports.DecisionHold}
}

// Priority pivota hacia la estrategia preferida: si está señalando y no es
// la activa, el trade vigente se cierra y se reentra en el mismo instante.
type Priority struct {
	Preferred string
}

func (p Priority) Decide(active string, signals []ports.StrategySignal) ports.PivotDecision {
	if active == p.Preferred {
		return ports.PivotDecision{Decision: ports.DecisionHold}
	}
	for _, s := range signals {
		if s.Strategy == p.Preferred {
			return ports.PivotDecision{Decision: ports.DecisionSwitch, Target: p.Preferred}
		}
	}
	return ports.PivotDecision{Decision: ports.DecisionHold}
}

var (
	_ ports.DecisionPolicy = ChooseFirst{}
	_ ports.DecisionPolicy = Priority{}
)
