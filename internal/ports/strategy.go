package ports

import "github.com/alejandrodnm/stratsweep/internal/domain"

// Strategy es la capacidad enchufable que aporta la lógica de señal. El
// engine no implementa ninguna estrategia concreta: solo consume este
// contrato de forma determinista.
type Strategy interface {
	// Name identifica la estrategia dentro de una evaluación. Con varias
	// estrategias registradas, la precedencia de entrada es el orden de
	// declaración (first-declared-wins).
	Name() string

	// Requirements declara el set de valores pre-trade que la estrategia
	// necesita antes de decidir una entrada. Los tags son únicos.
	Requirements() []domain.DataRequirement

	// CheckEntry evalúa el predicado de entrada contra los valores
	// resueltos y la observación actual. Devuelve false si no hay señal o
	// si los valores necesarios quedaron sin resolver.
	CheckEntry(values domain.ResolvedValueSet, obs domain.MarketObservation) (domain.EntrySignal, bool)

	// SuppliesEntryTimestamp indica que la estrategia aporta su propio
	// entry timestamp. Si es true y la señal llega sin timestamp, el
	// engine cierra el ciclo como NoEntry en vez de inventar uno.
	SuppliesEntryTimestamp() bool
}

// Decision es el veredicto de la política de pivoting para un instante.
type Decision int

const (
	DecisionHold Decision = iota
	DecisionExit
	DecisionSwitch
)

// StrategySignal es una señal de entrada etiquetada con su estrategia de
// origen, tal como la ve la política de decisión.
type StrategySignal struct {
	Strategy string
	Signal   domain.EntrySignal
}

// PivotDecision es el resultado de consultar la política: hold, exit, o
// switch-to(Target).
type PivotDecision struct {
	Decision Decision
	Target   string // estrategia destino cuando Decision == DecisionSwitch
}

// DecisionPolicy gobierna el pivoting entre estrategias. Es externa a la
// máquina de estados y se inyecta como capacidad: dado el estado actual (la
// estrategia activa, "" si Idle) y las señales del instante, decide.
type DecisionPolicy interface {
	Decide(active string, signals []StrategySignal) PivotDecision
}
