package domain

import "time"

// Direction es el sentido de un trade.
type Direction int

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

// ExitReason es la causa por la que un trade deja el estado Active.
type ExitReason int

const (
	ExitNone ExitReason = iota // ciclos sin entrada no tienen causa de salida
	ExitTakeProfit
	ExitStopLoss
	ExitTimeout
	ExitPivot
	ExitDataGap // pérdida total de datos hasta el fin de la sesión
)

func (r ExitReason) String() string {
	switch r {
	case ExitTakeProfit:
		return "take_profit"
	case ExitStopLoss:
		return "stop_loss"
	case ExitTimeout:
		return "timeout"
	case ExitPivot:
		return "pivot"
	case ExitDataGap:
		return "data_gap"
	default:
		return "none"
	}
}

// TradeOutcome clasifica el resultado final de un ciclo de trade.
// Indeterminate nunca se colapsa en Winner/Loser: un hueco de datos que
// hace incognoscible el resultado se reporta como categoría propia.
type TradeOutcome int

const (
	OutcomeWinner TradeOutcome = iota
	OutcomeLoser
	OutcomeTimeoutWinner
	OutcomeTimeoutLoser
	OutcomeNoEntry
	OutcomeIndeterminate
)

func (o TradeOutcome) String() string {
	switch o {
	case OutcomeWinner:
		return "winner"
	case OutcomeLoser:
		return "loser"
	case OutcomeTimeoutWinner:
		return "timeout_winner"
	case OutcomeTimeoutLoser:
		return "timeout_loser"
	case OutcomeNoEntry:
		return "no_entry"
	default:
		return "indeterminate"
	}
}

// IsTrade devuelve true si el outcome corresponde a un trade ejecutado con
// resultado conocido (entra en las estadísticas Winner/Loser).
func (o TradeOutcome) IsTrade() bool {
	switch o {
	case OutcomeWinner, OutcomeLoser, OutcomeTimeoutWinner, OutcomeTimeoutLoser:
		return true
	default:
		return false
	}
}

// EntrySignal es la señal de entrada que produce una estrategia cuando su
// predicado dispara. Si EntryTS es cero y la estrategia no exige aportar su
// propio timestamp, el engine lo sintetiza con la observación que disparó.
type EntrySignal struct {
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	EntryTS    time.Time
}

// Trade es un trade construido a partir de un ResolvedValueSet que satisface
// el predicado mínimo de la estrategia. Los precios ya están curados a la
// rejilla del instrumento al construirse.
type Trade struct {
	Instrument string
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	EntryTS    time.Time
}

// NewTrade construye el trade curando entry/stop/target con la spec dada.
// La curación ocurre aquí, en la frontera — los cálculos que produjeron la
// señal siguen siendo float crudo.
func NewTrade(spec InstrumentSpec, sig EntrySignal) Trade {
	return Trade{
		Instrument: spec.Symbol,
		Direction:  sig.Direction,
		EntryPrice: spec.Curate(sig.EntryPrice),
		StopLoss:   spec.Curate(sig.StopLoss),
		TakeProfit: spec.Curate(sig.TakeProfit),
		EntryTS:    sig.EntryTS,
	}
}

// Profit devuelve la delta de precio ajustada por dirección para un precio
// de salida dado. Positivo = a favor del trade.
func (t Trade) Profit(exitPx float64) float64 {
	if t.Direction == Short {
		return t.EntryPrice - exitPx
	}
	return exitPx - t.EntryPrice
}

// TradePnL es el registro final de un ciclo de trade-o-no-entrada. Para
// NoEntry e Indeterminate los campos monetarios quedan a cero y el outcome
// lleva la etiqueta explícita.
type TradePnL struct {
	Outcome    TradeOutcome
	Reason     ExitReason
	Direction  Direction
	EntryPrice float64
	ExitPrice  float64
	StopLoss   float64
	TakeProfit float64
	EntryTS    time.Time
	ExitTS     time.Time
	Ticks      float64 // delta en número de ticks
	Profit     float64 // delta en unidades de precio
	Dollars    float64 // Ticks × TickValue del instrumento
}
