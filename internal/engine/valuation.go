package engine

// valuation.go — valoración de un trade concluido.
//
// Cura entry/stop/target/exit a la rejilla del instrumento, calcula la delta
// ajustada por dirección, la convierte a ticks y a dólares, y clasifica el
// outcome cruzando la causa de salida con el signo de la delta.

import (
	"time"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// ExitFill es el precio y timestamp de salida resueltos para un trade.
type ExitFill struct {
	Price float64
	TS    time.Time
}

// Value produce el registro TradePnL final de un trade. Con fill nil (caso
// Indeterminate) los campos monetarios quedan a cero y el registro lleva la
// etiqueta explícita: nunca entra en los agregados Winner/Loser.
func Value(spec domain.InstrumentSpec, trade domain.Trade, reason domain.ExitReason, fill *ExitFill) domain.TradePnL {
	if fill == nil {
		return domain.TradePnL{
			Outcome:    domain.OutcomeIndeterminate,
			Reason:     domain.ExitDataGap,
			Direction:  trade.Direction,
			EntryPrice: trade.EntryPrice,
			StopLoss:   trade.StopLoss,
			TakeProfit: trade.TakeProfit,
			EntryTS:    trade.EntryTS,
		}
	}

	exitPx := spec.Curate(fill.Price)
	profit := trade.Profit(exitPx)
	ticks := spec.PriceToTicks(profit)

	return domain.TradePnL{
		Outcome:    classify(reason, profit),
		Reason:     reason,
		Direction:  trade.Direction,
		EntryPrice: trade.EntryPrice,
		ExitPrice:  exitPx,
		StopLoss:   trade.StopLoss,
		TakeProfit: trade.TakeProfit,
		EntryTS:    trade.EntryTS,
		ExitTS:     fill.TS,
		Ticks:      ticks,
		Profit:     profit,
		Dollars:    spec.TicksToDollar(ticks),
	}
}

// NoEntryRecord es el registro de un ciclo que terminó sin señal de entrada.
func NoEntryRecord() domain.TradePnL {
	return domain.TradePnL{Outcome: domain.OutcomeNoEntry, Reason: domain.ExitNone}
}

// classify cruza la causa de salida con el signo de la delta. Timeout con
// delta positiva → Timeout-Winner, etc.
func classify(reason domain.ExitReason, profit float64) domain.TradeOutcome {
	timeout := reason == domain.ExitTimeout
	if profit > 0 {
		if timeout {
			return domain.OutcomeTimeoutWinner
		}
		return domain.OutcomeWinner
	}
	if timeout {
		return domain.OutcomeTimeoutLoser
	}
	return domain.OutcomeLoser
}
