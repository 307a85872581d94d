package domain

import "math"

// Performance acumula las métricas realizadas de una configuración. Las
// categorías NoEntry, Indeterminate y Failed se cuentan por separado y nunca
// se funden en los agregados Winner/Loser.
type Performance struct {
	Trades         int
	Winners        int
	Losers         int
	TimeoutWinners int
	TimeoutLosers  int
	NoEntries      int
	Indeterminates int

	NetDollars   float64
	GrossWinDlr  float64
	GrossLossDlr float64 // valor absoluto acumulado de las pérdidas
}

// Add incorpora un registro de trade al acumulado.
func (p *Performance) Add(pnl TradePnL) {
	switch pnl.Outcome {
	case OutcomeNoEntry:
		p.NoEntries++
		return
	case OutcomeIndeterminate:
		p.Indeterminates++
		return
	case OutcomeWinner:
		p.Winners++
	case OutcomeLoser:
		p.Losers++
	case OutcomeTimeoutWinner:
		p.TimeoutWinners++
	case OutcomeTimeoutLoser:
		p.TimeoutLosers++
	}

	p.Trades++
	p.NetDollars += pnl.Dollars
	if pnl.Dollars >= 0 {
		p.GrossWinDlr += pnl.Dollars
	} else {
		p.GrossLossDlr += -pnl.Dollars
	}
}

// WinRate devuelve la fracción de trades ganadores (timeouts incluidos).
func (p Performance) WinRate() float64 {
	if p.Trades == 0 {
		return 0
	}
	return float64(p.Winners+p.TimeoutWinners) / float64(p.Trades)
}

// ProfitFactor devuelve ganancia bruta / pérdida bruta. Inf si no hubo
// pérdidas y sí ganancias.
func (p Performance) ProfitFactor() float64 {
	if p.GrossLossDlr == 0 {
		if p.GrossWinDlr == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return p.GrossWinDlr / p.GrossLossDlr
}

// Score es la métrica objetivo del leaderboard: beneficio neto en dólares.
func (p Performance) Score() float64 {
	return p.NetDollars
}

// SweepSummary es el resultado agregado de una reducción completa: el top-K
// final más los contadores por categoría. NoEntry, Indeterminate y Failed se
// reportan como categorías separadas, nunca silenciadas ni fundidas.
type SweepSummary struct {
	Evaluated      int
	Rejected       int // configuraciones malformadas, no entraron al pool
	Failed         int // fallos de provider o invariantes, por candidato
	NoEntries      int
	Indeterminates int
	Cancelled      bool // la reducción se canceló; Results es el mejor top-K parcial
	Results        []ScoredResult
}
