package engine

// lifecycle.go — máquina de estados del ciclo de vida de un trade.
//
// Los estados son tipos cerrados con funciones de transición que consumen y
// devuelven el siguiente estado: una transición ilegal (cerrar desde Idle,
// activar desde Active) no compila. El estado mutable compartido es cero: la
// máquina avanza por valores.

import (
	"time"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// TradeState es el tipo suma cerrado de la máquina: Idle, Active, Exiting o
// Closed. Solo los tipos de este paquete lo implementan.
type TradeState interface {
	tradeState()
}

// Idle: sin trade. Estado inicial y de aceptación.
type Idle struct{}

// Active: hay un trade vivo perteneciente a una estrategia. Nunca existen
// dos Active simultáneos — la precedencia de entrada lo garantiza.
type Active struct {
	Strategy string
	Trade    domain.Trade
}

// Exiting: el trade tiene causa de salida y, salvo pérdida de datos, un
// precio de salida resuelto. Siempre transiciona a Closed vía valoración.
type Exiting struct {
	Strategy string
	Trade    domain.Trade
	Reason   domain.ExitReason
	Fill     *ExitFill // nil cuando no hay precio de salida resoluble
}

// Closed: estado terminal del ciclo con su registro finalizado.
type Closed struct {
	Strategy string
	Record   domain.TradePnL
}

func (Idle) tradeState()    {}
func (Active) tradeState()  {}
func (Exiting) tradeState() {}
func (Closed) tradeState()  {}

// Activate construye el trade (curado a la rejilla del instrumento) y pasa a
// Active. Única entrada posible al estado Active.
func (Idle) Activate(spec domain.InstrumentSpec, strategy string, sig domain.EntrySignal) Active {
	return Active{
		Strategy: strategy,
		Trade:    domain.NewTrade(spec, sig),
	}
}

// ExitAt saca el trade con la causa y el fill dados.
func (a Active) ExitAt(reason domain.ExitReason, price float64, ts time.Time) Exiting {
	return Exiting{
		Strategy: a.Strategy,
		Trade:    a.Trade,
		Reason:   reason,
		Fill:     &ExitFill{Price: price, TS: ts},
	}
}

// ExitDataGap saca el trade sin precio de salida: la sesión perdió los datos
// restantes y el resultado es incognoscible. Cierra como Indeterminate,
// nunca como Timeout.
func (a Active) ExitDataGap() Exiting {
	return Exiting{
		Strategy: a.Strategy,
		Trade:    a.Trade,
		Reason:   domain.ExitDataGap,
		Fill:     nil,
	}
}

// Close valora el trade y produce el estado terminal.
func (e Exiting) Close(spec domain.InstrumentSpec) Closed {
	return Closed{
		Strategy: e.Strategy,
		Record:   Value(spec, e.Trade, e.Reason, e.Fill),
	}
}

// Reset vuelve a Idle para el mismo instante: un pivot cierra y reentra sin
// saltarse ninguna observación.
func (Closed) Reset() Idle {
	return Idle{}
}
