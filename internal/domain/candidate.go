package domain

import (
	"fmt"
	"time"
)

// CandidateConfiguration es una parametrización completa e inmutable de una
// evaluación: estrategia + parámetros + mercado + rango de fechas. La produce
// un generador lazy externo al engine; el engine la toma prestada durante una
// evaluación y no la muta.
type CandidateConfiguration struct {
	ID         string // uuid, solo trazabilidad — el ranking no depende de él
	Seq        uint64 // orden de generación, tie-break determinista del ranking
	Strategy   string // nombre(s) registrados, p.ej. "breakout" o "breakout+counter"
	Instrument string
	From       time.Time
	To         time.Time
	Params     map[string]float64
}

// Validate rechaza configuraciones malformadas antes de entrar al worker
// pool: instrumento desconocido o rango de fechas inválido.
func (c CandidateConfiguration) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("domain.CandidateConfiguration: empty strategy")
	}
	if _, err := SpecFor(c.Instrument); err != nil {
		return fmt.Errorf("domain.CandidateConfiguration: %w", err)
	}
	if !c.To.After(c.From) {
		return fmt.Errorf("domain.CandidateConfiguration: invalid date range [%s, %s)", c.From, c.To)
	}
	return nil
}

// Param devuelve el parámetro dado o def si no está declarado.
func (c CandidateConfiguration) Param(name string, def float64) float64 {
	if v, ok := c.Params[name]; ok {
		return v
	}
	return def
}

// ScoredResult es una configuración evaluada con su métrica objetivo y su
// ledger completo de trades. Sobrevive solo mientras está dentro del top-K.
type ScoredResult struct {
	Candidate CandidateConfiguration
	Score     float64
	Perf      Performance
	Ledger    []TradePnL
	Err       error // fallo de provider o invariante: categoría Failed
}

// Failed devuelve true si la evaluación abortó (distinto de NoEntry y de
// Indeterminate, que son resultados válidos del modelo de datos).
func (r ScoredResult) Failed() bool {
	return r.Err != nil
}

// Better define el orden total del leaderboard: score descendente, con el
// orden de generación como clave secundaria estable. Con el mismo generador
// el contenido del top-K no depende del scheduling de los workers.
func (r ScoredResult) Better(other ScoredResult) bool {
	if r.Score != other.Score {
		return r.Score > other.Score
	}
	return r.Candidate.Seq < other.Candidate.Seq
}
