package engine

// sweep.go — worker pool para la reducción paralela de candidatos.
//
// Cada worker evalúa una configuración end-to-end sin estado mutable
// compartido con los demás; el único punto de sincronización es la inserción
// en el leaderboard. La cancelación es cooperativa en la frontera de cada
// candidato: un sweep cancelado devuelve el mejor top-K calculado hasta el
// momento en vez de fallar.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// SweepConfig controla el pool y el tamaño del ranking.
type SweepConfig struct {
	Workers int // si <= 0 usa runtime.NumCPU()
	TopK    int
}

// Sweep reduce un stream lazy de configuraciones candidatas al top-K.
type Sweep struct {
	engine *Engine
	sink   ports.ReportSink // opcional; nil = no persistir
	cfg    SweepConfig
}

// NewSweep crea el reducer sobre el engine dado.
func NewSweep(engine *Engine, sink ports.ReportSink, cfg SweepConfig) *Sweep {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Sweep{engine: engine, sink: sink, cfg: cfg}
}

// stat es el resumen ligero que cada worker publica por candidato. Los
// ledgers completos no viajan por aquí: la memoria del sweep es O(k).
type stat struct {
	rejected       bool
	failed         bool
	noEntries      int
	indeterminates int
}

// Run consume el stream de candidatos hasta agotarlo o hasta la cancelación
// del contexto. El contenido final del top-K no depende del número de
// workers ni de su scheduling.
func (s *Sweep) Run(ctx context.Context, candidates <-chan domain.CandidateConfiguration) domain.SweepSummary {
	lb := NewLeaderboard(s.cfg.TopK)
	workCh := make(chan domain.CandidateConfiguration)
	statCh := make(chan stat, s.cfg.Workers)

	// feeder: valida cada configuración antes de entrar al pool. Una
	// malformada se cuenta como rechazada sin abortar el batch.
	go func() {
		defer close(workCh)
		for c := range candidates {
			if ctx.Err() != nil {
				return
			}
			if err := c.Validate(); err != nil {
				slog.Warn("candidate rejected", "candidate", c.ID, "err", err)
				statCh <- stat{rejected: true}
				continue
			}
			select {
			case workCh <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range workCh {
				if ctx.Err() != nil {
					continue // drenar sin evaluar: cancelación cooperativa
				}
				statCh <- s.runOne(ctx, c, lb)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(statCh)
		close(done)
	}()

	summary := domain.SweepSummary{}
	for st := range statCh {
		switch {
		case st.rejected:
			summary.Rejected++
		case st.failed:
			summary.Failed++
		default:
			summary.Evaluated++
			summary.NoEntries += st.noEntries
			summary.Indeterminates += st.indeterminates
		}
	}
	<-done

	summary.Cancelled = ctx.Err() != nil
	summary.Results = lb.Results()

	if s.sink != nil {
		// persistir aunque el sweep se haya cancelado: el top-K parcial es
		// el resultado útil de una cancelación.
		if err := s.sink.SaveLeaderboard(context.WithoutCancel(ctx), summary.Results); err != nil {
			slog.Warn("save leaderboard failed", "err", err)
		}
	}

	slog.Info("sweep finished",
		"evaluated", summary.Evaluated,
		"rejected", summary.Rejected,
		"failed", summary.Failed,
		"retained", len(summary.Results),
		"cancelled", summary.Cancelled,
	)

	return summary
}

// runOne evalúa un candidato aislando pánicos: una violación de invariante
// es fatal solo para esta tarea y nunca corrompe el leaderboard compartido.
func (s *Sweep) runOne(ctx context.Context, c domain.CandidateConfiguration, lb *Leaderboard) (st stat) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("candidate evaluation panicked", "candidate", c.ID, "panic", fmt.Sprint(r))
			st = stat{failed: true}
		}
	}()

	res := s.engine.Evaluate(ctx, c)
	if res.Failed() {
		slog.Warn("candidate failed", "candidate", c.ID, "err", res.Err)
		return stat{failed: true}
	}

	if s.sink != nil {
		if err := s.sink.SaveTrades(ctx, c, res.Ledger); err != nil {
			slog.Warn("save trades failed", "candidate", c.ID, "err", err)
		}
	}

	lb.Offer(res)
	return stat{
		noEntries:      res.Perf.NoEntries,
		indeterminates: res.Perf.Indeterminates,
	}
}
