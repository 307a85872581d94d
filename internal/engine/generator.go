package engine

// generator.go — generación lazy de la rejilla de parámetros.
//
// Un sweep realista cruza millones de combinaciones; materializarlas todas
// contradiría la meta de memoria O(k). El generador emite candidatos bajo
// demanda por un canal, en un orden determinista que sirve de clave de
// desempate en el leaderboard.

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// Grid define el producto cartesiano instrumentos × valores de parámetros
// para una estrategia y un rango de fechas.
type Grid struct {
	Strategy    string
	Instruments []string
	From        time.Time
	To          time.Time
	Params      map[string][]float64
}

// Count devuelve el número total de candidatos de la rejilla.
func (g Grid) Count() int {
	n := len(g.Instruments)
	for _, vs := range g.Params {
		n *= len(vs)
	}
	return n
}

// Stream emite los candidatos en orden de generación estable (instrumentos
// en el orden dado, parámetros en orden alfabético de nombre). El canal se
// cierra al agotar la rejilla o al cancelarse el contexto.
func (g Grid) Stream(ctx context.Context) <-chan domain.CandidateConfiguration {
	names := make([]string, 0, len(g.Params))
	for name := range g.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(chan domain.CandidateConfiguration)
	go func() {
		defer close(out)

		var seq uint64
		idx := make([]int, len(names))
		for _, instrument := range g.Instruments {
			for {
				params := make(map[string]float64, len(names))
				for i, name := range names {
					params[name] = g.Params[name][idx[i]]
				}

				c := domain.CandidateConfiguration{
					ID:         uuid.New().String(),
					Seq:        seq,
					Strategy:   g.Strategy,
					Instrument: instrument,
					From:       g.From,
					To:         g.To,
					Params:     params,
				}
				seq++

				select {
				case out <- c:
				case <-ctx.Done():
					return
				}

				if !advance(idx, names, g.Params) {
					break
				}
			}
		}
	}()
	return out
}

// advance incrementa el odómetro de índices; false cuando da la vuelta.
func advance(idx []int, names []string, params map[string][]float64) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(params[names[i]]) {
			return true
		}
		idx[i] = 0
	}
	return false
}
