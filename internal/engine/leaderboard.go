package engine

// leaderboard.go — top-K acotado bajo paralelismo.
//
// Un min-heap de capacidad k con el peor resultado en la raíz: un resultado
// nuevo entra solo si hay hueco o si bate al mínimo actual. La memoria
// auxiliar es O(k) independientemente del tamaño del stream de candidatos.
// La única sección crítica es la mutación del heap, O(log k); la evaluación
// de candidatos corre totalmente en paralelo sin locks.

import (
	"container/heap"
	"sort"
	"sync"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// Leaderboard mantiene los K mejores ScoredResult vistos hasta el momento.
// Seguro para uso concurrente.
type Leaderboard struct {
	mu      sync.Mutex
	k       int
	entries resultHeap
}

// NewLeaderboard crea un leaderboard de capacidad k.
func NewLeaderboard(k int) *Leaderboard {
	if k < 0 {
		k = 0
	}
	return &Leaderboard{k: k, entries: make(resultHeap, 0, k)}
}

// Offer inserta el resultado si pertenece al top-K actual. Devuelve true si
// quedó retenido. El desempate por orden de generación hace la membresía
// independiente del scheduling de los workers.
func (l *Leaderboard) Offer(r domain.ScoredResult) bool {
	if l.k == 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) < l.k {
		heap.Push(&l.entries, r)
		return true
	}
	if !r.Better(l.entries[0]) {
		return false
	}
	l.entries[0] = r
	heap.Fix(&l.entries, 0)
	return true
}

// Len devuelve cuántos resultados retiene actualmente.
func (l *Leaderboard) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Results devuelve una copia del top-K en orden descendente de score.
func (l *Leaderboard) Results() []domain.ScoredResult {
	l.mu.Lock()
	out := make([]domain.ScoredResult, len(l.entries))
	copy(out, l.entries)
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Better(out[j]) })
	return out
}

// resultHeap es un min-heap por el orden total de ScoredResult: la raíz es
// el peor miembro del top-K actual.
type resultHeap []domain.ScoredResult

func (h resultHeap) Len() int           { return len(h) }
func (h resultHeap) Less(i, j int) bool { return h[j].Better(h[i]) }
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(domain.ScoredResult))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
