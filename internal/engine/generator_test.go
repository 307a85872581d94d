package engine

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

func testGrid() Grid {
	return Grid{
		Strategy:    "breakout",
		Instruments: []string{"6e", "btcusdt"},
		From:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Params: map[string][]float64{
			"offset_ticks": {1, 2},
			"tp_ratio":     {0.5, 1, 2},
		},
	}
}

func collect(t *testing.T, g Grid) []domain.CandidateConfiguration {
	t.Helper()
	var out []domain.CandidateConfiguration
	for c := range g.Stream(context.Background()) {
		out = append(out, c)
	}
	return out
}

func TestGrid_Count(t *testing.T) {
	assert.Equal(t, 12, testGrid().Count())
}

func TestGrid_StreamCoversCartesianProduct(t *testing.T) {
	got := collect(t, testGrid())
	require.Len(t, got, 12)

	// Seq estrictamente creciente desde 0
	seen := make(map[string]bool)
	for i, c := range got {
		assert.Equal(t, uint64(i), c.Seq)
		assert.NotEmpty(t, c.ID)
		key := c.Instrument + "|" +
			formatParam(c.Params["offset_ticks"]) + "|" +
			formatParam(c.Params["tp_ratio"])
		assert.False(t, seen[key], "duplicate combination %s", key)
		seen[key] = true
	}

	// orden estable: instrumentos en el orden dado, parámetros alfabéticos
	// con el último nombre avanzando más rápido
	assert.Equal(t, "6e", got[0].Instrument)
	assert.Equal(t, 1.0, got[0].Params["offset_ticks"])
	assert.Equal(t, 0.5, got[0].Params["tp_ratio"])
	assert.Equal(t, 1.0, got[1].Params["tp_ratio"])
	assert.Equal(t, 2.0, got[3].Params["offset_ticks"])
	assert.Equal(t, "btcusdt", got[6].Instrument)
}

func TestGrid_StreamEmptyParams(t *testing.T) {
	g := testGrid()
	g.Params = nil

	got := collect(t, g)
	require.Len(t, got, 2)
	assert.Equal(t, "6e", got[0].Instrument)
	assert.Equal(t, "btcusdt", got[1].Instrument)
}

func TestGrid_StreamCancellation(t *testing.T) {
	g := testGrid()
	ctx, cancel := context.WithCancel(context.Background())

	ch := g.Stream(ctx)
	_, ok := <-ch
	require.True(t, ok)
	cancel()

	// el canal termina cerrándose sin bloquear al productor
	for range ch {
	}
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
