package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// bar construye la vela completa del minuto i de la ventana.
func bar(i int, o, h, l, c float64) domain.MarketObservation {
	open := t0.Add(time.Duration(i) * time.Minute)
	return domain.MarketObservation{
		OpenTS:  open,
		CloseTS: open.Add(time.Minute),
		Open:    domain.Float64(o),
		High:    domain.Float64(h),
		Low:     domain.Float64(l),
		Close:   domain.Float64(c),
	}
}

// gapBar construye la vela del minuto i con todos los campos ausentes.
func gapBar(i int) domain.MarketObservation {
	open := t0.Add(time.Duration(i) * time.Minute)
	return domain.MarketObservation{OpenTS: open, CloseTS: open.Add(time.Minute)}
}

func TestResolve_CandleExactOffset(t *testing.T) {
	window := []domain.MarketObservation{
		bar(0, 10, 12, 9, 11),
		bar(1, 11, 13, 10, 12),
		bar(2, 12, 14, 11, 13),
	}
	req := domain.CandleAt(2)

	set := Resolve([]domain.DataRequirement{req}, window, t0.Add(time.Hour))

	got, ok := set.Candle(req)
	require.True(t, ok)
	assert.Equal(t, 13.0, *got.Close)
}

func TestResolve_CandleFallbackOnGap(t *testing.T) {
	// el offset pedido está incompleto: cae al offset anterior completo
	window := []domain.MarketObservation{
		bar(0, 10, 12, 9, 11),
		bar(1, 11, 13, 10, 12),
		gapBar(2),
	}
	req := domain.CandleAt(2)

	set := Resolve([]domain.DataRequirement{req}, window, t0.Add(time.Hour))

	got, ok := set.Candle(req)
	require.True(t, ok)
	assert.Equal(t, 12.0, *got.Close)
}

func TestResolve_CandleWindowExhausted(t *testing.T) {
	// ninguna vela completa en [0, offset]: el requirement resuelve vacío,
	// nunca busca antes del offset 0
	window := []domain.MarketObservation{gapBar(0), gapBar(1), gapBar(2)}
	req := domain.CandleAt(2)

	set := Resolve([]domain.DataRequirement{req}, window, t0.Add(time.Hour))

	_, ok := set.Candle(req)
	assert.False(t, ok)
	assert.False(t, set.Complete([]domain.DataRequirement{req}))
}

func TestResolve_CandleNegativeOffset(t *testing.T) {
	window := []domain.MarketObservation{bar(0, 10, 12, 9, 11)}
	req := domain.CandleAt(-1)

	set := Resolve([]domain.DataRequirement{req}, window, t0.Add(time.Hour))

	_, ok := set.Candle(req)
	assert.False(t, ok)
}

func TestResolve_AsOfTruncation(t *testing.T) {
	// las velas cerradas después de asOf no existen para el resolver
	window := []domain.MarketObservation{
		bar(0, 10, 12, 9, 11),
		bar(1, 11, 13, 10, 12),
		bar(2, 12, 99, 11, 90),
	}
	req := domain.Indicator(domain.IndicatorHighestHigh)
	asOf := t0.Add(2 * time.Minute) // la vela 2 cierra en t0+3m

	set := Resolve([]domain.DataRequirement{req}, window, asOf)

	hi, ok := set.Scalar(req)
	require.True(t, ok)
	assert.Equal(t, 13.0, hi)
}

func TestResolve_Indicators(t *testing.T) {
	// una vela sin High igualmente aporta su Low al mínimo
	partial := gapBar(1)
	partial.Low = domain.Float64(5.0)
	window := []domain.MarketObservation{
		bar(0, 10, 12, 9, 11),
		partial,
		bar(2, 12, 14, 11, 13),
	}

	hiReq := domain.Indicator(domain.IndicatorHighestHigh)
	loReq := domain.Indicator(domain.IndicatorLowestLow)
	lastReq := domain.Indicator(domain.IndicatorLastPrice)

	set := Resolve([]domain.DataRequirement{hiReq, loReq, lastReq}, window, t0.Add(time.Hour))

	hi, ok := set.Scalar(hiReq)
	require.True(t, ok)
	assert.Equal(t, 14.0, hi)

	lo, ok := set.Scalar(loReq)
	require.True(t, ok)
	assert.Equal(t, 5.0, lo)

	last, ok := set.Scalar(lastReq)
	require.True(t, ok)
	assert.Equal(t, 13.0, last)
}

func TestResolve_LastPriceSkipsMissingCloses(t *testing.T) {
	window := []domain.MarketObservation{
		bar(0, 10, 12, 9, 11),
		gapBar(1),
		gapBar(2),
	}
	req := domain.Indicator(domain.IndicatorLastPrice)

	set := Resolve([]domain.DataRequirement{req}, window, t0.Add(time.Hour))

	last, ok := set.Scalar(req)
	require.True(t, ok)
	assert.Equal(t, 11.0, last)
}

func TestResolve_EmptyWindow(t *testing.T) {
	reqs := []domain.DataRequirement{
		domain.CandleAt(0),
		domain.Indicator(domain.IndicatorLastPrice),
	}

	set := Resolve(reqs, nil, t0)

	assert.Len(t, set, 2)
	assert.False(t, set.Complete(reqs))
}
