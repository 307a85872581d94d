package csvdata

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `open_ts,close_ts,open,high,low,close,volume
1709280000000,1709280060000,1.0950,1.0960,1.0940,1.0955,120
1709280060000,1709280120000,1.0955,,1.0950,1.0958,80
1709280120000,1709280180000,,,,,
1709280180000,1709280240000,1.0958,1.0970,1.0955,1.0966,95
`

func TestParse_NullableCells(t *testing.T) {
	obs, err := Parse(strings.NewReader(fixture))
	require.NoError(t, err)
	require.Len(t, obs, 4)

	first := obs[0]
	assert.Equal(t, time.UnixMilli(1709280000000).UTC(), first.OpenTS)
	assert.Equal(t, time.UnixMilli(1709280060000).UTC(), first.CloseTS)
	require.NotNil(t, first.Close)
	assert.Equal(t, 1.0955, *first.Close)
	require.NotNil(t, first.Volume)
	assert.Equal(t, 120.0, *first.Volume)
	assert.True(t, first.IsComplete())

	// celda vacía = campo ausente, no 0.0
	assert.Nil(t, obs[1].High)
	assert.NotNil(t, obs[1].Close)
	assert.False(t, obs[1].IsComplete())

	// vela totalmente vacía: hueco representable
	assert.False(t, obs[2].IsComplete())
	assert.Nil(t, obs[2].Volume)
}

func TestParse_NoHeader(t *testing.T) {
	raw := "1709280000000,1709280060000,1.0,2.0,0.5,1.5,10\n"
	obs, err := Parse(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 1.5, *obs[0].Close)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("open_ts,close_ts,open,high,low,close,volume\nnot-a-ts,1,,,,,\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("1709280000000,1709280060000,abc,2.0,0.5,1.5,10\n"))
	assert.Error(t, err)

	// número de columnas incorrecto
	_, err = Parse(strings.NewReader("1709280000000,1709280060000,1.0\n"))
	assert.Error(t, err)
}

func TestProvider_FetchObservations_WindowFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "6e.csv"), []byte(fixture), 0o644))

	p := NewProvider(dir)
	from := time.UnixMilli(1709280060000).UTC()
	to := time.UnixMilli(1709280240000).UTC()

	obs, err := p.FetchObservations(context.Background(), "6e", from, to)
	require.NoError(t, err)
	// solo las velas con cierre en [from, to)
	require.Len(t, obs, 3)
	assert.Equal(t, time.UnixMilli(1709280060000).UTC(), obs[0].CloseTS)
	assert.Equal(t, time.UnixMilli(1709280180000).UTC(), obs[2].CloseTS)
}

func TestProvider_FetchObservations_MissingFile(t *testing.T) {
	p := NewProvider(t.TempDir())
	_, err := p.FetchObservations(context.Background(), "6e", time.Time{}, time.Now())
	assert.Error(t, err)
}
