package csvdata

// provider.go — proveedor de mercado sobre ficheros CSV locales.
//
// Formato por línea: open_ts,close_ts,open,high,low,close,volume con
// timestamps unix en milisegundos. Una celda vacía es un campo ausente y se
// conserva como nil: los huecos del feed son datos, no errores.

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// Provider implementa ports.MarketProvider leyendo <dir>/<instrumento>.csv.
type Provider struct {
	dir string
}

// NewProvider crea un Provider sobre el directorio de fixtures dado.
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// FetchObservations lee y parsea el fichero del instrumento y devuelve las
// observaciones cuyo cierre cae dentro de [from, to).
func (p *Provider) FetchObservations(ctx context.Context, instrument string, from, to time.Time) ([]domain.MarketObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, instrument+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata.FetchObservations: open %s: %w", path, err)
	}
	defer f.Close()

	all, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("csvdata.FetchObservations: parse %s: %w", path, err)
	}

	out := make([]domain.MarketObservation, 0, len(all))
	for _, o := range all {
		if o.CloseTS.Before(from) || !o.CloseTS.Before(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// Parse lee un stream CSV completo. La primera línea puede ser una cabecera
// (se detecta por el primer campo no numérico) y las filas deben venir ya
// ordenadas por open_ts.
func Parse(r io.Reader) ([]domain.MarketObservation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7
	cr.ReuseRecord = true

	var out []domain.MarketObservation
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvdata.Parse: line %d: %w", line, err)
		}
		if line == 1 && !isNumeric(rec[0]) {
			continue
		}

		obs, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("csvdata.Parse: line %d: %w", line, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

func parseRow(rec []string) (domain.MarketObservation, error) {
	openMS, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil {
		return domain.MarketObservation{}, fmt.Errorf("open_ts %q: %w", rec[0], err)
	}
	closeMS, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
	if err != nil {
		return domain.MarketObservation{}, fmt.Errorf("close_ts %q: %w", rec[1], err)
	}

	obs := domain.MarketObservation{
		OpenTS:  time.UnixMilli(openMS).UTC(),
		CloseTS: time.UnixMilli(closeMS).UTC(),
	}

	fields := []struct {
		name string
		dst  **float64
		raw  string
	}{
		{"open", &obs.Open, rec[2]},
		{"high", &obs.High, rec[3]},
		{"low", &obs.Low, rec[4]},
		{"close", &obs.Close, rec[5]},
		{"volume", &obs.Volume, rec[6]},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(f.raw)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.MarketObservation{}, fmt.Errorf("%s %q: %w", f.name, raw, err)
		}
		*f.dst = &v
	}
	return obs, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

var _ ports.MarketProvider = (*Provider)(nil)
