package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// MarketProvider entrega la serie histórica de observaciones de un mercado
// para una ventana temporal. La serie llega ordenada por timestamp, sin
// duplicados, y puede contener huecos (velas ausentes o incompletas).
type MarketProvider interface {
	// FetchObservations devuelve las observaciones de [from, to) para el
	// instrumento dado. Puede suspender esperando I/O remoto; el engine
	// nunca la llama con el lock del leaderboard tomado.
	FetchObservations(ctx context.Context, instrument string, from, to time.Time) ([]domain.MarketObservation, error)
}
