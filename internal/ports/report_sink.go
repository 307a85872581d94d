package ports

import (
	"context"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// ReportSink recibe los registros finalizados de la evaluación. El core es
// agnóstico del formato: el sink decide cómo serializar y dónde persistir.
// Las implementaciones tienen que ser seguras para uso concurrente — los
// workers del sweep publican ledgers en paralelo.
type ReportSink interface {
	// SaveTrades persiste el ledger de trades de una configuración.
	SaveTrades(ctx context.Context, c domain.CandidateConfiguration, ledger []domain.TradePnL) error

	// SaveLeaderboard persiste el ranking final (orden descendente).
	SaveLeaderboard(ctx context.Context, results []domain.ScoredResult) error

	// Close cierra el sink limpiamente.
	Close() error
}
