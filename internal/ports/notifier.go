package ports

import (
	"context"

	"github.com/alejandrodnm/stratsweep/internal/domain"
)

// Notifier presenta el resultado de un sweep al usuario (consola, etc.).
type Notifier interface {
	Notify(ctx context.Context, summary domain.SweepSummary) error
}
