package notify

// console.go — presentación del resultado del sweep en consola.
//
// Dos modos: compacto (una línea con los agregados y el mejor candidato) y
// tabla completa del leaderboard. El core no sabe nada de formatos — recibe
// el resumen por ports.Notifier y este adapter decide cómo pintarlo.

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resumen en el modo configurado.
func (c *Console) Notify(_ context.Context, summary domain.SweepSummary) error {
	if c.table {
		c.printFull(summary)
	} else {
		c.printCompact(summary)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(s domain.SweepSummary) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d evaluated → rejected:%d failed:%d no-entry:%d indeterminate:%d",
		now, s.Evaluated, s.Rejected, s.Failed, s.NoEntries, s.Indeterminates)
	if s.Cancelled {
		sb.WriteString(" [cancelled — partial results]")
	}

	if len(s.Results) > 0 {
		best := s.Results[0]
		fmt.Fprintf(&sb, " | best %s/%s %s score:$%.2f (%d trades, wr %.0f%%)",
			best.Candidate.Strategy, best.Candidate.Instrument,
			paramsLabel(best.Candidate.Params, 3),
			best.Score, best.Perf.Trades, best.Perf.WinRate()*100)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla del leaderboard con las métricas por candidato.
func (c *Console) printFull(s domain.SweepSummary) {
	now := time.Now().Format("15:04:05")

	fmt.Fprintf(c.out, "\n[%s] sweep — %d evaluated, rejected:%d failed:%d no-entry:%d indeterminate:%d\n",
		now, s.Evaluated, s.Rejected, s.Failed, s.NoEntries, s.Indeterminates)
	if s.Cancelled {
		fmt.Fprintln(c.out, "  ⚠ cancelled — leaderboard reflects the candidates evaluated so far")
	}
	if len(s.Results) == 0 {
		fmt.Fprintln(c.out, "  no scored candidates")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Strategy", "Instr", "Params", "Score", "Trades", "W", "L", "TO W/L", "WinRate", "PF")

	for i, r := range s.Results {
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Candidate.Strategy,
			r.Candidate.Instrument,
			paramsLabel(r.Candidate.Params, 6),
			fmt.Sprintf("$%.2f", r.Score),
			fmt.Sprintf("%d", r.Perf.Trades),
			fmt.Sprintf("%d", r.Perf.Winners),
			fmt.Sprintf("%d", r.Perf.Losers),
			fmt.Sprintf("%d/%d", r.Perf.TimeoutWinners, r.Perf.TimeoutLosers),
			fmt.Sprintf("%.1f%%", r.Perf.WinRate()*100),
			pfLabel(r.Perf.ProfitFactor()),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Score = net P&L en dólares | TO W/L = timeouts ganadores/perdedores")
	fmt.Fprintln(c.out, "  PF = gross win / gross loss — INF sin pérdidas")
}

// paramsLabel serializa hasta n parámetros en orden alfabético.
func paramsLabel(params map[string]float64, n int) string {
	if len(params) == 0 {
		return "-"
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > n {
		names = names[:n]
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%g", name, params[name]))
	}
	return strings.Join(parts, " ")
}

func pfLabel(pf float64) string {
	if math.IsInf(pf, 1) {
		return "INF"
	}
	return fmt.Sprintf("%.2f", pf)
}

var _ ports.Notifier = (*Console)(nil)
