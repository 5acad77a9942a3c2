package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/dualx/internal/dual"
	"github.com/san-kum/dualx/internal/sweep"
)

// EvalRow is one evaluated input for RenderEval.
type EvalRow struct {
	X          float64
	Value      float64
	Slope      float64
	Advisories []dual.Advisory
	Err        error
}

// RenderEval renders evaluation results as a styled table.
func RenderEval(expr string, rows []EvalRow) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("f(x) = "+expr) + "\n")
	b.WriteString(MetricLabel.Render(fmt.Sprintf("%-14s %-22s %-22s %s", "x", "f(x)", "f'(x)", "status")) + "\n")

	for _, r := range rows {
		x := fmt.Sprintf("%-14.6g", r.X)
		if r.Err != nil {
			b.WriteString(x + " " + StatusError.Render("error: "+r.Err.Error()) + "\n")
			continue
		}

		status := sweep.StatusOK
		if len(r.Advisories) > 0 {
			status = sweep.StatusAdvisory
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s\n",
			x,
			MetricValue.Render(fmt.Sprintf("%-22.15g", r.Value)),
			MetricValue.Render(fmt.Sprintf("%-22.15g", r.Slope)),
			Badge(status)))
		for _, a := range r.Advisories {
			b.WriteString("  " + StatusWarn.Render("! "+a.String()) + "\n")
		}
	}
	return b.String()
}

// RenderSweep summarises a sweep with sparklines of f and f'.
func RenderSweep(res *sweep.Result, width int) string {
	var b strings.Builder
	b.WriteString(Title.Render(res.Expr) + "  " + Subtle.Render(fmt.Sprintf("[%g, %g] × %d, %s mode", res.Config.From, res.Config.To, len(res.Points), res.Config.Mode)) + "\n")
	b.WriteString(MetricLabel.Render("f   ") + SparklineChart(res.Reals(), width) + "\n")
	b.WriteString(MetricLabel.Render("f'  ") + SparklineChart(res.Duals(), width) + "\n")

	summary := fmt.Sprintf("%d advisories, %d failed, %s", len(res.Advisories), res.Failed, res.Elapsed)
	switch {
	case res.Failed > 0:
		b.WriteString(StatusError.Render(summary))
	case len(res.Advisories) > 0:
		b.WriteString(StatusWarn.Render(summary))
	default:
		b.WriteString(StatusOK.Render(summary))
	}
	b.WriteString("\n")
	return b.String()
}
