package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dualx/internal/chain"
	"github.com/san-kum/dualx/internal/dual"
)

const (
	sparkSamples = 48
	minStep      = 1e-9
	maxStep      = 1e3
)

// Explorer is a bubbletea model that walks x along the real line and shows
// f(x), f'(x) and the advisories or error raised at each position.
type Explorer struct {
	chain  *chain.Chain
	x0     float64
	x      float64
	step   float64
	width  int
	result dual.Number
	err    error
	slopes []float64
}

func NewExplorer(c *chain.Chain, x0, step float64) Explorer {
	if step <= 0 {
		step = 0.1
	}
	e := Explorer{chain: c, x0: x0, x: x0, step: step, width: 80}
	e.refresh()
	return e
}

// X returns the current input.
func (e Explorer) X() float64 { return e.x }

// Step returns the current increment.
func (e Explorer) Step() float64 { return e.step }

func (e *Explorer) refresh() {
	e.result, e.err = e.chain.Eval(dual.Variable(e.x))

	xs := make([]float64, sparkSamples)
	e.slopes = make([]float64, sparkSamples)
	half := float64(sparkSamples / 2)
	for i := range xs {
		xs[i] = e.x + (float64(i)-half)*e.step
	}
	for i, x := range xs {
		y, err := e.chain.Eval(dual.Variable(x))
		if err != nil {
			e.slopes[i] = math.NaN()
			continue
		}
		e.slopes[i], _ = y.Dual().Float()
	}
}

func (e Explorer) Init() tea.Cmd { return nil }

func (e Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return e, tea.Quit
		case "left", "h":
			e.x -= e.step
		case "right", "l":
			e.x += e.step
		case "+", "=":
			e.step = math.Min(e.step*2, maxStep)
		case "-", "_":
			e.step = math.Max(e.step/2, minStep)
		case "r":
			e.x = e.x0
		default:
			return e, nil
		}
		e.refresh()
	case tea.WindowSizeMsg:
		e.width = msg.Width
	}
	return e, nil
}

func (e Explorer) View() string {
	var b strings.Builder
	b.WriteString("\n  " + Title.Render("f(x) = "+e.chain.String()) + "\n")
	b.WriteString("  " + Separator(min(max(e.width-4, 10), 60)) + "\n\n")

	b.WriteString(fmt.Sprintf("  %s %s   %s %s\n\n",
		MetricLabel.Render("x"), MetricValue.Render(fmt.Sprintf("%.10g", e.x)),
		MetricLabel.Render("step"), MetricValue.Render(fmt.Sprintf("%g", e.step))))

	if e.err != nil {
		b.WriteString("  " + StatusError.Render(e.err.Error()) + "\n")
	} else {
		v, _ := e.result.Real().Float()
		d, _ := e.result.Dual().Float()
		b.WriteString(fmt.Sprintf("  %s  %s\n", MetricLabel.Render("f(x) "), MetricValue.Render(fmt.Sprintf("%.15g", v))))
		b.WriteString(fmt.Sprintf("  %s  %s\n", MetricLabel.Render("f'(x)"), MetricValue.Render(fmt.Sprintf("%.15g", d))))
		for _, a := range e.result.Advisories() {
			b.WriteString("  " + StatusWarn.Render("! "+a.String()) + "\n")
		}
	}

	b.WriteString("\n  " + MetricLabel.Render("f' ") + SparklineChart(e.slopes, sparkSamples) + "\n\n")
	b.WriteString("  " + KeyHint.Render("←/→ move  +/- step  r reset  q quit") + "\n")
	return b.String()
}

// RunExplorer starts the explorer full screen.
func RunExplorer(c *chain.Chain, x0, step float64) error {
	_, err := tea.NewProgram(NewExplorer(c, x0, step), tea.WithAltScreen()).Run()
	return err
}
