package report

import (
	"image/color"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/tourney/pkg/errors"
	"github.com/YuminosukeSato/tourney/tournament"
)

var (
	barColor    = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	winnerColor = color.RGBA{R: 218, G: 165, B: 32, A: 255}
)

// AccuracyChart builds a bar chart of every candidate's cross-validated
// accuracy. Failed candidates appear as empty bars. The winner, if any, is
// drawn in its own colour.
func AccuracyChart(results []tournament.EvaluationResult, best *tournament.EvaluationResult) (*plot.Plot, error) {
	if len(results) == 0 {
		return nil, errors.NewValueError("report.AccuracyChart", "no results to plot")
	}

	p := plot.New()
	p.Title.Text = "Cross-validated accuracy"
	p.Y.Label.Text = "Accuracy (%)"
	p.Y.Min = 0
	p.Y.Max = 100

	values := plotter.Values(lo.Map(results, func(r tournament.EvaluationResult, _ int) float64 {
		return r.AccuracyPercent
	}))
	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, errors.Wrap(err, "build bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = barColor
	p.Add(bars)

	if best != nil {
		idx := lo.IndexOf(lo.Map(results, func(r tournament.EvaluationResult, _ int) string { return r.Name }), best.Name)
		if idx >= 0 {
			highlight := make(plotter.Values, len(results))
			highlight[idx] = best.AccuracyPercent
			win, err := plotter.NewBarChart(highlight, vg.Points(18))
			if err != nil {
				return nil, errors.Wrap(err, "build winner bar")
			}
			win.LineStyle.Width = vg.Length(0)
			win.Color = winnerColor
			p.Add(win)
			p.Legend.Add("winner", win)
			p.Legend.Top = true
		}
	}

	p.NominalX(lo.Map(results, func(r tournament.EvaluationResult, _ int) string {
		return shortName(r.Name)
	})...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight
	return p, nil
}

// SaveAccuracyChart writes the chart to path. The format follows the file
// extension (png, svg, pdf, ...).
func SaveAccuracyChart(results []tournament.EvaluationResult, best *tournament.EvaluationResult, path string) error {
	p, err := AccuracyChart(results, best)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save chart %s", path)
	}
	return nil
}

// shortName keeps the algorithm part of a candidate name and its k, e.g.
// "IBk (k=3, Norm+Nom2Bin)" becomes "IBk k=3".
func shortName(name string) string {
	algo, rest, ok := strings.Cut(name, " (")
	if !ok {
		return name
	}
	first, _, _ := strings.Cut(strings.TrimSuffix(rest, ")"), ",")
	if strings.Contains(first, "=") {
		return algo + " " + first
	}
	return algo
}
