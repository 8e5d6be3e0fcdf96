package exporter

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"edustats/internal/files"
	"edustats/pkg/contracts/domain"
)

// ErrNoScores is returned when there is nothing to chart
var ErrNoScores = errors.New("no scores to chart")

// WriteYLSChart renders the ranked scores as a PNG bar chart
func WriteYLSChart(path string, entries []domain.ScoreEntry) error {
	values := make(plotter.Values, 0, len(entries))
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.YLSScore == nil {
			continue
		}
		values = append(values, *e.YLSScore)
		labels = append(labels, e.CountryCode)
	}
	if len(values) == 0 {
		return ErrNoScores
	}

	p := plot.New()
	p.Title.Text = "Youth Learning Score, top countries"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Country"
	p.Y.Label.Text = "YLS (0-100)"
	p.Y.Min = 0
	p.Y.Max = 105

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return files.WriteAtomic(path, func(out io.Writer) error {
		_, err := wt.WriteTo(out)
		return err
	})
}
