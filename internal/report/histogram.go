package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistogramRenderer draws a histogram of values into an image file.
type HistogramRenderer interface {
	Render(path, column string, values []float64, bins int) error
}

// GonumRenderer renders PNG histograms with gonum/plot.
type GonumRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// Render saves a histogram; the output format follows the file extension.
func (g GonumRenderer) Render(path, column string, values []float64, bins int) error {
	if len(values) == 0 {
		return fmt.Errorf("histogram %s: no values", column)
	}
	w, h := g.Width, g.Height
	if w == 0 {
		w = 10 * vg.Inch
	}
	if h == 0 {
		h = 6 * vg.Inch
	}

	p := plot.New()
	p.Title.Text = "Distribution: " + column
	p.X.Label.Text = column
	p.Y.Label.Text = "Frequency"

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", column, err)
	}
	hist.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 180}
	p.Add(hist)

	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save histogram %s: %w", column, err)
	}
	return nil
}

// histogramBins picks min(30, n/10+1) bins.
func histogramBins(n int) int {
	b := n/10 + 1
	if b > 30 {
		return 30
	}
	return b
}
