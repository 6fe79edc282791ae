package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/milosgajdos/go-trajeval/trajectory"
)

// NewErrorPlot creates a new plot of the metric error series errs indexed by
// sample. It returns error if errs is empty or the plotter fails to be created.
func NewErrorPlot(errs []float64, name string) (*plot.Plot, error) {
	if len(errs) == 0 {
		return nil, fmt.Errorf("no errors to plot")
	}

	p := plot.New()

	p.Title.Text = name
	p.X.Label.Text = "index"
	p.Y.Label.Text = "error"

	pts := make(plotter.XYs, len(errs))
	for i, e := range errs {
		pts[i].X = float64(i)
		pts[i].Y = e
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %v", err)
	}
	line.Color = color.RGBA{R: 255, B: 128, A: 255}

	p.Add(line)
	p.Legend.Add(name, line)
	p.Legend.Top = true

	return p, nil
}

// NewTrajPlot creates a new XY plot of a reference and an estimated
// trajectory. It returns error if either trajectory is nil or a plotter
// fails to be created.
func NewTrajPlot(ref, est *trajectory.Trajectory) (*plot.Plot, error) {
	if ref == nil || est == nil {
		return nil, fmt.Errorf("invalid trajectory: %v, %v", ref, est)
	}

	p := plot.New()

	p.Title.Text = "Trajectories"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Legend.Top = true

	refLine, err := plotter.NewLine(xyPoints(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %v", err)
	}
	refLine.Color = color.RGBA{R: 169, G: 169, B: 169, A: 255}

	p.Add(refLine)
	p.Legend.Add("reference", refLine)

	estScatter, err := plotter.NewScatter(xyPoints(est))
	if err != nil {
		return nil, fmt.Errorf("failed to create scatter: %v", err)
	}
	estScatter.GlyphStyle.Color = color.RGBA{G: 255, A: 128}
	estScatter.Shape = draw.CrossGlyph{}
	estScatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(estScatter)
	p.Legend.Add("estimate", estScatter)

	return p, nil
}

func xyPoints(tr *trajectory.Trajectory) plotter.XYs {
	pts := make(plotter.XYs, tr.Len())
	pos := tr.Positions()
	for i := 0; i < tr.Len(); i++ {
		pts[i].X = pos.At(i, 0)
		pts[i].Y = pos.At(i, 1)
	}
	return pts
}
