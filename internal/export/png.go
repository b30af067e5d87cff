package export

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 10 * vg.Centimeter
)

// PNG draws every series on one set of axes against time.
func PNG(w io.Writer, title string, series []Series, width, height vg.Length) error {
	if len(series) == 0 {
		return ErrNoSeries
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time [s]"
	if len(series) == 1 {
		p.Y.Label.Text = series[0].Name
	}
	p.Add(plotter.NewGrid())

	args := make([]any, 0, 2*len(series))
	for _, s := range series {
		if len(s.T) != len(s.Values) {
			return fmt.Errorf("export: %q has %d times and %d values", s.Name, len(s.T), len(s.Values))
		}
		xys := make(plotter.XYs, len(s.T))
		for i := range s.T {
			xys[i].X = s.T[i]
			xys[i].Y = s.Values[i]
		}
		args = append(args, s.Name, xys)
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func SavePNG(path, title string, series []Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return PNG(f, title, series, DefaultWidth, DefaultHeight)
}
