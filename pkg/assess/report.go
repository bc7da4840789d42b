package assess

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"text/tabwriter"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	plotCols      = 3
	panelWidth    = vg.Length(240)
	panelHeight   = vg.Length(180)
	histogramBins = 16
)

// Report renders an assessment result as a numeric table and as a combined
// multi-panel diagnostic figure. The underlying Result stays accessible so
// callers can chain further analysis, e.g. overlaying several candidate
// models for the same observed graph.
type Report struct {
	Result *Result
}

// NewReport wraps a result for rendering.
func NewReport(res *Result) *Report {
	return &Report{Result: res}
}

// Flagged returns the names of statistics flagged extreme, in registry order.
func (rp *Report) Flagged() []string {
	var names []string
	for _, name := range rp.Result.Names {
		if sr := rp.Result.Stats[name]; sr != nil && sr.Extreme {
			names = append(names, name)
		}
	}
	return names
}

// WriteTable writes the raw numeric table: statistic, observed value,
// empirical mean and standard deviation, percentile rank, valid sample
// size, and the extremity flag.
func (rp *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATISTIC\tOBSERVED\tMEAN\tSD\tRANK\tN\tFLAG")

	for _, name := range rp.Result.Names {
		sr := rp.Result.Stats[name]
		if sr == nil {
			continue
		}
		switch {
		case sr.Vector:
			fmt.Fprintf(tw, "%s\tvector(%d)\t-\t-\t-\t%d\t\n", sr.Name, len(sr.Observed.Vector), sr.NValid)
		case !sr.Scored:
			reason := "no valid samples"
			if sr.ObservedErr != "" {
				reason = sr.ObservedErr
			}
			fmt.Fprintf(tw, "%s\tunscored (%s)\t-\t-\t-\t%d\t\n", sr.Name, reason, sr.NValid)
		default:
			flag := ""
			if sr.Extreme {
				flag = "EXTREME"
			}
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%d\t%s\n",
				sr.Name, sr.Observed.Scalar, sr.Mean, sr.StdDev, sr.PercentileRank, sr.NValid, flag)
		}
	}

	fmt.Fprintf(tw, "\ndraws: %d, failures: %d, alpha: %.3f\n",
		rp.Result.NumIter, rp.Result.Failures, rp.Result.Alpha)
	return tw.Flush()
}

// SavePlot writes the combined multi-panel figure as a PNG: one panel per
// statistic, each showing the empirical sample histogram with the observed
// value marked. Vector statistics are drawn as overlaid histograms of the
// pooled simulated values and the observed vector.
func (rp *Report) SavePlot(path string) error {
	panels, err := rp.panels()
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		return fmt.Errorf("report: no drawable statistics")
	}

	cols := plotCols
	if len(panels) < cols {
		cols = len(panels)
	}
	rows := (len(panels) + cols - 1) / cols

	img := vgimg.New(vg.Length(cols)*panelWidth, vg.Length(rows)*panelHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter * 2, PadY: vg.Millimeter * 2,
		PadTop: vg.Millimeter, PadBottom: vg.Millimeter,
		PadLeft: vg.Millimeter, PadRight: vg.Millimeter,
	}

	grid := make([][]*plot.Plot, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]*plot.Plot, cols)
		for c := 0; c < cols; c++ {
			if i := r*cols + c; i < len(panels) {
				grid[r][c] = panels[i]
			}
		}
	}

	canvases := plot.Align(grid, tiles, dc)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if grid[r][c] != nil {
				grid[r][c].Draw(canvases[r][c])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

func (rp *Report) panels() ([]*plot.Plot, error) {
	var panels []*plot.Plot
	for _, name := range rp.Result.Names {
		sr := rp.Result.Stats[name]
		if sr == nil {
			continue
		}

		var (
			p   *plot.Plot
			err error
		)
		if sr.Vector {
			p, err = vectorPanel(sr)
		} else {
			p, err = scalarPanel(sr)
		}
		if err != nil {
			return nil, fmt.Errorf("report: panel for %s: %w", name, err)
		}
		if p != nil {
			panels = append(panels, p)
		}
	}
	return panels, nil
}

func scalarPanel(sr *StatResult) (*plot.Plot, error) {
	if sr.NValid == 0 {
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = sr.Name
	p.X.Label.Text = sr.Name
	p.Y.Label.Text = "count"

	// A zero-variance sample has no drawable histogram; the observed
	// marker still tells the story.
	if h, err := plotter.NewHist(plotter.Values(sr.Samples), histogramBins); err == nil {
		h.FillColor = color.NRGBA{R: 100, G: 140, B: 190, A: 255}
		p.Add(h)
	}

	if sr.ObservedErr == "" {
		marker, err := observedMarker(sr.Observed.Scalar, binMaxCount(sr.Samples))
		if err != nil {
			return nil, err
		}
		p.Add(marker)
	}
	return p, nil
}

func vectorPanel(sr *StatResult) (*plot.Plot, error) {
	var pooled []float64
	for _, v := range sr.VectorSamples {
		pooled = append(pooled, v...)
	}
	if len(pooled) == 0 && len(sr.Observed.Vector) == 0 {
		return nil, nil
	}

	p := plot.New()
	p.Title.Text = sr.Name
	p.X.Label.Text = "value"
	p.Y.Label.Text = "density"

	if len(pooled) > 0 {
		h, err := plotter.NewHist(plotter.Values(pooled), histogramBins)
		if err != nil {
			return nil, err
		}
		h.Normalize(1)
		h.FillColor = color.NRGBA{R: 100, G: 140, B: 190, A: 160}
		p.Add(h)
		p.Legend.Add("simulated", h)
	}
	if len(sr.Observed.Vector) > 0 {
		h, err := plotter.NewHist(plotter.Values(sr.Observed.Vector), histogramBins)
		if err != nil {
			return nil, err
		}
		h.Normalize(1)
		h.FillColor = color.NRGBA{R: 196, G: 78, B: 60, A: 160}
		p.Add(h)
		p.Legend.Add("observed", h)
	}
	return p, nil
}

func observedMarker(observed, yMax float64) (*plotter.Line, error) {
	if yMax <= 0 {
		yMax = 1
	}
	line, err := plotter.NewLine(plotter.XYs{
		{X: observed, Y: 0},
		{X: observed, Y: yMax},
	})
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = color.NRGBA{R: 196, G: 78, B: 60, A: 255}
	line.LineStyle.Width = vg.Points(1.5)
	return line, nil
}

// binMaxCount is the tallest bin of an equal-width histogram over samples,
// used to size the observed-value marker.
func binMaxCount(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	min, max := samples[0], samples[len(samples)-1]
	if min == max {
		return float64(len(samples))
	}
	counts := make([]int, histogramBins)
	width := (max - min) / float64(histogramBins)
	for _, s := range samples {
		i := int((s - min) / width)
		if i >= histogramBins {
			i = histogramBins - 1
		}
		counts[i]++
	}
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	return float64(best)
}
