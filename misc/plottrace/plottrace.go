// plottrace creates a plot of one trace coordinate with its running
// mean.
package main

import (
	"flag"
	"fmt"

	"github.com/gonum/floats"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mcmcgo/twalk/trace"
)

func main() {
	in := flag.String("in", "", "trace file (e.g. db/Chain_0/normal.txt)")
	dim := flag.Int("dim", 0, "coordinate to plot")
	out := flag.String("out", "trace.png", "output image")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return
	}

	tr, err := trace.ReadTxt(*in)
	if err != nil {
		panic(err)
	}
	col := tr.Column(*dim)
	fmt.Printf("%d samples of %s\n", len(col), tr.Name())

	p, err := plot.New()
	if err != nil {
		panic(err)
	}
	p.Title.Text = tr.Name()
	p.X.Label.Text = "iteration"

	cum := make([]float64, len(col))
	floats.CumSum(cum, col)

	pts := make(plotter.XYs, len(col))
	means := make(plotter.XYs, len(col))
	for i, v := range col {
		pts[i].X = float64(i)
		pts[i].Y = v
		means[i].X = float64(i)
		means[i].Y = cum[i] / float64(i+1)
	}

	err = plotutil.AddLines(p,
		"samples", pts,
		"running mean", means)
	if err != nil {
		panic(err)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, *out); err != nil {
		panic(err)
	}
}
