package trace

import (
	"math"
	"sort"
	"strconv"

	"github.com/gonum/floats"
	"github.com/gonum/mathext"
	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat"
)

// quantilePoints are the reported posterior percentiles.
var quantilePoints = []float64{2.5, 25, 50, 75, 97.5}

// DimSummary is the posterior summary of one trace coordinate.
type DimSummary struct {
	// N is the number of samples.
	N int `json:"n"`
	// Mean is the posterior mean.
	Mean float64 `json:"mean"`
	// SD is the posterior standard deviation.
	SD float64 `json:"sd"`
	// MCError is the Monte Carlo standard error estimated from
	// batch means.
	MCError float64 `json:"mcError"`
	// Min and Max are the sample extremes.
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Quantiles are the posterior percentiles, keyed by percent.
	Quantiles map[string]float64 `json:"quantiles"`
	// CI95 is the 95% interval of the mean given the Monte Carlo
	// error.
	CI95 [2]float64 `json:"ci95"`
}

// Summary computes per-coordinate posterior summaries of a trace.
func Summary(t *Trace) []DimSummary {
	res := make([]DimSummary, t.Dim())
	z := mathext.NormalQuantile(0.975)
	for j := range res {
		col := t.Column(j)
		if len(col) == 0 {
			continue
		}
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)

		s := DimSummary{
			N:         len(col),
			Mean:      stat.Mean(col, nil),
			MCError:   mcError(col),
			Min:       floats.Min(sorted),
			Max:       floats.Max(sorted),
			Quantiles: make(map[string]float64, len(quantilePoints)),
		}
		if len(col) > 1 {
			s.SD = stat.StdDev(col, nil)
		}
		for _, p := range quantilePoints {
			key := strconv.FormatFloat(p, 'g', -1, 64)
			s.Quantiles[key] = stat.Quantile(p/100, stat.Empirical, sorted, nil)
		}
		s.CI95 = [2]float64{s.Mean - z*s.MCError, s.Mean + z*s.MCError}
		res[j] = s
	}
	return res
}

// mcError estimates the Monte Carlo standard error of the mean with
// the batch means method.
func mcError(x []float64) float64 {
	const batches = 20
	n := len(x)
	if n < 2 {
		return 0
	}
	if n < 2*batches {
		return stat.StdDev(x, nil) / math.Sqrt(float64(n))
	}
	size := n / batches
	means := make([]float64, batches)
	for b := 0; b < batches; b++ {
		means[b] = stat.Mean(x[b*size:(b+1)*size], nil)
	}
	return stat.StdDev(means, nil) / math.Sqrt(batches)
}

// Covariance returns the sample covariance matrix of a trace.
func Covariance(t *Trace) *mat64.SymDense {
	m := mat64.NewDense(t.Len(), t.Dim(), append([]float64(nil), t.samples...))
	return stat.CovarianceMatrix(nil, m, nil)
}
