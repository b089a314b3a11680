// Package trace collects MCMC samples in memory, computes posterior
// summaries and reads and writes plain text trace databases.
package trace

import (
	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("trace")

// Trace accumulates samples of one variable. Samples are stored
// row-major.
type Trace struct {
	name    string
	dim     int
	samples []float64
}

// New creates an empty trace for a variable of the given dimension.
func New(name string, dim int) *Trace {
	if dim <= 0 {
		panic("trace dimension must be positive")
	}
	return &Trace{
		name: name,
		dim:  dim,
	}
}

// Tally appends one sample. The slice is copied.
func (t *Trace) Tally(x []float64) {
	if len(x) != t.dim {
		panic("tallied sample of wrong dimension")
	}
	t.samples = append(t.samples, x...)
}

// Name returns the variable name.
func (t *Trace) Name() string {
	return t.name
}

// Dim returns the sample dimension.
func (t *Trace) Dim() int {
	return t.dim
}

// Len returns the number of tallied samples.
func (t *Trace) Len() int {
	return len(t.samples) / t.dim
}

// Sample returns the i-th sample as a view into the trace.
func (t *Trace) Sample(i int) []float64 {
	return t.samples[i*t.dim : (i+1)*t.dim]
}

// Column returns a copy of coordinate j across all samples.
func (t *Trace) Column(j int) []float64 {
	n := t.Len()
	col := make([]float64, n)
	for i := 0; i < n; i++ {
		col[i] = t.samples[i*t.dim+j]
	}
	return col
}
