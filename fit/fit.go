// Package fit computes maximum a posteriori estimates used to warm
// start the samplers.
package fit

import (
	"fmt"
	"math"

	opt "github.com/gonum/optimize"
	"github.com/op/go-logging"

	"github.com/mcmcgo/twalk/mcmc"
)

// log is the global logging variable.
var log = logging.MustGetLogger("fit")

// MAPSettings are the tunables of the MAP optimization.
type MAPSettings struct {
	// Iterations bounds the number of major optimizer iterations.
	Iterations int
	// UseGradient selects BFGS with finite difference gradients
	// instead of Nelder-Mead.
	UseGradient bool
	// DH is the finite difference step.
	DH float64
}

// NewMAPSettings returns the defaults.
func NewMAPSettings() *MAPSettings {
	return &MAPSettings{
		Iterations: 500,
		DH:         1e-6,
	}
}

// Result is the outcome of a MAP optimization.
type Result struct {
	// X is the best point found.
	X []float64 `json:"x"`
	// LogP is the log-probability at X.
	LogP float64 `json:"logP"`
	// Evaluations is the number of density evaluations.
	Evaluations int `json:"evaluations"`
}

// problem adapts a stochastic variable for the optimizer. It tracks
// the best point seen across all evaluations.
type problem struct {
	v     mcmc.Stochastic
	dH    float64
	calls int

	maxP    float64
	maxPPar []float64
}

func (p *problem) Func(x []float64) float64 {
	p.calls++
	p.v.SetValue(x)
	l, err := p.v.LogP()
	if err != nil {
		return math.Inf(+1)
	}
	if l > p.maxP {
		p.maxP = l
		p.maxPPar = append(p.maxPPar[:0], x...)
	}
	return -l
}

func (p *problem) Grad(x, grad []float64) {
	l1 := p.Func(x)
	xh := append([]float64(nil), x...)
	for i := range x {
		xh[i] = x[i] + p.dH
		grad[i] = (p.Func(xh) - l1) / p.dH
		xh[i] = x[i]
	}
}

func (p *problem) Init(*opt.FunctionInfo) error {
	return nil
}

func (p *problem) Record(l *opt.Location, et opt.EvaluationType, it opt.IterationType, s *opt.Stats) error {
	if it == opt.MajorIteration {
		log.Debugf("MAP iteration %d, logP=%v", s.MajorIterations, -l.F)
	}
	return nil
}

// MAP maximizes the log-probability of a variable starting from its
// current value and leaves the variable at the best point found. On
// failure the variable is restored to the starting point.
func MAP(v mcmc.Stochastic, settings *MAPSettings) (*Result, error) {
	if settings == nil {
		settings = NewMAPSettings()
	}
	x0 := append([]float64(nil), v.Value()...)
	p := &problem{
		v:    v,
		dH:   settings.DH,
		maxP: math.Inf(-1),
	}

	s := opt.DefaultSettings()
	s.MajorIterations = settings.Iterations
	s.GradientThreshold = 1e-3
	s.Recorder = p

	var method opt.Method = &opt.NelderMead{}
	if settings.UseGradient {
		method = &opt.BFGS{}
	}

	_, err := opt.Local(p, x0, s, method)
	if err != nil {
		log.Warningf("Optimization stopped: %v", err)
	}

	if p.maxPPar == nil {
		v.SetValue(x0)
		return nil, fmt.Errorf("fit: no valid point found for %s", v.Name())
	}
	v.SetValue(p.maxPPar)
	res := &Result{
		X:           append([]float64(nil), p.maxPPar...),
		LogP:        p.maxP,
		Evaluations: p.calls,
	}
	log.Infof("MAP logP=%v after %d evaluations", res.LogP, res.Evaluations)
	return res, nil
}
