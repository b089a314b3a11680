package main

import (
	"github.com/mcmcgo/twalk/fit"
	"github.com/mcmcgo/twalk/trace"
)

// RunSummary is storing twalk run summary information.
type RunSummary struct {
	// Version stores twalk version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Target is the sampled target name.
	Target string `json:"target"`
	// Dim is the target dimension.
	Dim int `json:"dim"`
	// Sampler is the step method used.
	Sampler string `json:"sampler"`
	// Iterations is the number of iterations performed in this run.
	Iterations int `json:"iterations"`
	// Samples is the number of tallied samples.
	Samples int `json:"samples"`
	// Acceptance is the overall acceptance rate.
	Acceptance float64 `json:"acceptance"`
	// FinalLogP is the log-probability of the final point.
	FinalLogP float64 `json:"finalLogP,omitempty"`
	// Kernels stores per-kernel acceptance statistics (t-walk only).
	Kernels []KernelSummary `json:"kernels,omitempty"`
	// MAP is the warm start optimization result if requested.
	MAP *fit.Result `json:"map,omitempty"`
	// Posterior stores per-coordinate posterior summaries.
	Posterior []trace.DimSummary `json:"posterior,omitempty"`
	// Resumed indicates the run continued from a checkpoint.
	Resumed bool `json:"resumed,omitempty"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
}

// KernelSummary stores acceptance statistics of one proposal kernel.
type KernelSummary struct {
	// Name is the kernel name.
	Name string `json:"name"`
	// Accepted is the number of accepted proposals.
	Accepted int `json:"accepted"`
	// Rejected is the number of rejected proposals.
	Rejected int `json:"rejected"`
}
