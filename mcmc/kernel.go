package mcmc

import (
	"math"
)

// Kernel identifies one of the four t-walk proposal moves.
type Kernel int

const (
	Walk Kernel = iota
	Traverse
	Blow
	Hop
	// NKernels is the number of proposal kernels.
	NKernels
)

func (k Kernel) String() string {
	switch k {
	case Walk:
		return "walk"
	case Traverse:
		return "traverse"
	case Blow:
		return "blow"
	case Hop:
		return "hop"
	}
	return "unknown"
}

// walkMove is the symmetric kernel. Masked coordinates are scaled
// along their distance to the reference point; the hastings term is
// zero. A uniform draw is consumed for every coordinate so the random
// stream does not depend on the mask.
func (t *TWalk) walkMove(x, xp []float64) {
	theta := t.settings.WalkTheta
	u := t.gen.Uniforms(len(x))
	for i := range t.prop {
		if t.phi[i] {
			z := theta / (1 + theta) * (theta*u[i]*u[i] + 2*u[i] - 1)
			t.prop[i] = x[i] + (x[i]-xp[i])*z
		} else {
			t.prop[i] = x[i]
		}
	}
	t.hastings = 0
}

// traverseMove reflects masked coordinates through the reference
// point, scaled by a single beta drawn from the two-branch transform.
func (t *TWalk) traverseMove(x, xp []float64) {
	theta := t.settings.TraverseTheta
	var beta float64
	if t.gen.Float64() < (theta-1)/(2*theta) {
		beta = math.Exp(math.Log(t.gen.Float64()) / (theta + 1))
	} else {
		beta = math.Exp(math.Log(t.gen.Float64()) / (1 - theta))
	}
	nphi := 0
	for i := range t.prop {
		if t.phi[i] {
			nphi++
			t.prop[i] = xp[i] + beta*(xp[i]-x[i])
		} else {
			t.prop[i] = x[i]
		}
	}
	t.hastings = float64(nphi-2) * math.Log(beta)
}

// blowMove perturbs masked coordinates with normal noise scaled by
// the largest masked distance between the two points. A zero scale
// marks the proposal degenerate.
func (t *TWalk) blowMove(x, xp []float64) {
	sigma := t.maskedScale(x, xp)
	if sigma == 0 {
		t.degenerate = true
		copy(t.prop, x)
		t.hastings = 0
		return
	}
	for i := range t.prop {
		if t.phi[i] {
			t.prop[i] = x[i] + sigma*t.gen.NormFloat64()
		} else {
			t.prop[i] = x[i]
		}
	}
	t.hastings = t.g(t.prop, xp, sigma) - t.g(x, xp, sigma)
}

// hopMove replaces masked coordinates with normal draws around the
// reference point, at a third of the blow scale.
func (t *TWalk) hopMove(x, xp []float64) {
	sigma := t.maskedScale(x, xp) / 3
	if sigma == 0 {
		t.degenerate = true
		copy(t.prop, x)
		t.hastings = 0
		return
	}
	for i := range t.prop {
		if t.phi[i] {
			t.prop[i] = xp[i] + sigma*t.gen.NormFloat64()
		} else {
			t.prop[i] = x[i]
		}
	}
	t.hastings = t.g(t.prop, xp, sigma) - t.g(x, xp, sigma)
}

// maskedScale returns the largest absolute coordinate difference
// between the two points over the masked coordinates.
func (t *TWalk) maskedScale(x, xp []float64) float64 {
	sigma := 0.0
	for i, on := range t.phi {
		if on {
			if d := math.Abs(xp[i] - x[i]); d > sigma {
				sigma = d
			}
		}
	}
	return sigma
}

// g is the log proposal density term shared by the blow and hop
// moves. The sum runs over masked coordinates only.
func (t *TWalk) g(h, xp []float64, sigma float64) float64 {
	k := 0
	sum := 0.0
	for i, on := range t.phi {
		if on {
			k++
			d := h[i] - xp[i]
			sum += d * d
		}
	}
	return float64(k)/2*math.Log(2*math.Pi) + float64(k)*math.Log(sigma) + 0.5*sum/(sigma*sigma)
}
