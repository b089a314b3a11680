package mcmc

import (
	"testing"

	"github.com/mcmcgo/twalk/rng"
)

type recordTally struct {
	rows [][]float64
}

func (r *recordTally) Tally(x []float64) {
	r.rows = append(r.rows, append([]float64(nil), x...))
}

type fakeCheckpoint struct {
	old      bool
	saves    int
	finals   int
	lastIter int
}

func (f *fakeCheckpoint) Old() bool {
	return f.old
}

func (f *fakeCheckpoint) Save(s *State, iter int, final bool) error {
	f.saves++
	f.lastIter = iter
	if final {
		f.finals++
	}
	return nil
}

func newTestChain(tst *testing.T, seed int64) (*Chain, *testStochastic) {
	gen := rng.New(seed)
	v := newTestStochastic("x", []float64{0.1, -0.2, 0.3, 0.4, -0.5}, stdNormalLogP, gen)
	t, err := NewTWalk(v, nil, gen)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	c := NewChain(t)
	c.Quiet = true
	return c, v
}

func TestChainTally(tst *testing.T) {
	c, v := newTestChain(tst, 31)
	out := &recordTally{}
	c.Iterations = 100
	c.Burn = 20
	c.Thin = 2
	c.Out = out
	if err := c.Run(); err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(out.rows) != 40 {
		tst.Errorf("Tallied %d samples, want 40", len(out.rows))
	}
	for _, row := range out.rows {
		if len(row) != v.Len() {
			tst.Fatalf("Tallied row of length %d, want %d", len(row), v.Len())
		}
	}
}

func TestChainNoThin(tst *testing.T) {
	c, _ := newTestChain(tst, 32)
	out := &recordTally{}
	c.Iterations = 50
	c.Out = out
	if err := c.Run(); err != nil {
		tst.Fatal("Error: ", err)
	}
	if len(out.rows) != 50 {
		tst.Errorf("Tallied %d samples, want 50", len(out.rows))
	}
	if c.NAccepted()+c.NRejected() != 50 {
		tst.Errorf("Accepted %d + rejected %d != 50 steps", c.NAccepted(), c.NRejected())
	}
}

func TestChainCheckpoint(tst *testing.T) {
	c, _ := newTestChain(tst, 33)
	ck := &fakeCheckpoint{old: true}
	c.Iterations = 10
	c.Checkpoint = ck
	if err := c.Run(); err != nil {
		tst.Fatal("Error: ", err)
	}
	if ck.saves != 11 || ck.finals != 1 {
		tst.Errorf("Expected 10 periodic saves and 1 final, got %d saves %d final",
			ck.saves, ck.finals)
	}
	if ck.lastIter != 10 {
		tst.Errorf("Final save at iteration %d, want 10", ck.lastIter)
	}

	c2, _ := newTestChain(tst, 34)
	ck2 := &fakeCheckpoint{}
	c2.Iterations = 10
	c2.Checkpoint = ck2
	if err := c2.Run(); err != nil {
		tst.Fatal("Error: ", err)
	}
	if ck2.saves != 1 || ck2.finals != 1 {
		tst.Errorf("Expected only the final save, got %d saves %d final", ck2.saves, ck2.finals)
	}
}

func TestChainAcceptance(tst *testing.T) {
	c, _ := newTestChain(tst, 35)
	c.Iterations = 200
	if err := c.Run(); err != nil {
		tst.Fatal("Error: ", err)
	}
	rate := c.Acceptance()
	if rate <= 0 || rate >= 1 {
		tst.Errorf("Acceptance rate %v outside (0, 1)", rate)
	}
	want := float64(c.NAccepted()) / float64(c.NAccepted()+c.NRejected())
	if !appreq(rate, want) {
		tst.Errorf("Acceptance rate %v, want %v", rate, want)
	}
}

func TestChainTuneMetropolis(tst *testing.T) {
	gen := rng.New(36)
	v := newTestStochastic("x", []float64{0}, stdNormalLogP, gen)
	s := NewMetropolisSettings()
	// A tiny proposal scale accepts almost everything; tuning must
	// grow it.
	s.SD = 1e-6
	m := NewMetropolis(v, s, gen)
	c := NewChain(m)
	c.Quiet = true
	c.Iterations = 1000
	c.Burn = 1000
	c.AccPeriod = 100
	c.Tuning = true
	if err := c.Run(); err != nil {
		tst.Fatal("Error: ", err)
	}
	if m.SD() <= 1e-6 {
		tst.Errorf("Tuning did not grow the proposal scale: %v", m.SD())
	}
}
