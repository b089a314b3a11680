package mcmc

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"
)

// Tallier receives sampled values.
type Tallier interface {
	Tally(x []float64)
}

// Checkpointer periodically persists resumable sampler state.
type Checkpointer interface {
	// Old reports whether the last save is older than the checkpoint
	// period.
	Old() bool
	// Save persists the state.
	Save(s *State, iter int, final bool) error
}

// Chain drives a sampler for a fixed number of iterations with
// burn-in, thinning, periodic reporting, tuning and checkpointing.
type Chain struct {
	Sampler

	// Iterations is the number of steps to run.
	Iterations int
	// Burn is the number of initial iterations not tallied.
	Burn int
	// Thin keeps every thin-th post-burn sample (0 and 1 keep all).
	Thin int
	// AccPeriod is the interval of acceptance-rate reports, and of
	// tuning when enabled.
	AccPeriod int
	// RepPeriod is the interval of trajectory report lines.
	RepPeriod int
	// Tuning enables proposal-scale adaptation during burn-in.
	Tuning bool
	// Quiet suppresses the trajectory output.
	Quiet bool

	// Out receives post-burn-in samples when the sampler tallies.
	Out Tallier
	// Checkpoint, when set, is saved whenever it reports being old.
	Checkpoint Checkpointer

	i       int
	sig     chan os.Signal
	elapsed float64
}

// NewChain creates a chain with default reporting periods.
func NewChain(s Sampler) *Chain {
	return &Chain{
		Sampler:    s,
		Iterations: 10000,
		AccPeriod:  200,
		RepPeriod:  10,
	}
}

// WatchSignals makes Run stop gracefully on the given signals.
func (c *Chain) WatchSignals(sigs ...os.Signal) {
	c.sig = make(chan os.Signal, 1)
	signal.Notify(c.sig, sigs...)
}

// Run drives the sampler, reporting, tallying and checkpointing on
// the way. It returns the first step error, if any.
func (c *Chain) Run() error {
	start := time.Now()
	c.PrintHeader()
	lastAcc := c.NAccepted()
	lastRej := c.NRejected()
	lastReported := -1
Iter:
	for c.i = 0; c.i < c.Iterations; c.i++ {
		if c.i > 0 && c.AccPeriod > 0 && c.i%c.AccPeriod == 0 {
			acc := c.NAccepted() - lastAcc
			rej := c.NRejected() - lastRej
			rate := 0.0
			if acc+rej > 0 {
				rate = float64(acc) / float64(acc+rej)
			}
			log.Infof("Acceptance rate %.2f%%", 100*rate)
			if c.Tuning && c.i <= c.Burn {
				c.Sampler.Tune(rate)
			}
			lastAcc, lastRej = c.NAccepted(), c.NRejected()
		}

		if err := c.Step(); err != nil {
			return err
		}

		if c.RepPeriod > 0 && c.i%c.RepPeriod == 0 {
			c.PrintLine()
			lastReported = c.i
		}

		if c.Out != nil && c.Tally() && c.i >= c.Burn &&
			(c.Thin <= 1 || (c.i-c.Burn)%c.Thin == 0) {
			c.Out.Tally(c.Variable().Value())
		}

		if c.Checkpoint != nil && c.Checkpoint.Old() {
			if err := c.Checkpoint.Save(c.State(), c.i, false); err != nil {
				log.Error("Error saving checkpoint: ", err)
			}
		}

		select {
		case s := <-c.sig:
			log.Warningf("Received signal %v, exiting.", s)
			break Iter
		default:
		}
	}
	if c.i != lastReported {
		c.PrintLine()
	}
	if c.Checkpoint != nil {
		if err := c.Checkpoint.Save(c.State(), c.i, true); err != nil {
			log.Error("Error saving checkpoint: ", err)
		}
	}
	c.elapsed = time.Since(start).Seconds()
	log.Noticef("Sampling time: %v", time.Since(start))
	return nil
}

// PrintHeader prints the trajectory header.
func (c *Chain) PrintHeader() {
	if c.Quiet {
		return
	}
	fmt.Printf("iteration\tlogP\t%s\n", strings.Join(c.names(), "\t"))
}

// PrintLine prints one trajectory line.
func (c *Chain) PrintLine() {
	if c.Quiet {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d\t%f", c.i, c.LogP())
	for _, x := range c.Variable().Value() {
		fmt.Fprintf(&b, "\t%f", x)
	}
	fmt.Println(b.String())
}

func (c *Chain) names() []string {
	v := c.Variable()
	if v.Len() == 1 {
		return []string{v.Name()}
	}
	names := make([]string, v.Len())
	for i := range names {
		names[i] = fmt.Sprintf("%s[%d]", v.Name(), i)
	}
	return names
}

// Acceptance returns the overall acceptance rate so far.
func (c *Chain) Acceptance() float64 {
	acc, rej := c.NAccepted(), c.NRejected()
	if acc+rej == 0 {
		return 0
	}
	return float64(acc) / float64(acc+rej)
}

// Elapsed returns the wall time of the last Run in seconds.
func (c *Chain) Elapsed() float64 {
	return c.elapsed
}

// Iteration returns the current iteration number.
func (c *Chain) Iteration() int {
	return c.i
}
