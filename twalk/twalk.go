/*

Twalk samples continuous distributions with the t-walk, the
general-purpose self-adjusting MCMC sampler of Christen and Fox
(2010). A small collection of built-in targets is included for
experiments and calibration; a random-walk Metropolis sampler is
provided for the low-dimensional cases the t-walk is not suited for.

The basic usage of twalk looks like this:

	twalk normal

, this will sample a 10-dimensional standard normal with the t-walk.

You can change the target and the sampler:

	twalk -dim 2 -sampler metropolis normal

The above will sample a two-dimensional standard normal with the
Metropolis sampler instead.

To see all the options run:

	twalk -h

*/
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"github.com/mcmcgo/twalk/checkpoint"
	"github.com/mcmcgo/twalk/fit"
	"github.com/mcmcgo/twalk/mcmc"
	"github.com/mcmcgo/twalk/model"
	"github.com/mcmcgo/twalk/rng"
	"github.com/mcmcgo/twalk/trace"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("twalk")
var formatter = logging.MustStringFormatter(`%{message}`)

// checkpointKey is the bolt record key for the sampler checkpoint.
var checkpointKey = []byte("chain")

// seedFromTime records whether the seed was generated from time; a
// resumed run then reuses the checkpoint seed.
var seedFromTime = false

// readData reads one observation per line from a file. Empty lines
// and lines starting with # are skipped.
func readData(fn string) (data []float64, err error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("Cannot parse observation %q", line)
		}
		data = append(data, v)
	}
	return data, scanner.Err()
}

// parseKernelWeights parses a comma separated list of four kernel
// weights.
func parseKernelWeights(s string) (w [mcmc.NKernels]float64, err error) {
	fields := strings.Split(s, ",")
	if len(fields) != int(mcmc.NKernels) {
		return w, fmt.Errorf("Expected %d kernel weights, got %d", int(mcmc.NKernels), len(fields))
	}
	for i, f := range fields {
		w[i], err = strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return w, fmt.Errorf("Invalid kernel weight: %s", f)
		}
	}
	return w, nil
}

// getTargetFromString returns a sampling target from a string and
// other parameters.
func getTargetFromString(target string, dim int, data []float64, gen *rng.Generator) (*model.Target, error) {
	switch target {
	case "normal":
		log.Info("Using standard normal target")
		log.Infof("%d dimensions", dim)
		return model.NewNormal(dim, gen), nil
	case "mvnormal":
		log.Info("Using equicorrelated normal target")
		log.Infof("%d dimensions, correlation %v", dim, *rho)
		return model.NewMVNormal(dim, *rho, gen)
	case "banana":
		log.Info("Using banana-shaped target")
		log.Infof("a=%v, b=%v", *bananaA, *bananaB)
		return model.NewBanana(*bananaA, *bananaB, gen), nil
	case "gamma":
		log.Info("Using gamma target")
		log.Infof("shape=%v, rate=%v", *gammaShape, *gammaRate)
		return model.NewGamma(*gammaShape, *gammaRate, gen), nil
	case "posterior":
		log.Info("Using normal posterior target")
		if len(data) < 2 {
			return nil, errors.New("Posterior target needs at least two observations")
		}
		return model.NewNormalPosterior(data, gen), nil
	}
	return nil, fmt.Errorf("Unknown target specification: %s", target)
}

// getSamplerFromString returns a sampler from a string.
func getSamplerFromString(method string, tg *model.Target, gen *rng.Generator) (mcmc.Sampler, error) {
	switch method {
	case "twalk":
		log.Info("Using t-walk sampler")
		s := mcmc.NewTWalkSettings()
		s.N1 = *n1
		s.WalkTheta = *walkTheta
		s.TraverseTheta = *traverseTheta
		s.Support = tg.Support
		w, err := parseKernelWeights(*kernelWeights)
		if err != nil {
			return nil, err
		}
		s.KernelWeights = w
		return mcmc.NewTWalk(tg, s, gen)
	case "metropolis":
		log.Info("Using Metropolis sampler")
		s := mcmc.NewMetropolisSettings()
		s.SD = *proposalSD
		return mcmc.NewMetropolis(tg, s, gen), nil
	}
	return nil, fmt.Errorf("Unknown sampler specification: %s", method)
}

// autoSampler picks a sampler name from the competence values.
func autoSampler(tg *model.Target) string {
	if mcmc.TWalkCompetence(tg) >= mcmc.MetropolisCompetence(tg) {
		return "twalk"
	}
	return "metropolis"
}

// command-line options
var (
	// application
	app = kingpin.New("twalk", "t-walk sampler for continuous distributions").Version(version)

	// target
	targetName = app.Arg("target", "target distribution (normal, mvnormal, banana, gamma or posterior)").Required().String()

	// target parameters
	dim          = app.Flag("dim", "target dimension (normal and mvnormal)").Default("10").Int()
	rho          = app.Flag("rho", "pairwise correlation of the mvnormal target").Default("0.5").Float64()
	bananaA      = app.Flag("bana", "a parameter of the banana target").Default("1").Float64()
	bananaB      = app.Flag("banb", "b parameter of the banana target").Default("10").Float64()
	gammaShape   = app.Flag("shape", "shape parameter of the gamma target").Default("2").Float64()
	gammaRate    = app.Flag("rate", "rate parameter of the gamma target").Default("2").Float64()
	nObs         = app.Flag("nobs", "number of generated observations (posterior target)").Default("500").Int()
	dataMean     = app.Flag("datamean", "mean of generated observations (posterior target)").Default("3").Float64()
	dataSD       = app.Flag("datasd", "standard deviation of generated observations (posterior target)").Default("2").Float64()
	dataFileName = app.Flag("datafn", "observations file, one number per line (overrides data generation)").String()

	// sampler parameters
	samplerName   = app.Flag("sampler", "sampler to use (twalk, metropolis or auto)").Default("auto").String()
	n1            = app.Flag("n1", "expected number of coordinates to update per step").Default("4").Int()
	walkTheta     = app.Flag("walktheta", "walk move parameter").Default("1.5").Float64()
	traverseTheta = app.Flag("traversetheta", "traverse move parameter").Default("6").Float64()
	kernelWeights = app.Flag("weights", "comma separated walk,traverse,blow,hop kernel weights").Default("0.4918,0.4918,0.0082,0.0082").String()
	proposalSD    = app.Flag("proposalsd", "initial proposal scale of the Metropolis sampler").Default("0.01").Float64()

	// chain parameters
	iterations = app.Flag("iter", "number of iterations").Default("10000").Int()
	burn       = app.Flag("burn", "number of burn-in iterations, not tallied").Default("0").Int()
	thin       = app.Flag("thin", "tally every Nth iteration after burn-in").Default("1").Int()
	tune       = app.Flag("tune", "adapt the Metropolis proposal scale during burn-in").Bool()
	accept     = app.Flag("accept", "report acceptance rate every N iterations").Default("200").Int()
	report     = app.Flag("report", "report every N iterations").Default("10").Int()
	quiet      = app.Flag("quiet", "don't print the sampling trajectory").Bool()

	// warm start
	mapStart      = app.Flag("map", "start from a maximum a posteriori estimate").Bool()
	mapGrad       = app.Flag("mapgrad", "use gradient-based optimization for the MAP estimate").Bool()
	mapIterations = app.Flag("mapiter", "maximum number of MAP optimizer iterations").Default("500").Int()

	// checkpoints
	checkpointFileName = app.Flag("checkpoint", "checkpoint database file, enables resuming").String()
	checkpointPeriod   = app.Flag("cperiod", "checkpoint period in seconds").Default("30").Float64()

	// technical
	seed       = app.Flag("seed", "random generator seed, default time based").Default("-1").Int64()
	cpuProfile = app.Flag("cpuprofile", "write cpu profile to file").String()

	// input/output
	traceDirName = app.Flag("trace", "write the trace database to a directory").String()
	chainID      = app.Flag("chain", "chain number in the trace database").Default("0").Int()
	outLogF      = app.Flag("log", "write log to a file").String()
	logLevel     = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()
)

func run() (summary *RunSummary) {
	startTime := time.Now()
	summary = &RunSummary{}

	var cio *checkpoint.CheckpointIO
	var cpData *checkpoint.CheckpointData
	if *checkpointFileName != "" {
		db, err := bolt.Open(*checkpointFileName, 0666, nil)
		if err != nil {
			log.Fatal("Error opening checkpoint file:", err)
		}
		defer db.Close()
		cio = checkpoint.NewCheckpointIO(db, checkpointKey, *seed, *checkpointPeriod)
		cpData, err = cio.Load()
		if err != nil {
			log.Fatal("Error reading checkpoint:", err)
		}
		if cpData != nil && cpData.Final {
			log.Notice("Checkpoint run is finished, starting anew")
			cpData = nil
		}
		if cpData != nil && seedFromTime && cpData.Seed != *seed {
			*seed = cpData.Seed
			log.Infof("Reusing checkpoint seed=%v", *seed)
			cio = checkpoint.NewCheckpointIO(db, checkpointKey, *seed, *checkpointPeriod)
		}
	}

	gen := rng.New(*seed)

	var data []float64
	var err error
	if *targetName == "posterior" {
		if *dataFileName != "" {
			data, err = readData(*dataFileName)
			if err != nil {
				log.Fatal("Error reading observations:", err)
			}
			log.Infof("Read %d observations from %s", len(data), *dataFileName)
		} else {
			data = model.GenNormalData(*dataMean, *dataSD, *nObs, gen)
			log.Infof("Generated %d observations (mean=%v, sd=%v)", *nObs, *dataMean, *dataSD)
		}
	}

	tg, err := getTargetFromString(*targetName, *dim, data, gen)
	if err != nil {
		log.Fatal(err)
	}
	summary.Target = tg.Name()
	summary.Dim = tg.Len()

	if *mapStart {
		ms := fit.NewMAPSettings()
		ms.Iterations = *mapIterations
		ms.UseGradient = *mapGrad
		res, err := fit.MAP(tg, ms)
		if err != nil {
			log.Error("MAP warm start failed:", err)
		} else {
			summary.MAP = res
		}
	}

	method := *samplerName
	if method == "auto" {
		method = autoSampler(tg)
		log.Infof("Auto-selected %s sampler", method)
	}

	sampler, err := getSamplerFromString(method, tg, gen)
	if err != nil {
		log.Fatal(err)
	}
	summary.Sampler = method

	if cpData != nil {
		err = sampler.SetState(cpData.Sampler)
		if err != nil {
			log.Fatal("Error restoring checkpoint state:", err)
		}
		log.Noticef("Resuming from iteration %d", cpData.Iter)
		summary.Resumed = true
	}

	chain := mcmc.NewChain(sampler)
	chain.Iterations = *iterations
	if cpData != nil {
		chain.Iterations = *iterations - cpData.Iter
		if chain.Iterations < 0 {
			chain.Iterations = 0
		}
	}
	chain.Burn = *burn
	chain.Thin = *thin
	chain.AccPeriod = *accept
	chain.RepPeriod = *report
	chain.Tuning = *tune
	chain.Quiet = *quiet

	tr := trace.New(tg.Name(), tg.Len())
	chain.Out = tr
	if cio != nil {
		chain.Checkpoint = cio
	}
	chain.WatchSignals(os.Interrupt, syscall.SIGTERM)

	err = chain.Run()
	if err != nil {
		log.Fatal("Sampling error:", err)
	}

	summary.Iterations = chain.Iteration()
	summary.Samples = tr.Len()
	summary.Acceptance = chain.Acceptance()
	if lp := chain.LogP(); !math.IsNaN(lp) {
		summary.FinalLogP = lp
	}

	log.Noticef("Acceptance rate: %.2f%%", summary.Acceptance*100)

	if tw, ok := sampler.(*mcmc.TWalk); ok {
		acc, rej := tw.Accepted(), tw.Rejected()
		for k := mcmc.Walk; k < mcmc.NKernels; k++ {
			total := acc[k] + rej[k]
			rate := 0.0
			if total > 0 {
				rate = float64(acc[k]) / float64(total)
			}
			log.Infof("%s kernel: %d of %d accepted (%.2f%%)", k, acc[k], total, rate*100)
			summary.Kernels = append(summary.Kernels, KernelSummary{
				Name:     k.String(),
				Accepted: acc[k],
				Rejected: rej[k],
			})
		}
	}

	if *traceDirName != "" {
		err = trace.WriteTxt(tr, *traceDirName, *chainID)
		if err != nil {
			log.Error("Error writing trace:", err)
		} else {
			log.Infof("Trace written to %s", *traceDirName)
		}
	}

	if tr.Len() > 0 {
		summary.Posterior = trace.Summary(tr)
		for i, d := range summary.Posterior {
			name := tg.Name()
			if len(summary.Posterior) > 1 {
				name = fmt.Sprintf("%s[%d]", name, i)
			}
			log.Noticef("%s: mean=%.4f, sd=%.4f, 95%% CI [%.4f, %.4f]",
				name, d.Mean, d.SD, d.CI95[0], d.CI95[1])
		}
	}

	endTime := time.Now()

	deltaT := endTime.Sub(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	return
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(level, "twalk")
	logging.SetLevel(level, "mcmc")
	logging.SetLevel(level, "model")
	logging.SetLevel(level, "trace")
	logging.SetLevel(level, "checkpoint")
	logging.SetLevel(level, "fit")

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *seed == -1 {
		*seed = time.Now().UnixNano()
		seedFromTime = true
		log.Debug("Random seed from time")
	}
	log.Infof("Random seed=%v", *seed)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	summary := run()
	summary.Version = version
	summary.CommandLine = os.Args
	summary.Seed = *seed

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
