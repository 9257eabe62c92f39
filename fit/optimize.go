package fit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-omnichord/analysis"
	"github.com/cwbudde/algo-omnichord/synth"
)

// Config controls a fitting run.
type Config struct {
	Reference  []float64
	SampleRate int
	Base       *synth.Params
	Knobs      []Knob

	// Frequency of the rendered note; 0 detects it from Reference.
	Frequency float64
	// Hold is the rendered note duration including its release; 0 uses the
	// reference length.
	Hold float64

	Variant    string
	Population int
	MaxEvals   int
	RoundEvals int
	Workers    int
	Seed       int64
	TimeBudget time.Duration

	Logger *slog.Logger
}

// Result is the outcome of a fitting run.
type Result struct {
	Params    *synth.Params
	Start     analysis.Metrics
	Best      analysis.Metrics
	Frequency float64
	Evals     int
	Elapsed   time.Duration
}

type optimizationState struct {
	mu   sync.Mutex
	best candidate
	eval analysis.Metrics
}

func (c *Config) defaults() error {
	if len(c.Reference) == 0 {
		return fmt.Errorf("empty reference")
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if c.Base == nil {
		c.Base = synth.NewDefaultParams()
	}
	if len(c.Knobs) == 0 {
		c.Knobs = DefaultKnobs()
	}
	if c.Variant == "" {
		c.Variant = "ma"
	}
	if c.Population <= 0 {
		c.Population = 12
	}
	if c.MaxEvals <= 0 {
		c.MaxEvals = 400
	}
	if c.RoundEvals <= 0 {
		c.RoundEvals = 120
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.TimeBudget <= 0 {
		c.TimeBudget = time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Frequency <= 0 {
		f, err := analysis.DominantFrequency(c.Reference, c.SampleRate)
		if err != nil {
			return fmt.Errorf("detect reference pitch: %w", err)
		}
		if f <= 0 {
			return fmt.Errorf("reference is silent")
		}
		c.Frequency = f
	}
	if c.Hold <= 0 {
		c.Hold = float64(len(c.Reference)) / float64(c.SampleRate)
	}
	return nil
}

// Render plays one note with p and returns frames mono samples.
func Render(p *synth.Params, sampleRate int, freq, hold float64, frames int) ([]float64, error) {
	s, err := synth.NewScheduler(sampleRate, p)
	if err != nil {
		return nil, err
	}
	if err := s.PlayOneShot(freq, hold, p.DefaultVolume); err != nil {
		return nil, err
	}
	out := make([]float64, 0, frames)
	buf := make([]float32, 256)
	for len(out) < frames {
		n := min(128, frames-len(out))
		s.ProcessInto(buf[:n*2])
		for i := 0; i < n; i++ {
			out = append(out, float64(buf[i*2]))
		}
	}
	return out, nil
}

// Run searches the knob space for the parameters whose rendered note is
// closest to the reference. It stops at MaxEvals, TimeBudget or when ctx is
// done and returns the best parameters found so far.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	log := cfg.Logger

	evaluate := func(c candidate) (analysis.Metrics, error) {
		mono, err := Render(c.apply(cfg.Base, cfg.Knobs), cfg.SampleRate, cfg.Frequency, cfg.Hold, len(cfg.Reference))
		if err != nil {
			return analysis.Metrics{}, err
		}
		return analysis.Compare(cfg.Reference, mono, cfg.SampleRate), nil
	}

	start := time.Now()
	deadline := start.Add(cfg.TimeBudget)
	variant := strings.ToLower(cfg.Variant)
	if _, err := newMayflyConfig(variant, cfg.Population, len(cfg.Knobs), 1); err != nil {
		return nil, err
	}

	first := initCandidate(cfg.Base, cfg.Knobs)
	startM, err := evaluate(first)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation failed: %w", err)
	}
	log.Info("fit started", "frequency", cfg.Frequency, "score", startM.Score, "knobs", len(cfg.Knobs), "variant", variant)

	state := &optimizationState{best: first, eval: startM}
	var evals int64 = 1
	var rounds int64

	stop := func() bool {
		return ctx.Err() != nil || time.Now().After(deadline) || atomic.LoadInt64(&evals) >= int64(cfg.MaxEvals)
	}

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop() {
				round := atomic.AddInt64(&rounds, 1)
				remaining := cfg.MaxEvals - int(atomic.LoadInt64(&evals))
				budget := min(cfg.RoundEvals, remaining)
				iters := max(1, budget/(2*cfg.Population))

				mc, err := newMayflyConfig(variant, cfg.Population, len(cfg.Knobs), iters)
				if err != nil {
					return
				}
				mc.Rand = rand.New(rand.NewSource(cfg.Seed + round*7919))
				mc.ObjectiveFunc = func(pos []float64) float64 {
					if ctx.Err() != nil || time.Now().After(deadline) {
						return currentBestScore(state) + 1
					}
					if _, ok := reserveEval(&evals, cfg.MaxEvals); !ok {
						return currentBestScore(state) + 1
					}
					cand := fromNormalized(pos, cfg.Knobs)
					m, err := evaluate(cand)
					if err != nil {
						return currentBestScore(state) + 0.8
					}
					state.mu.Lock()
					if m.Score < state.eval.Score {
						state.best = cand
						state.eval = m
						log.Debug("fit improved", "score", m.Score, "evals", atomic.LoadInt64(&evals))
					}
					state.mu.Unlock()
					return m.Score
				}
				if _, err := runMayfly(mc); err != nil {
					log.Warn("mayfly round failed", "round", round, "err", err)
				}
			}
		}()
	}
	wg.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()
	res := &Result{
		Params:    state.best.apply(cfg.Base, cfg.Knobs),
		Start:     startM,
		Best:      state.eval,
		Frequency: cfg.Frequency,
		Evals:     int(min(atomic.LoadInt64(&evals), int64(cfg.MaxEvals))),
		Elapsed:   time.Since(start),
	}
	log.Info("fit finished", "score", res.Best.Score, "similarity", res.Best.Similarity, "evals", res.Evals, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported mayfly variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

func currentBestScore(state *optimizationState) float64 {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.eval.Score
}
