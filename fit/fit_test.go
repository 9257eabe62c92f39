package fit

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-omnichord/synth"
)

const testRate = 16000

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFromNormalizedMapsRange(t *testing.T) {
	knobs := DefaultKnobs()[:2]
	c := fromNormalized([]float64{0.5, 2}, knobs)
	if want := (knobs[0].Min + knobs[0].Max) / 2; math.Abs(c.Vals[0]-want) > 1e-12 {
		t.Fatalf("midpoint: got=%f want=%f", c.Vals[0], want)
	}
	if c.Vals[1] != knobs[1].Max {
		t.Fatalf("out-of-range position should clamp to max, got %f", c.Vals[1])
	}
}

func TestCandidateApplyLeavesBaseUntouched(t *testing.T) {
	base := synth.NewDefaultParams()
	knobs, unknown := KnobsByName([]string{"attack", "square", "bogus"})
	if len(knobs) != 2 || len(unknown) != 1 || unknown[0] != "bogus" {
		t.Fatalf("KnobsByName: knobs=%d unknown=%v", len(knobs), unknown)
	}
	p := candidate{Vals: []float64{0.05, 0}}.apply(base, knobs)
	if p.Attack != 0.05 || p.SquareWeight != 0 {
		t.Fatalf("apply: %+v", p)
	}
	if base.Attack != 0.01 || base.SquareWeight != 0.15 {
		t.Fatalf("base params modified: %+v", base)
	}
	if v := Values(p, knobs); v["attack"] != 0.05 {
		t.Fatalf("Values: %v", v)
	}
}

func TestRunImprovesOnStart(t *testing.T) {
	target := synth.NewDefaultParams()
	target.Attack = 0.04
	target.SustainRatio = 0.3
	target.SquareWeight = 0.0
	ref, err := Render(target, testRate, 220, 0.5, testRate/2)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	base := synth.NewDefaultParams()
	base.Attack = 0.09
	base.SustainRatio = 0.9
	knobs, _ := KnobsByName([]string{"attack", "sustain_ratio", "square"})
	res, err := Run(context.Background(), Config{
		Reference:  ref,
		SampleRate: testRate,
		Base:       base,
		Knobs:      knobs,
		Population: 6,
		MaxEvals:   40,
		RoundEvals: 20,
		Workers:    2,
		Seed:       3,
		TimeBudget: 30 * time.Second,
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Best.Score > res.Start.Score {
		t.Fatalf("best score %f worse than start %f", res.Best.Score, res.Start.Score)
	}
	if res.Evals < 1 || res.Evals > 40 {
		t.Fatalf("evals out of budget: %d", res.Evals)
	}
	if math.Abs(res.Frequency-220) > 2 {
		t.Fatalf("detected frequency: got=%f want~220", res.Frequency)
	}
	for _, k := range knobs {
		v := *k.field(res.Params)
		if v < k.Min || v > k.Max {
			t.Fatalf("%s out of range: %f", k.Name, v)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if _, err := Run(context.Background(), Config{SampleRate: testRate}); err == nil {
		t.Fatalf("expected error for empty reference")
	}
	silent := make([]float64, testRate/4)
	if _, err := Run(context.Background(), Config{Reference: silent, SampleRate: testRate}); err == nil {
		t.Fatalf("expected error for silent reference")
	}
	ref, _ := Render(synth.NewDefaultParams(), testRate, 440, 0.25, testRate/4)
	if _, err := Run(context.Background(), Config{Reference: ref, SampleRate: testRate, Variant: "nope", Logger: quietLogger()}); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}
