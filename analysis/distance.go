package analysis

import "math"

const (
	envFrame = 256
	envHop   = 128
	// compared signals are normalised to this RMS
	compareRMS = 0.1
	// at most this many seconds are compared
	compareSeconds = 8
)

// Metrics are distances between a reference recording and a rendered
// candidate. Score is a weighted combination in [0,1], lower is closer.
type Metrics struct {
	SampleRate    int `json:"sample_rate"`
	AlignedFrames int `json:"aligned_frames"`

	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare aligns both signals at their onsets, normalises their loudness and
// measures envelope, spectral and decay-rate distance.
func Compare(reference, candidate []float64, sampleRate int) Metrics {
	m := Metrics{SampleRate: sampleRate, Score: 1}
	if sampleRate <= 0 {
		return m
	}
	ref := normalizeRMS(trimLeadingSilence(reference, 1e-6), compareRMS)
	cand := normalizeRMS(trimLeadingSilence(candidate, 1e-6), compareRMS)
	n := min(len(ref), len(cand), compareSeconds*sampleRate)
	if n < minFFTSize {
		return m
	}
	ref, cand = ref[:n], cand[:n]
	m.AlignedFrames = n

	refEnv := rmsEnvelope(ref, envFrame, envHop)
	candEnv := rmsEnvelope(cand, envFrame, envHop)
	if len(refEnv) > 0 {
		var sum float64
		for i := range refEnv {
			d := LinToDB(refEnv[i]) - LinToDB(candEnv[i])
			sum += d * d
		}
		m.EnvelopeRMSEDB = math.Sqrt(sum / float64(len(refEnv)))
	}

	if a, _, err := Spectrum(ref, sampleRate); err == nil {
		b, _, _ := Spectrum(cand, sampleRate)
		var sum float64
		for k := 1; k < len(a)-1; k++ {
			d := math.Max(LinToDB(a[k]), -120) - math.Max(LinToDB(b[k]), -120)
			sum += d * d
		}
		m.SpectralRMSEDB = math.Sqrt(sum / float64(len(a)-2))
	}

	hop := float64(envHop) / float64(sampleRate)
	m.RefDecayDBPerS = decaySlope(refEnv, hop)
	m.CandDecayDBPerS = decaySlope(candEnv, hop)
	if !math.IsNaN(m.RefDecayDBPerS) && !math.IsNaN(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}

	m.Score = clamp01(0.40*clamp01(m.EnvelopeRMSEDB/30) +
		0.40*clamp01(m.SpectralRMSEDB/30) +
		0.20*clamp01(m.DecayDiffDBPerS/40))
	m.Similarity = math.Exp(-4 * m.Score)
	return m
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i, v := range x {
		if math.Abs(v) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	out := make([]float64, len(x))
	g := 1.0
	if r := RMS(x); r > 1e-12 {
		g = target / r
	}
	for i, v := range x {
		out[i] = v * g
	}
	return out
}

func rmsEnvelope(x []float64, frame, hop int) []float64 {
	if len(x) < frame {
		return nil
	}
	out := make([]float64, 1+(len(x)-frame)/hop)
	for i := range out {
		out[i] = RMS(x[i*hop : i*hop+frame])
	}
	return out
}

// decaySlope fits a line to the envelope in dB from its peak until it has
// fallen 60 dB and returns the slope in dB per second, or NaN when the
// envelope is too short to fit.
func decaySlope(env []float64, hopSec float64) float64 {
	if len(env) < 8 {
		return math.NaN()
	}
	peakIdx := 0
	for i, v := range env {
		if v > env[peakIdx] {
			peakIdx = i
		}
	}
	floor := LinToDB(env[peakIdx]) - 60
	start, end := peakIdx+1, len(env)
	for i := start; i < len(env); i++ {
		if LinToDB(env[i]) < floor {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := LinToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
