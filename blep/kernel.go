package blep

import "math"

const (
	// PhaseCount is the number of fractional-sample phases the kernel is
	// precomputed for.
	PhaseCount = 32
	// StepWidth is the number of samples each band-limited step kernel
	// spreads its energy across.
	StepWidth = 24
)

// kernelValue approximates the derivative of an ideal band-limited unit
// step at offset samples from its center, as a Hann-windowed sinc. lowPass
// scales the sinc argument: values below 1 roll off high harmonics faster,
// approximating spec §4.5's harmonic decay factor.
func kernelValue(offset, lowPass float64) float64 {
	const halfWidth = float64(StepWidth) / 2
	if math.Abs(offset) >= halfWidth {
		return 0
	}
	var sinc float64
	if math.Abs(offset) < 1e-9 {
		sinc = 1
	} else {
		x := math.Pi * offset * lowPass / 2
		sinc = math.Sin(x) / x
	}
	window := 0.5 * (1 + math.Cos(math.Pi*offset/halfWidth))
	return sinc * window
}

// buildKernel precomputes the PhaseCount x StepWidth phase bank. Each
// phase's StepWidth taps are normalised to sum to exactly 1, satisfying
// the testable property in spec §8 regardless of the numerical shape of
// the underlying windowed-sinc approximation.
func buildKernel(lowPass float64) [PhaseCount][StepWidth]float64 {
	var kernel [PhaseCount][StepWidth]float64
	for phase := 0; phase < PhaseCount; phase++ {
		frac := float64(phase) / float64(PhaseCount)
		var raw [StepWidth]float64
		var sum float64
		for i := 0; i < StepWidth; i++ {
			offset := float64(i) - float64(StepWidth)/2 + frac
			v := kernelValue(offset, lowPass)
			raw[i] = v
			sum += v
		}
		for i := 0; i < StepWidth; i++ {
			kernel[phase][i] = raw[i] / sum
		}
	}
	return kernel
}
