package behavior

import (
	"math"
	"math/rand"
)

// Adam optimizer hyperparameters
const (
	learningRate = 0.001
	adamBeta1    = 0.9
	adamBeta2    = 0.999
	adamEpsilon  = 1e-8
)

// denseLayer is one fully connected layer with Adam moment buffers.
type denseLayer struct {
	inSize  int
	outSize int
	weights [][]float64 // [out][in]
	biases  []float64

	// Adam first and second moments
	mW [][]float64
	vW [][]float64
	mB []float64
	vB []float64
}

func newDenseLayer(inSize, outSize int, rng *rand.Rand) *denseLayer {
	l := &denseLayer{
		inSize:  inSize,
		outSize: outSize,
		weights: make([][]float64, outSize),
		biases:  make([]float64, outSize),
		mW:      make([][]float64, outSize),
		vW:      make([][]float64, outSize),
		mB:      make([]float64, outSize),
		vB:      make([]float64, outSize),
	}

	// He initialization, suited to ReLU layers
	scale := math.Sqrt(2.0 / float64(inSize))
	for i := 0; i < outSize; i++ {
		l.weights[i] = make([]float64, inSize)
		l.mW[i] = make([]float64, inSize)
		l.vW[i] = make([]float64, inSize)
		for j := 0; j < inSize; j++ {
			l.weights[i][j] = rng.NormFloat64() * scale
		}
	}
	return l
}

// forward computes Wx + b.
func (l *denseLayer) forward(input []float64) []float64 {
	out := make([]float64, l.outSize)
	for i := 0; i < l.outSize; i++ {
		sum := l.biases[i]
		row := l.weights[i]
		for j := 0; j < l.inSize; j++ {
			sum += row[j] * input[j]
		}
		out[i] = sum
	}
	return out
}

// applyGradients performs one Adam step. step is the global timestep used
// for bias correction.
func (l *denseLayer) applyGradients(gradW [][]float64, gradB []float64, step int) {
	c1 := 1 - math.Pow(adamBeta1, float64(step))
	c2 := 1 - math.Pow(adamBeta2, float64(step))

	for i := 0; i < l.outSize; i++ {
		for j := 0; j < l.inSize; j++ {
			g := gradW[i][j]
			l.mW[i][j] = adamBeta1*l.mW[i][j] + (1-adamBeta1)*g
			l.vW[i][j] = adamBeta2*l.vW[i][j] + (1-adamBeta2)*g*g
			mHat := l.mW[i][j] / c1
			vHat := l.vW[i][j] / c2
			l.weights[i][j] -= learningRate * mHat / (math.Sqrt(vHat) + adamEpsilon)
		}

		g := gradB[i]
		l.mB[i] = adamBeta1*l.mB[i] + (1-adamBeta1)*g
		l.vB[i] = adamBeta2*l.vB[i] + (1-adamBeta2)*g*g
		mHat := l.mB[i] / c1
		vHat := l.vB[i] / c2
		l.biases[i] -= learningRate * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

func relu(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if x > 0 {
			out[i] = x
		}
	}
	return out
}

// softmax converts logits to probabilities. Max-shifted for numerical
// stability so the outputs always sum to 1 for finite inputs.
func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// dropoutMask builds an inverted-dropout mask: kept units are scaled by
// 1/(1-rate) so inference needs no rescaling.
func dropoutMask(size int, rate float64, rng *rand.Rand) []float64 {
	mask := make([]float64, size)
	keep := 1 - rate
	for i := range mask {
		if rng.Float64() < keep {
			mask[i] = 1 / keep
		}
	}
	return mask
}

func applyMask(v, mask []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * mask[i]
	}
	return out
}
