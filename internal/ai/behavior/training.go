package behavior

import "math"

// Train fits the model on reward-labeled examples for the configured
// number of epochs. Examples without a state are dropped; an empty batch
// is a no-op that leaves weights and reported progress untouched. Training
// takes the write lock, so Predict calls queue behind it rather than
// reading half-updated weights.
func (m *BehaviorModel) Train(examples []TrainingExample) error {
	usable := examples[:0:0]
	for _, ex := range examples {
		if ex.State != nil {
			usable = append(usable, ex)
		}
	}
	if len(usable) == 0 {
		return nil
	}
	examples = usable

	inputs := make([][]float64, len(examples))
	targets := make([][]float64, len(examples))
	for i, ex := range examples {
		inputs[i] = normalizeState(ex.State)
		targets[i] = oneHot(ex.Action.Type)
	}
	weights := sampleWeights(examples)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.setProgress(0)
	epochs := m.cfg.TrainingEpochs
	indices := make([]int, len(examples))
	for i := range indices {
		indices[i] = i
	}

	for epoch := 0; epoch < epochs; epoch++ {
		m.rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		for start := 0; start < len(indices); start += m.cfg.BatchSize {
			end := start + m.cfg.BatchSize
			if end > len(indices) {
				end = len(indices)
			}
			m.fitBatch(inputs, targets, weights, indices[start:end])
		}

		m.setProgress(float64(epoch+1) / float64(epochs))
	}

	m.setProgress(1)
	return nil
}

// oneHot encodes an action type as the target distribution.
func oneHot(t ActionType) []float64 {
	target := make([]float64, 3)
	for i, a := range actionTypes {
		if a == t {
			target[i] = 1
		}
	}
	return target
}

// sampleWeights converts rewards into per-example gradient weights with
// mean 1. Higher-reward examples pull the model harder; negative rewards
// are clamped to zero contribution. A batch with no positive reward falls
// back to uniform weighting.
func sampleWeights(examples []TrainingExample) []float64 {
	weights := make([]float64, len(examples))
	sum := 0.0
	for i, ex := range examples {
		weights[i] = math.Max(ex.Reward, 0)
		sum += weights[i]
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	scale := float64(len(examples)) / sum
	for i := range weights {
		weights[i] *= scale
	}
	return weights
}

// fitBatch runs forward and backward passes over one mini-batch and
// applies a single Adam step per layer. Caller holds the write lock.
func (m *BehaviorModel) fitBatch(inputs, targets [][]float64, weights []float64, batch []int) {
	gradW1, gradB1 := zeroGrads(m.hidden1)
	gradW2, gradB2 := zeroGrads(m.hidden2)
	gradW3, gradB3 := zeroGrads(m.output)

	invBatch := 1.0 / float64(len(batch))

	for _, idx := range batch {
		x := inputs[idx]
		target := targets[idx]
		w := weights[idx] * invBatch

		// Forward with inverted dropout on both hidden layers
		pre1 := m.hidden1.forward(x)
		mask1 := dropoutMask(len(pre1), m.cfg.DropoutRate, m.rng)
		act1 := applyMask(relu(pre1), mask1)
		pre2 := m.hidden2.forward(act1)
		mask2 := dropoutMask(len(pre2), m.cfg.DropoutRate, m.rng)
		act2 := applyMask(relu(pre2), mask2)
		probs := softmax(m.output.forward(act2))

		// Softmax + cross-entropy collapses to probs - target at the output
		delta3 := make([]float64, 3)
		for i := range delta3 {
			delta3[i] = (probs[i] - target[i]) * w
		}
		accumulate(gradW3, gradB3, delta3, act2)

		delta2 := backprop(m.output, delta3, pre2, mask2)
		accumulate(gradW2, gradB2, delta2, act1)

		delta1 := backprop(m.hidden2, delta2, pre1, mask1)
		accumulate(gradW1, gradB1, delta1, x)
	}

	m.adamStep++
	m.hidden1.applyGradients(gradW1, gradB1, m.adamStep)
	m.hidden2.applyGradients(gradW2, gradB2, m.adamStep)
	m.output.applyGradients(gradW3, gradB3, m.adamStep)
}

func zeroGrads(l *denseLayer) ([][]float64, []float64) {
	gradW := make([][]float64, l.outSize)
	for i := range gradW {
		gradW[i] = make([]float64, l.inSize)
	}
	return gradW, make([]float64, l.outSize)
}

// accumulate adds one sample's gradient contribution for a layer whose
// post-activation input was act.
func accumulate(gradW [][]float64, gradB []float64, delta, act []float64) {
	for i, d := range delta {
		gradB[i] += d
		row := gradW[i]
		for j, a := range act {
			row[j] += d * a
		}
	}
}

// backprop carries the error signal through layer l to the pre-activation
// of the preceding hidden layer. pre and mask are that layer's
// pre-activation values and dropout mask: dropped units pass no gradient,
// kept units carry the inverse-keep scale, and the ReLU derivative zeroes
// units that never fired.
func backprop(l *denseLayer, delta, pre, mask []float64) []float64 {
	out := make([]float64, l.inSize)
	for j := 0; j < l.inSize; j++ {
		if pre[j] <= 0 || mask[j] == 0 {
			continue
		}
		sum := 0.0
		for i := 0; i < l.outSize; i++ {
			sum += delta[i] * l.weights[i][j]
		}
		out[j] = sum * mask[j]
	}
	return out
}
