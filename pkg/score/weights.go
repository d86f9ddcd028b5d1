package score

import (
	"fmt"
	"math"
)

// Metric names.
const (
	BusFactor            = "BusFactor"
	RampUp               = "RampUp"
	Correctness          = "Correctness"
	ResponsiveMaintainer = "ResponsiveMaintainer"
	License              = "License"
	GoodPinningPractice  = "GoodPinningPractice"
	PullRequest          = "PullRequest"
)

// weightTolerance is how far the sum of weights may drift from 1.
const weightTolerance = 1e-9

// Weight assigns a metric its share of the net score.
type Weight struct {
	Metric string
	Weight float64
}

// Weights lists the metrics of a net score in declared order. The order
// fixes the record layout and the summation order.
type Weights []Weight

// DefaultWeights returns the standard metric set.
func DefaultWeights() Weights {
	return Weights{
		{BusFactor, 0.15},
		{RampUp, 0.15},
		{Correctness, 0.15},
		{ResponsiveMaintainer, 0.15},
		{License, 0.15},
		{GoodPinningPractice, 0.10},
		{PullRequest, 0.15},
	}
}

// Metrics returns the metric names in declared order.
func (w Weights) Metrics() []string {
	names := make([]string, len(w))
	for i, m := range w {
		names[i] = m.Metric
	}
	return names
}

// Validate checks that w is non-empty, names each metric once, has no
// negative weights and sums to 1.
func (w Weights) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("no metrics weighted")
	}
	seen := make(map[string]bool, len(w))
	sum := 0.0
	for _, m := range w {
		if m.Metric == "" {
			return fmt.Errorf("weight with empty metric name")
		}
		if seen[m.Metric] {
			return fmt.Errorf("metric %s weighted twice", m.Metric)
		}
		seen[m.Metric] = true
		if m.Weight < 0 || math.IsNaN(m.Weight) {
			return fmt.Errorf("metric %s has invalid weight %v", m.Metric, m.Weight)
		}
		sum += m.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights sum to %v, want 1", sum)
	}
	return nil
}
