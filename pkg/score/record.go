package score

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// MetricScore is the outcome of one scorer.
type MetricScore struct {
	Name    string
	Value   float64 // in [0, 1]; 0 when the scorer failed
	Latency float64 // seconds
}

// Record is the scoring result for one URL. Metrics appear in the order
// the engine's weights declare them, and every declared metric is present.
type Record struct {
	URL             string
	NetScore        float64
	NetScoreLatency float64 // seconds: all metric latencies plus SetupLatency
	SetupLatency    float64 // seconds spent resolving the URL
	Metrics         []MetricScore
}

// Metric returns the score for name.
func (r *Record) Metric(name string) (MetricScore, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricScore{}, false
}

// Validate checks the record's ranges: values in [0, 1], latencies
// non-negative, and the net latency covering its components.
func (r *Record) Validate() error {
	if err := checkUnit("NetScore", r.NetScore); err != nil {
		return err
	}
	sum := r.SetupLatency
	for _, m := range r.Metrics {
		if err := checkUnit(m.Name, m.Value); err != nil {
			return err
		}
		if m.Latency < 0 || math.IsNaN(m.Latency) {
			return fmt.Errorf("%s latency %v is negative", m.Name, m.Latency)
		}
		sum += m.Latency
	}
	if math.Abs(r.NetScoreLatency-sum) > 1e-9 {
		return fmt.Errorf("NetScore latency %v does not match component sum %v", r.NetScoreLatency, sum)
	}
	return nil
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("%s value %v outside [0, 1]", name, v)
	}
	return nil
}

// MarshalJSON writes the flat layout
//
//	{"URL": ..., "NetScore": ..., "NetScore_Latency": ..., "<Metric>": ..., "<Metric>_Latency": ...}
//
// with numbers rounded to three decimals.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	if err := write("URL", r.URL); err != nil {
		return nil, err
	}
	if err := write("NetScore", round3(r.NetScore)); err != nil {
		return nil, err
	}
	if err := write("NetScore_Latency", round3(r.NetScoreLatency)); err != nil {
		return nil, err
	}
	for _, m := range r.Metrics {
		if err := write(m.Name, round3(m.Value)); err != nil {
			return nil, err
		}
		if err := write(m.Name+"_Latency", round3(m.Latency)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
