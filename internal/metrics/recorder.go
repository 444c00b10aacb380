// Package metrics records exchange latencies in an HDR histogram.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// histogram range in microseconds: 1us to 1h
	histogramMin     = 1
	histogramMax     = int64(time.Hour / time.Microsecond)
	histogramSigFigs = 3
)

// Recorder collects latencies of successful exchanges and counts failures.
//
// Recorder is safe for concurrent use. The histogram is mutex protected since
// RecordValue is not thread-safe.
type Recorder struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram

	errors atomic.Int64
}

// Summary is a point-in-time view of a Recorder.
type Summary struct {
	Count  int64
	Errors int64
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	P50    time.Duration
	P90    time.Duration
	P99    time.Duration
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds one latency, clamped to the histogram range.
func (r *Recorder) Record(d time.Duration) {
	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.mu.Lock()
	// in range after clamping, so RecordValue cannot fail
	_ = r.hist.RecordValue(micros)
	r.mu.Unlock()
}

// RecordError counts one failed exchange.
func (r *Recorder) RecordError() {
	r.errors.Add(1)
}

// Summary returns the current counts and percentiles. An empty recorder
// reports zero durations.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hist.TotalCount() == 0 {
		return Summary{Errors: r.errors.Load()}
	}

	micros := func(v int64) time.Duration {
		return time.Duration(v) * time.Microsecond
	}
	return Summary{
		Count:  r.hist.TotalCount(),
		Errors: r.errors.Load(),
		Min:    micros(r.hist.Min()),
		Max:    micros(r.hist.Max()),
		Mean:   time.Duration(r.hist.Mean() * float64(time.Microsecond)),
		P50:    micros(r.hist.ValueAtQuantile(50)),
		P90:    micros(r.hist.ValueAtQuantile(90)),
		P99:    micros(r.hist.ValueAtQuantile(99)),
	}
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.hist.Reset()
	r.mu.Unlock()
	r.errors.Store(0)
}
