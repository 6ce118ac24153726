package dfu

import "time"

// ProgressReporter converts byte counts into whole percentages and emits a
// report only when the percentage increases.
type ProgressReporter struct {
	callback    ProgressCallback
	lastPercent int
	start       time.Time
}

// NewProgressReporter creates a reporter delivering to callback, which may be nil.
func NewProgressReporter(callback ProgressCallback) *ProgressReporter {
	return &ProgressReporter{callback: callback, lastPercent: -1}
}

// Update records progress and returns the report when it was emitted.
func (r *ProgressReporter) Update(sent, total int) (Progress, bool) {
	if r.start.IsZero() {
		r.start = time.Now()
	}
	if total <= 0 {
		return Progress{}, false
	}

	percent := sent * 100 / total
	if percent <= r.lastPercent {
		return Progress{}, false
	}
	r.lastPercent = percent

	p := Progress{
		BytesSent:   sent,
		TotalBytes:  total,
		Percent:     percent,
		ElapsedTime: time.Since(r.start),
	}
	if r.callback != nil {
		r.callback(p)
	}
	return p, true
}

// LastPercent returns the most recently emitted percentage, or -1.
func (r *ProgressReporter) LastPercent() int {
	return r.lastPercent
}
