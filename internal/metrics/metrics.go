// Package metrics is the explicitly constructed observability context
// passed down through the pipeline, so core logic stays testable without
// a live telemetry backend.
package metrics

import (
	"sync"
	"time"
)

// Recorder accumulates counters and durations for one run. Safe for
// concurrent use by all workers.
type Recorder struct {
	mu sync.Mutex

	issues  int64
	pages   int64
	regions int64

	issueTime  time.Duration
	pageTime   time.Duration
	regionTime time.Duration

	errorsByClass map[string]int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{errorsByClass: make(map[string]int64)}
}

// IssueDone records one processed issue and its duration.
func (r *Recorder) IssueDone(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issues++
	r.issueTime += d
}

// PageDone records one processed page and its duration.
func (r *Recorder) PageDone(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages++
	r.pageTime += d
}

// RegionDone records one recognized region and its duration.
func (r *Recorder) RegionDone(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions++
	r.regionTime += d
}

// ErrorContained records a contained error by taxonomy class, e.g.
// "recognition_failure" or "page_failure".
func (r *Recorder) ErrorContained(class string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorsByClass[class]++
}

// Snapshot is a point-in-time copy of the recorder's state.
type Snapshot struct {
	Issues  int64
	Pages   int64
	Regions int64

	IssueTime  time.Duration
	PageTime   time.Duration
	RegionTime time.Duration

	ErrorsByClass map[string]int64
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	errs := make(map[string]int64, len(r.errorsByClass))
	for k, v := range r.errorsByClass {
		errs[k] = v
	}
	return Snapshot{
		Issues:        r.issues,
		Pages:         r.pages,
		Regions:       r.regions,
		IssueTime:     r.issueTime,
		PageTime:      r.pageTime,
		RegionTime:    r.regionTime,
		ErrorsByClass: errs,
	}
}
