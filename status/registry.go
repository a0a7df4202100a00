package status

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Registry is the lock-free read surface between the engine and its observers
// The engine caches pointers at construction and writes on every parameter change;
// renderers and the headless reporter read without touching the engine lock
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Dump renders every metric as key=value, sorted by key
func (r *Registry) Dump() []string {
	lines := make([]string, 0, r.TotalCount())
	r.Bools.Range(func(k string, p *atomic.Bool) {
		lines = append(lines, fmt.Sprintf("%s=%t", k, p.Load()))
	})
	r.Ints.Range(func(k string, p *atomic.Int64) {
		lines = append(lines, fmt.Sprintf("%s=%d", k, p.Load()))
	})
	r.Floats.Range(func(k string, p *AtomicFloat) {
		lines = append(lines, fmt.Sprintf("%s=%.3f", k, p.Get()))
	})
	r.Strings.Range(func(k string, p *AtomicString) {
		lines = append(lines, fmt.Sprintf("%s=%s", k, p.Load()))
	})
	sort.Strings(lines)
	return lines
}
