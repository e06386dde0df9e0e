package observability

import (
	"sync"
)

// Metrics provides basic in-memory counters over interaction handling.
type Metrics struct {
	mu               sync.Mutex
	interactionCount map[string]int64
	errorCount       map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		interactionCount: make(map[string]int64),
		errorCount:       make(map[string]int64),
	}
}

// RecordInteraction increments the counter for an action/outcome pair.
func (m *Metrics) RecordInteraction(action, outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactionCount[action+"|"+outcome]++
}

// RecordError increments error counters by domain error code.
func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[code]++
}

// Snapshot copies current counters for the readiness payload.
func (m *Metrics) Snapshot() (interactions, errors map[string]int64) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	interactions = make(map[string]int64, len(m.interactionCount))
	for k, v := range m.interactionCount {
		interactions[k] = v
	}
	errors = make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errors[k] = v
	}
	return interactions, errors
}
