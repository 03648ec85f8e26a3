package observability

import (
	"strconv"
	"sync"
	"time"
)

// slowRequestThreshold marks requests worth counting separately.
const slowRequestThreshold = 500 * time.Millisecond

// Metrics keeps in-memory request and error counters.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]int64
	slow     map[string]int64
	errors   map[string]int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		slow:     make(map[string]int64),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts a completed request by route, method and status.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	if duration >= slowRequestThreshold {
		m.slow[key]++
	}
}

// RecordError counts a request that ended in a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}
