package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts gateway activity: upstream round trips, refresh retries,
// live-update connections and report exports.
type Metrics struct {
	backendRequests atomic.Int64
	backendErrors   atomic.Int64
	backendRetries  atomic.Int64
	totalLatency    atomic.Int64
	lastRequestTime atomic.Int64

	wsConnections atomic.Int64
	wsMessages    atomic.Int64
	wsErrors      atomic.Int64

	exports atomic.Int64
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

func NewMetrics() *Metrics {
	return &Metrics{}
}

func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = NewMetrics()
	})
	return metricsInstance
}

func (m *Metrics) IncrementRequests() {
	m.backendRequests.Add(1)
	m.lastRequestTime.Store(time.Now().Unix())
}

func (m *Metrics) IncrementErrors() {
	m.backendErrors.Add(1)
}

// IncrementRetries counts 401 refresh-and-retry attempts.
func (m *Metrics) IncrementRetries() {
	m.backendRetries.Add(1)
}

func (m *Metrics) RecordLatency(duration time.Duration) {
	m.totalLatency.Add(duration.Milliseconds())
}

func (m *Metrics) IncrementExports() {
	m.exports.Add(1)
}

func (m *Metrics) GetBackendRequests() int64 {
	return m.backendRequests.Load()
}

func (m *Metrics) GetBackendErrors() int64 {
	return m.backendErrors.Load()
}

func (m *Metrics) GetBackendRetries() int64 {
	return m.backendRetries.Load()
}

func (m *Metrics) GetExports() int64 {
	return m.exports.Load()
}

func (m *Metrics) GetAvgLatency() float64 {
	requests := m.backendRequests.Load()
	if requests == 0 {
		return 0
	}
	return float64(m.totalLatency.Load()) / float64(requests)
}

func (m *Metrics) GetLastRequestTime() int64 {
	return m.lastRequestTime.Load()
}

func (m *Metrics) IncrementWebSocketConnections() {
	m.wsConnections.Add(1)
}

func (m *Metrics) DecrementWebSocketConnections() {
	m.wsConnections.Add(-1)
}

func (m *Metrics) GetWebSocketConnections() int64 {
	return m.wsConnections.Load()
}

func (m *Metrics) IncrementWebSocketMessages() {
	m.wsMessages.Add(1)
}

func (m *Metrics) GetWebSocketMessages() int64 {
	return m.wsMessages.Load()
}

func (m *Metrics) IncrementWebSocketErrors() {
	m.wsErrors.Add(1)
}

func (m *Metrics) GetWebSocketErrors() int64 {
	return m.wsErrors.Load()
}

// GetWebSocketMetrics returns live-update metrics for the metrics endpoint.
func (m *Metrics) GetWebSocketMetrics() map[string]interface{} {
	return map[string]interface{}{
		"connections": m.wsConnections.Load(),
		"messages":    m.wsMessages.Load(),
		"errors":      m.wsErrors.Load(),
	}
}
