package websocket

import (
	"sync"
	"time"
)

// Metrics tracks WebSocket connection and message counters for the
// whole process. The hub and every client pump report into a single
// shared instance.
type Metrics struct {
	mu sync.RWMutex

	// Connection metrics
	TotalConnections  int64
	ActiveConnections int64
	MaxConcurrent     int64
	AvgConnectionTime time.Duration

	// Message metrics
	MessagesSent     int64
	MessagesReceived int64
	BytesSent        int64
	BytesReceived    int64
	MessageErrors    int64

	// Fan-out metrics
	DroppedClients int64
	MaxQueueDepth  int64

	LastReset       time.Time
	connectionTimes []time.Duration
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		LastReset:       time.Now(),
		connectionTimes: make([]time.Duration, 0, 100),
	}
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// GetMetrics returns the process-wide metrics instance
func GetMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics()
	})
	return defaultMetrics
}

// RecordConnection records a new connection
func (m *Metrics) RecordConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections++
	m.ActiveConnections++

	if m.ActiveConnections > m.MaxConcurrent {
		m.MaxConcurrent = m.ActiveConnections
	}
}

// RecordDisconnection records a disconnection and folds the connection
// lifetime into the rolling average over the last 100 connections.
func (m *Metrics) RecordDisconnection(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ActiveConnections--

	m.connectionTimes = append(m.connectionTimes, duration)
	if len(m.connectionTimes) > 100 {
		m.connectionTimes = m.connectionTimes[1:]
	}

	var total time.Duration
	for _, d := range m.connectionTimes {
		total += d
	}
	if len(m.connectionTimes) > 0 {
		m.AvgConnectionTime = total / time.Duration(len(m.connectionTimes))
	}
}

// RecordMessage records message metrics
func (m *Metrics) RecordMessage(direction string, size int64, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch direction {
	case "sent":
		m.MessagesSent++
		m.BytesSent += size
	case "received":
		m.MessagesReceived++
		m.BytesReceived += size
	}

	if !success {
		m.MessageErrors++
	}
}

// RecordDroppedClient records a client disconnected for not draining
// its send buffer
func (m *Metrics) RecordDroppedClient() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DroppedClients++
}

// RecordQueueDepth records the broadcast queue depth
func (m *Metrics) RecordQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if depth > m.MaxQueueDepth {
		m.MaxQueueDepth = depth
	}
}

// Snapshot returns a point-in-time copy of the counters
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_connections":   m.TotalConnections,
		"active_connections":  m.ActiveConnections,
		"max_concurrent":      m.MaxConcurrent,
		"avg_connection_time": m.AvgConnectionTime.String(),
		"messages_sent":       m.MessagesSent,
		"messages_received":   m.MessagesReceived,
		"bytes_sent":          m.BytesSent,
		"bytes_received":      m.BytesReceived,
		"message_errors":      m.MessageErrors,
		"dropped_clients":     m.DroppedClients,
		"max_queue_depth":     m.MaxQueueDepth,
		"last_reset":          m.LastReset,
	}
}

// Reset clears all counters
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections = 0
	m.ActiveConnections = 0
	m.MaxConcurrent = 0
	m.AvgConnectionTime = 0
	m.MessagesSent = 0
	m.MessagesReceived = 0
	m.BytesSent = 0
	m.BytesReceived = 0
	m.MessageErrors = 0
	m.DroppedClients = 0
	m.MaxQueueDepth = 0
	m.LastReset = time.Now()
	m.connectionTimes = m.connectionTimes[:0]
}
