package electrum

import (
	"sync"
	"time"
)

const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventError      = "error"
)

// MethodStats accumulates quorum level calls of one protocol method.
type MethodStats struct {
	Count     int64         `json:"count"`
	Time      time.Duration `json:"time"`
	Successes int64         `json:"successes"`
	Failures  int64         `json:"failures"`
}

// EventStats counts one connection lifecycle event.
type EventStats struct {
	Count       int64     `json:"count"`
	FirstSeenAt time.Time `json:"firstSeenAt,omitempty"`
	LastSeenAt  time.Time `json:"lastSeenAt,omitempty"`
}

// Stats is a point in time copy of the client counters.
type Stats struct {
	Connect    EventStats             `json:"connect"`
	Disconnect EventStats             `json:"disconnect"`
	Error      EventStats             `json:"error"`
	Methods    map[string]MethodStats `json:"methods"`
	Servers    []ServerStatus         `json:"servers"`
}

// ServerStatus reports the state of one configured server.
type ServerStatus struct {
	Server          string `json:"server"`
	State           string `json:"state"`
	ServerVersion   string `json:"serverVersion,omitempty"`
	ProtocolVersion string `json:"protocolVersion,omitempty"`
	LastError       string `json:"lastError,omitempty"`
}

type statsRecorder struct {
	mu      sync.Mutex
	now     func() time.Time
	events  map[string]EventStats
	methods map[string]MethodStats
}

func newStatsRecorder(now func() time.Time) *statsRecorder {
	return &statsRecorder{
		now:     now,
		events:  make(map[string]EventStats),
		methods: make(map[string]MethodStats),
	}
}

func (s *statsRecorder) event(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.events[name]
	if e.Count == 0 {
		e.FirstSeenAt = now
	}
	e.Count++
	e.LastSeenAt = now
	s.events[name] = e
}

func (s *statsRecorder) call(method string, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.methods[method]
	m.Count++
	m.Time += elapsed
	if err != nil {
		m.Failures++
	} else {
		m.Successes++
	}
	s.methods[method] = m
}

func (s *statsRecorder) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	methods := make(map[string]MethodStats, len(s.methods))
	for k, v := range s.methods {
		methods[k] = v
	}
	return Stats{
		Connect:    s.events[EventConnect],
		Disconnect: s.events[EventDisconnect],
		Error:      s.events[EventError],
		Methods:    methods,
	}
}
