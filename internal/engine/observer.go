package engine

import "time"

// EventType represents different lifecycle phases of loading and querying
type EventType string

const (
	EventLoadStart  EventType = "load_start"
	EventLoadEnd    EventType = "load_end"
	EventLoadError  EventType = "load_error"
	EventParseStart EventType = "parse_start"
	EventParseEnd   EventType = "parse_end"
	EventPlanEnd    EventType = "plan_end"
	EventExecStart  EventType = "exec_start"
	EventExecEnd    EventType = "exec_end"
	EventCacheHit   EventType = "cache_hit"
	EventQueryError EventType = "query_error"
)

// Event represents a lifecycle event
type Event struct {
	Type      EventType     // Type of event
	QueryID   string        // Per-query (or per-load) ID for tracing
	Query     string        // Query text, empty for load events
	Timestamp time.Time     // When the event occurred
	Elapsed   time.Duration // Time since the query started
	Data      any           // Phase-specific data (row counts, plan, error)
}

// Observer interface for event subscribers
// Observers receive events at major execution phases
type Observer interface {
	OnEvent(event Event)
}
