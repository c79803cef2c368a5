package integration

import (
	"testing"

	"github.com/leengari/memquery/internal/engine"
)

// TestQueryLifecycleEvents verifies that all expected events are emitted during query execution
func TestQueryLifecycleEvents(t *testing.T) {
	eng := setupEngine(t)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	if _, err := eng.ExecuteQuery("PROJECT FirstName FILTER City = Brooklyn"); err != nil {
		t.Fatalf("Query execution failed: %v", err)
	}

	expectedEventTypes := []engine.EventType{
		engine.EventParseStart,
		engine.EventParseEnd,
		engine.EventPlanEnd,
		engine.EventExecStart,
		engine.EventExecEnd,
	}

	events := observer.Snapshot()
	if len(events) != len(expectedEventTypes) {
		t.Errorf("Expected %d events, got %d", len(expectedEventTypes), len(events))
		for i, event := range events {
			t.Logf("Event %d: %s", i, event.Type)
		}
		return
	}

	for i, expectedType := range expectedEventTypes {
		if events[i].Type != expectedType {
			t.Errorf("Event %d: Expected %s, got %s", i, expectedType, events[i].Type)
		}
	}

	queryID := events[0].QueryID
	for i, event := range events {
		if event.QueryID != queryID {
			t.Errorf("Event %d: QueryID mismatch. Expected %s, got %s", i, queryID, event.QueryID)
		}
	}
}

// TestCachedQueryEvents verifies that a repeated query is answered from the cache
func TestCachedQueryEvents(t *testing.T) {
	eng := setupEngine(t)
	query := "PROJECT FirstName FILTER Age > 29"

	first, err := eng.ExecuteQuery(query)
	if err != nil {
		t.Fatalf("Query execution failed: %v", err)
	}

	observer := &MockObserver{}
	eng.AddObserver(observer)

	second, err := eng.ExecuteQuery(query)
	if err != nil {
		t.Fatalf("Query execution failed: %v", err)
	}

	events := observer.Snapshot()
	if len(events) != 1 || events[0].Type != engine.EventCacheHit {
		t.Fatalf("Expected a single cache_hit event, got %+v", events)
	}
	if len(first) != len(second) {
		t.Fatalf("Cached result differs: %d vs %d rows", len(first), len(second))
	}
}

// TestErrorEvent verifies that failing queries emit a query_error event
func TestErrorEvent(t *testing.T) {
	eng := setupEngine(t)
	observer := &MockObserver{}
	eng.AddObserver(observer)

	if _, err := eng.ExecuteQuery("PROJECT Salary"); err == nil {
		t.Fatal("Expected error for unknown column")
	}

	events := observer.Snapshot()
	last := events[len(events)-1]
	if last.Type != engine.EventQueryError {
		t.Fatalf("Expected last event %s, got %s", engine.EventQueryError, last.Type)
	}
	if _, ok := last.Data.(error); !ok {
		t.Fatalf("Expected error payload, got %T", last.Data)
	}
}
