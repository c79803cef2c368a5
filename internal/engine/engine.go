package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leengari/memquery/internal/cache"
	"github.com/leengari/memquery/internal/domain/data"
	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/domain/schema"
	"github.com/leengari/memquery/internal/executor"
	"github.com/leengari/memquery/internal/parser"
	"github.com/leengari/memquery/internal/plan"
	"github.com/leengari/memquery/internal/planner"
	"github.com/leengari/memquery/internal/query/indexing"
	"github.com/leengari/memquery/internal/storage"
)

// QueryEngine loads one dataset from a source and answers PROJECT/FILTER
// queries against it. After Initialize the loaded data never changes, so a
// single engine may be shared by concurrent callers.
type QueryEngine struct {
	source storage.Source
	opts   options
	logger *slog.Logger

	mu     sync.RWMutex
	loaded *loadedState

	obsMu     sync.RWMutex
	observers []Observer
}

// loadedState is everything built by one Initialize call
type loadedState struct {
	table   *schema.Table
	indexes indexing.Set
	parser  *parser.Parser
	planner *planner.Planner
	results *cache.LRU[string, *executor.Result]
}

// CacheStats reports result cache usage.
// Queries lists the cached query texts, most recently used first.
type CacheStats struct {
	Size     int
	Capacity int
	Hits     int64
	Misses   int64
	Queries  []string
}

// New creates an engine over source. Nothing is read until Initialize.
func New(source storage.Source, opts ...Option) *QueryEngine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &QueryEngine{
		source:    source,
		opts:      o,
		logger:    o.logger,
		observers: make([]Observer, 0),
	}
}

// Initialize reads the source, infers the schema from the leading sample
// rows, coerces every row and builds one index per column.
// Any failure is returned as an INIT_ERROR wrapping the cause.
// Calling it again reloads the data and empties the cache.
func (e *QueryEngine) Initialize(ctx context.Context) error {
	loadID := uuid.New().String()
	start := time.Now()
	e.notify(Event{Type: EventLoadStart, QueryID: loadID})

	st, err := e.load(ctx)
	if err != nil {
		qerr := errors.Wrap(errors.InitError, err, "Failed to initialize query engine")
		e.notify(Event{Type: EventLoadError, QueryID: loadID, Elapsed: time.Since(start), Data: qerr})
		return qerr
	}

	e.mu.Lock()
	e.loaded = st
	e.mu.Unlock()

	e.notify(Event{Type: EventLoadEnd, QueryID: loadID, Elapsed: time.Since(start), Data: map[string]any{
		"rows":    st.table.RowCount(),
		"columns": st.table.Schema.Len(),
	}})

	e.logger.Info("query engine initialized",
		slog.String("table", st.table.Name),
		slog.Int("rows", st.table.RowCount()),
		slog.Int("columns", st.table.Schema.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}

func (e *QueryEngine) load(ctx context.Context) (*loadedState, error) {
	if e.source == nil {
		return nil, errors.New(errors.InitError, "no data source configured")
	}

	table, err := storage.LoadTable(ctx, e.source, e.opts.tableName, e.opts.sampleSize, e.opts.inferrers, e.logger)
	if err != nil {
		return nil, err
	}

	indexes, err := indexing.BuildAll(ctx, table, e.opts.indexWorkers)
	if err != nil {
		return nil, err
	}

	return &loadedState{
		table:   table,
		indexes: indexes,
		parser:  parser.New(table.Schema),
		planner: planner.New(table, indexes),
		results: cache.New[string, *executor.Result](e.opts.cacheSize),
	}, nil
}

// ExecuteQuery runs a query and returns the projected rows.
// The returned rows are shared with the cache and must not be modified.
func (e *QueryEngine) ExecuteQuery(query string) ([]data.Row, error) {
	result, err := e.Query(query)
	if err != nil {
		return nil, err
	}
	return result.Rows, nil
}

// Query runs a query and returns the full result, including the column list.
// Results are cached by the literal query text; failed queries are never cached.
// Every error is a *errors.QueryError; anything unclassified is EXECUTION_ERROR.
func (e *QueryEngine) Query(query string) (result *executor.Result, err error) {
	queryID := uuid.New().String()
	start := time.Now()

	e.mu.RLock()
	st := e.loaded
	e.mu.RUnlock()

	if st == nil {
		qerr := errors.New(errors.InitError, "Query engine not initialized")
		e.notify(Event{Type: EventQueryError, QueryID: queryID, Query: query, Data: qerr})
		return nil, qerr
	}

	if cached, ok := st.results.Get(query); ok {
		e.notify(Event{Type: EventCacheHit, QueryID: queryID, Query: query, Elapsed: time.Since(start), Data: len(cached.Rows)})
		return cached, nil
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.New(errors.ExecutionError, "%v", r)
		}
		if err != nil {
			e.notify(Event{Type: EventQueryError, QueryID: queryID, Query: query, Elapsed: time.Since(start), Data: err})
		}
	}()

	result, err = e.run(st, queryID, query, start)
	if err != nil {
		return nil, errors.Normalize(err, errors.ExecutionError)
	}

	st.results.Set(query, result)
	return result, nil
}

func (e *QueryEngine) run(st *loadedState, queryID, query string, start time.Time) (*executor.Result, error) {
	e.notify(Event{Type: EventParseStart, QueryID: queryID, Query: query})
	stmt, err := st.parser.Parse(query)
	if err != nil {
		return nil, err
	}
	e.notify(Event{Type: EventParseEnd, QueryID: queryID, Query: query, Elapsed: time.Since(start), Data: stmt.String()})

	node, err := st.planner.Plan(stmt)
	if err != nil {
		return nil, err
	}
	e.notify(Event{Type: EventPlanEnd, QueryID: queryID, Query: query, Elapsed: time.Since(start), Data: map[string]any{
		"access_path": plan.AccessPath(node),
		"nodes":       plan.CountNodes(node),
	}})

	e.notify(Event{Type: EventExecStart, QueryID: queryID, Query: query, Elapsed: time.Since(start)})
	result, err := executor.Execute(node, &executor.ExecutionContext{Table: st.table, Indexes: st.indexes})
	if err != nil {
		return nil, err
	}
	e.notify(Event{Type: EventExecEnd, QueryID: queryID, Query: query, Elapsed: time.Since(start), Data: map[string]any{
		"rows_returned": len(result.Rows),
	}})

	return result, nil
}

// Explain parses and plans a query without executing it
func (e *QueryEngine) Explain(query string) (string, error) {
	e.mu.RLock()
	st := e.loaded
	e.mu.RUnlock()

	if st == nil {
		return "", errors.New(errors.InitError, "Query engine not initialized")
	}

	stmt, err := st.parser.Parse(query)
	if err != nil {
		return "", errors.Normalize(err, errors.ExecutionError)
	}
	node, err := st.planner.Plan(stmt)
	if err != nil {
		return "", errors.Normalize(err, errors.ExecutionError)
	}
	return plan.PrintTree(node), nil
}

// Schema returns the loaded schema, or nil before Initialize
func (e *QueryEngine) Schema() *schema.Schema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.loaded == nil {
		return nil
	}
	return e.loaded.table.Schema
}

// RowCount returns the number of loaded rows
func (e *QueryEngine) RowCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.loaded == nil {
		return 0
	}
	return e.loaded.table.RowCount()
}

func (e *QueryEngine) CacheStats() CacheStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.loaded == nil {
		return CacheStats{Capacity: e.opts.cacheSize}
	}
	hits, misses := e.loaded.results.Stats()
	return CacheStats{
		Size:     e.loaded.results.Len(),
		Capacity: e.loaded.results.Capacity(),
		Hits:     hits,
		Misses:   misses,
		Queries:  e.loaded.results.Keys(),
	}
}

// AddObserver registers an observer to receive lifecycle events
func (e *QueryEngine) AddObserver(observer Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *QueryEngine) RemoveObserver(observer Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for i, o := range e.observers {
		if o == observer {
			remaining := make([]Observer, 0, len(e.observers)-1)
			remaining = append(remaining, e.observers[:i]...)
			e.observers = append(remaining, e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *QueryEngine) notify(event Event) {
	event.Timestamp = time.Now()

	e.obsMu.RLock()
	observers := e.observers
	e.obsMu.RUnlock()

	for _, observer := range observers {
		observer.OnEvent(event)
	}
}
