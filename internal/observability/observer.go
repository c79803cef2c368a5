package observability

import (
	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/engine"
)

// MetricsObserver turns engine lifecycle events into prometheus samples
type MetricsObserver struct{}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent implements engine.Observer
func (MetricsObserver) OnEvent(event engine.Event) {
	switch event.Type {
	case engine.EventExecEnd:
		recordQuery(OutcomeSuccess, event)
	case engine.EventCacheHit:
		cacheHitsTotal.Inc()
		recordQuery(OutcomeCacheHit, event)
	case engine.EventQueryError:
		recordQuery(OutcomeError, event)
		if err, ok := event.Data.(error); ok {
			queryErrorsTotal.WithLabelValues(string(errors.CodeOf(err))).Inc()
		}
	case engine.EventLoadEnd:
		if data, ok := event.Data.(map[string]any); ok {
			if rows, ok := data["rows"].(int); ok {
				loadedRows.Set(float64(rows))
			}
		}
	}
}

func recordQuery(outcome string, event engine.Event) {
	queriesTotal.WithLabelValues(outcome).Inc()
	queryDurationSeconds.WithLabelValues(outcome).Observe(event.Elapsed.Seconds())
}
