package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/leengari/memquery/internal/engine"
	"github.com/leengari/memquery/internal/storage"
	"github.com/leengari/memquery/internal/storage/manager"
)

const peopleCSV = `FirstName,LastName,Age,City
Pam,Beesly,25,Scranton
Gina,Linetti,30,Brooklyn
Sam,Malone,32,Boston
Jake,Peralta,,Brooklyn
Rosa,Diaz,30,Brooklyn
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupEngine writes the people CSV to a temp dir and loads it through the source registry
func setupEngine(t *testing.T, opts ...engine.Option) *engine.QueryEngine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "people.csv")
	if err := os.WriteFile(path, []byte(peopleCSV), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	src, err := manager.Open(context.Background(), storage.Config{Kind: storage.KindFile, Path: path}, quietLogger())
	if err != nil {
		t.Fatalf("failed to open source: %v", err)
	}

	opts = append([]engine.Option{engine.WithLogger(quietLogger())}, opts...)
	eng := engine.New(src, opts...)
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to initialize engine: %v", err)
	}
	return eng
}

// MockObserver records every event it receives
type MockObserver struct {
	mu     sync.Mutex
	Events []engine.Event
}

func (m *MockObserver) OnEvent(event engine.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *MockObserver) Snapshot() []engine.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]engine.Event, len(m.Events))
	copy(out, m.Events)
	return out
}
