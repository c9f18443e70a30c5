package engine

import (
	"fmt"
	"sync"

	"github.com/roach88/nysm/internal/ir"
)

// IngestSink receives rows arriving for one named stream. operator.Queue
// implements the shape this needs (Enqueue(ir.Row)); the scheduler binds
// a deployed flow's per-stream Inbound queues directly.
type IngestSink interface {
	Enqueue(row ir.Row)
}

// Ingestion is the narrow contract the scheduler depends on for the
// embedded event-ingestion subsystem (spec.md §6): an external
// collaborator out of this core's scope, specified here only by the
// start/stop lifecycle and the sink-binding registry spec.md §9 calls
// for ("Global sink-binding registry... a narrow interface with
// bind/drop/lookup and internal synchronization").
type Ingestion interface {
	Start() error
	Stop() error
	BindSink(stream string, sink IngestSink) (token int64, err error)
	DropSink(stream string, token int64) error
}

// InProcessIngestion is the default Ingestion implementation: a
// process-local fan-out registry with no external transport. It is
// what the standalone binary and the test harness use in place of a
// real message-bus connector; Ingest is its only method outside the
// Ingestion contract, the entry point external producers (Engine.Ingest,
// and through it the harness and tests) call to push a row for a
// stream.
type InProcessIngestion struct {
	mu      sync.RWMutex
	started bool
	nextTok int64
	sinks   map[string]map[int64]IngestSink
}

// NewInProcessIngestion constructs an unstarted registry.
func NewInProcessIngestion() *InProcessIngestion {
	return &InProcessIngestion{sinks: make(map[string]map[int64]IngestSink)}
}

func (i *InProcessIngestion) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.started = true
	return nil
}

func (i *InProcessIngestion) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.started = false
	i.sinks = make(map[string]map[int64]IngestSink)
	return nil
}

func (i *InProcessIngestion) BindSink(stream string, sink IngestSink) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.sinks[stream] == nil {
		i.sinks[stream] = make(map[int64]IngestSink)
	}
	i.nextTok++
	tok := i.nextTok
	i.sinks[stream][tok] = sink
	return tok, nil
}

func (i *InProcessIngestion) DropSink(stream string, token int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	set, ok := i.sinks[stream]
	if !ok {
		return nil
	}
	delete(set, token)
	if len(set) == 0 {
		delete(i.sinks, stream)
	}
	return nil
}

// Ingest fans row out to every sink currently bound to stream. Safe to
// call concurrently with BindSink/DropSink and from any goroutine; it
// never touches scheduler-owned state directly, only the queues the
// scheduler already registered in its active set.
func (i *InProcessIngestion) Ingest(stream string, row ir.Row) error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if !i.started {
		return fmt.Errorf("ingestion: not started")
	}
	for _, sink := range i.sinks[stream] {
		sink.Enqueue(row)
	}
	return nil
}
