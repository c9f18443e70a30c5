// Package engine is the local execution environment (spec.md §4.5): a
// single worker goroutine multiplexing control operations (submit,
// cancel, join, list, watch/unwatch) against continuous event
// processing drawn from every active flow's operator queues.
//
// Grounded on the teacher's internal/engine (Engine/eventQueue/Clock):
// same single-consumer control-queue shape and flow-token generator
// idiom, retargeted from sync-rule firing to dataflow scheduling.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/nysm/internal/ast"
	"github.com/roach88/nysm/internal/compiler"
	"github.com/roach88/nysm/internal/ir"
	rtoptions "github.com/roach88/nysm/internal/options"
	"github.com/roach88/nysm/internal/operator"
	"github.com/roach88/nysm/internal/parser"
	"github.com/roach88/nysm/internal/querysql"
	"github.com/roach88/nysm/internal/store"
	"github.com/roach88/nysm/internal/symtab"
)

// controlQueueCapacity is the bounded control queue's capacity
// (spec.md §4.5): "a bounded (capacity 100) single-consumer
// multi-producer queue". Submitters block when it is full.
const controlQueueCapacity = 100

// maxSteps bounds one data-work pass between control-queue checks
// (spec.md §4.5).
const maxSteps = 250

// Engine is the scheduler plus its compiler front-end wiring: Submit
// parses, type-checks, and plans on the caller's goroutine (spec.md
// §2's "client thread parses and plans a query"), then hands the
// compiled flow to the single worker goroutine via the control queue.
type Engine struct {
	control chan Op

	idGen     FlowTokenGenerator
	ingestion Ingestion
	memory    *store.Store
	logger    *slog.Logger

	catalogMu sync.Mutex
	root      *symtab.Table

	// Worker-owned state below: touched only inside run().
	flows            map[string]*ActiveFlowData
	sessions         map[int64]*Session
	nextSessionID    int64
	active           []*operator.Queue
	ingestionStarted bool

	// ctxFlow maps an operator's Context back to the flow id it belongs
	// to, populated at AddFlow time. ElementCompleteOp only carries a
	// Context (PostElementComplete's signature matches
	// operator.ControlPoster, which knows nothing about flow ids), so
	// this is how the worker loop resolves which ActiveFlowData a given
	// natural-end signal concerns.
	ctxFlow map[operator.Context]string

	stopped chan struct{}
}

// New constructs an Engine. Call Run in its own goroutine before
// submitting anything.
func New(idGen FlowTokenGenerator, ingestion Ingestion, memory *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		control:   make(chan Op, controlQueueCapacity),
		idGen:     idGen,
		ingestion: ingestion,
		memory:    memory,
		logger:    logger,
		root:      symtab.New(symtab.Builtins()),
		flows:     make(map[string]*ActiveFlowData),
		sessions:  make(map[int64]*Session),
		ctxFlow:   make(map[operator.Context]string),
		stopped:   make(chan struct{}),
	}
}

// NewDefault wires production defaults: a UUIDv7 flow-token generator,
// the in-process ingestion registry, and a fresh in-memory output
// store.
func NewDefault(logger *slog.Logger) (*Engine, error) {
	mem, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("engine: open memory-output store: %w", err)
	}
	return New(UUIDv7Generator{}, NewInProcessIngestion(), mem, logger), nil
}

// SubmitResult is submit's caller-facing outcome (spec.md §6).
type SubmitResult struct {
	Messages []string
	FlowID   string // "" if nothing was deployed
}

// Submit parses, elaborates, and (for a SELECT) deploys query.
// ParseError/TypeError/PlanError never surface as a Go error: per
// spec.md §7 they are written into Messages and the flow is not
// deployed. Every path returns a nil error, including option
// validation and deployment failures, which are reported in Messages
// as well; Submit does not detect an engine that has already shut
// down.
func (e *Engine) Submit(query string, options map[string]any) (SubmitResult, error) {
	if options != nil {
		if err := rtoptions.Validate(options); err != nil {
			return SubmitResult{Messages: []string{err.Error()}}, nil
		}
	}

	stmt, err := parser.Parse(query)
	if err != nil {
		return SubmitResult{Messages: []string{err.Error()}}, nil
	}

	e.catalogMu.Lock()
	spec, planErr := compiler.CreateExecPlan(stmt, e.root)
	describeShow, isDescribeShow := e.describeOrShow(stmt)
	e.catalogMu.Unlock()
	if planErr != nil {
		return SubmitResult{Messages: []string{planErr.Error()}}, nil
	}

	if inner, ok := explainInner(stmt); ok {
		return SubmitResult{Messages: []string{ExplainText(inner, spec)}}, nil
	}
	if isDescribeShow {
		return SubmitResult{Messages: describeShow}, nil
	}
	if spec.Root == nil {
		// CREATE STREAM / DROP: catalog already mutated above.
		return SubmitResult{Messages: []string{spec.Statement}}, nil
	}

	flowID := e.idGen.Generate()
	flow, err := querysql.Compile(spec, querysql.Deps{
		ConsoleSink: &flowSink{eng: e, flowID: flowID},
		Memory:      e.memory,
		Poster:      e,
	})
	if err != nil {
		return SubmitResult{Messages: []string{err.Error()}}, nil
	}

	reply := make(chan error, 1)
	e.control <- &AddFlowOp{ID: flowID, Statement: spec.Statement, Flow: flow, Reply: reply}
	if err := <-reply; err != nil {
		return SubmitResult{Messages: []string{err.Error()}}, nil
	}

	if autowatchOption(options) {
		if sid, ok := submitterSessionID(options); ok {
			watchReply := make(chan error, 1)
			e.control <- &WatchFlowOp{SessionID: sid, FlowID: flowID, Reply: watchReply}
			<-watchReply
		}
	}

	return SubmitResult{Messages: []string{"flow deployed: " + flowID}, FlowID: flowID}, nil
}

func autowatchOption(options map[string]any) bool {
	v, ok := options["rtengine.flow.autowatch"]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	if !ok {
		return true
	}
	return b
}

func submitterSessionID(options map[string]any) (int64, bool) {
	v, ok := options["rtengine.query.submitter.session.id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func explainInner(stmt ast.Statement) (ast.Statement, bool) {
	e, ok := stmt.(*ast.ExplainStatement)
	if !ok {
		return nil, false
	}
	return e.Inner, true
}

// describeOrShow formats DESCRIBE/SHOW output directly from the
// catalog; compiler.CreateExecPlan only stubs these out as an empty
// FlowSpec with a statement label, since they mutate nothing and
// deploy no flow.
func (e *Engine) describeOrShow(stmt ast.Statement) ([]string, bool) {
	switch s := stmt.(type) {
	case *ast.DescribeStatement:
		schema, ok := e.root.ResolveStream(s.Name)
		if !ok {
			return []string{fmt.Sprintf("no such stream: %s", s.Name)}, true
		}
		lines := make([]string, 0, len(schema.Columns)+1)
		lines = append(lines, fmt.Sprintf("stream %s:", s.Name))
		for _, c := range schema.Columns {
			lines = append(lines, fmt.Sprintf("  %s %s", c.Name, c.Type))
		}
		return lines, true
	case *ast.ShowStatement:
		switch s.Kind {
		case ast.ShowStreams:
			names := e.root.StreamNames()
			if len(names) == 0 {
				return []string{"(no streams)"}, true
			}
			return names, true
		case ast.ShowFlows:
			reply := make(chan map[string]FlowInfo, 1)
			e.control <- &ListFlowsOp{Reply: reply}
			infos := <-reply
			if len(infos) == 0 {
				return []string{"(no flows)"}, true
			}
			lines := make([]string, 0, len(infos))
			for id, info := range infos {
				lines = append(lines, fmt.Sprintf("%s: %s [%s]", id, info.Statement, info.State))
			}
			return lines, true
		}
	}
	return nil, false
}

// PostElementComplete implements operator.ControlPoster: it hands the
// event back to the scheduler through the control queue, same as
// every other control operation, rather than touching scheduler state
// directly from whatever operator goroutine happens to call it. In
// practice Emit always runs on the worker goroutine itself (TakeEvent
// is only ever driven from run()'s data-work pass), so the ctxFlow
// lookup below is safe without locking and this send never contends;
// routing it through the channel anyway keeps a single path for every
// state mutation.
func (e *Engine) PostElementComplete(ctx operator.Context) {
	e.control <- &ElementCompleteOp{FlowID: e.ctxFlow[ctx], Ctx: ctx}
}

// ingester is satisfied by InProcessIngestion; it is kept separate
// from the Ingestion contract because pushing a row is a producer-side
// concern, not something the scheduler itself calls.
type ingester interface {
	Ingest(stream string, row ir.Row) error
}

// Ingest pushes one externally arriving row for stream into every
// active flow currently reading it. It is the engine-facing half of
// the ingestion subsystem's contract — the producer side bind_sink
// wires up during AddFlow. Returns an error if the configured
// Ingestion implementation doesn't support direct pushes (a real
// message-bus connector would instead drive rows in on its own, with
// no Ingest call at all).
func (e *Engine) Ingest(stream string, row ir.Row) error {
	ig, ok := e.ingestion.(ingester)
	if !ok {
		return fmt.Errorf("engine: configured ingestion subsystem does not support direct Ingest")
	}
	if err := ig.Ingest(stream, row); err != nil {
		return err
	}
	// Wake the worker so the queued row is drained now rather than on
	// the next unrelated control op.
	e.control <- &NoopOp{}
	return nil
}
