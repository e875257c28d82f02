package learning

import (
	"sync"
	"time"

	"ghostqa/internal/brain"
	"ghostqa/internal/logging"
	"ghostqa/internal/selectorkb"
	"ghostqa/internal/store"
)

const maxQueuedEvents = 1000

// Engine is the Learning Engine. It alone holds references to both the
// Selector Knowledge Base and the Brain memories, so neither store needs
// a back-reference to the other.
type Engine struct {
	kb    *selectorkb.KB
	brain *brain.Brain

	mu       sync.Mutex
	sessions map[string]*session
	queue    chan Event

	auditDir string
	ledger   *store.LedgerStore

	doneCh chan struct{}
}

// New constructs a Learning Engine and starts its event-dispatch loop.
func New(kb *selectorkb.KB, b *brain.Brain, auditDir string) *Engine {
	e := &Engine{
		kb:       kb,
		brain:    b,
		sessions: make(map[string]*session),
		queue:    make(chan Event, maxQueuedEvents),
		auditDir: auditDir,
		doneCh:   make(chan struct{}),
	}
	go e.dispatchLoop()
	return e
}

// SetLedger attaches a queryable SQLite mirror of the audit trail. Best
// effort: a ledger write failure never blocks or fails event dispatch.
func (e *Engine) SetLedger(l *store.LedgerStore) { e.ledger = l }

// StartSession begins tracking page/action/error sequences for a test run.
func (e *Engine) StartSession(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[id] = &session{ID: id, Started: time.Now()}
}

// RecordEvent enqueues an event for dispatch. If the queue is full the
// event is dropped with a warning.
func (e *Engine) RecordEvent(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case e.queue <- ev:
	default:
		logging.LearningWarn("event queue full, dropping event type=%s session=%s", ev.Type, ev.SessionID)
	}
}

// EndSession persists a workflow pattern (if at least 2 pages were
// observed) and flushes all memories.
func (e *Engine) EndSession(id string, success bool) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	if ok {
		delete(e.sessions, id)
	}
	e.mu.Unlock()

	if !ok {
		return
	}

	if len(s.PageSequence) >= 2 {
		failureStep := ""
		if !success && len(s.ActionSequence) > 0 {
			failureStep = s.ActionSequence[len(s.ActionSequence)-1]
		}
		e.brain.Workflow.RememberWorkflow(id, s.PageSequence, s.ActionSequence, int(time.Since(s.Started).Milliseconds()), success, failureStep)
	}

	if err := e.brain.Flush(); err != nil {
		logging.LearningWarn("failed to flush brain memories at session end: %v", err)
	}
	e.kb.ForceSave()
}

// dispatchLoop drains the event queue, dispatching synchronously to the
// matching handler and appending an audit line, one event at a time.
func (e *Engine) dispatchLoop() {
	defer close(e.doneCh)
	for ev := range e.queue {
		e.handle(ev)
		e.appendAudit(ev)
		e.appendLedger(ev)
	}
}

func (e *Engine) appendLedger(ev Event) {
	if e.ledger == nil {
		return
	}
	success := ev.Type == EventActionSuccess || ev.Type == EventElementFound || ev.Type == EventErrorRecovered || ev.Type == EventWorkflowCompleted
	if err := e.ledger.Append(store.LedgerEntry{
		EventType: string(ev.Type), Domain: ev.Domain, Page: ev.Page, Selector: ev.Selector,
		Success: success, Message: ev.Message, Recorded: ev.Timestamp,
	}); err != nil {
		logging.LearningWarn("ledger append failed for event type=%s: %v", ev.Type, err)
	}
}

func (e *Engine) handle(ev Event) {
	e.trackSequence(ev)

	switch ev.Type {
	case EventActionSuccess:
		if ev.Selector != "" {
			e.kb.AddLearning(ev.Domain, ev.Page, ev.Target, ev.Selector, selectorkb.Strategy(ev.Strategy), true, "", nil)
			e.brain.Page.RememberPage(brain.PageSignature{URLPattern: ev.Page, PageType: ev.PageType}, 0, map[string]string{ev.Target: ev.Selector})
		}
	case EventActionFailure:
		if ev.Selector != "" {
			e.kb.AddLearning(ev.Domain, ev.Page, ev.Target, ev.Selector, selectorkb.Strategy(ev.Strategy), false, "", nil)
		}
		if ev.Message != "" {
			worked := false
			e.brain.Error.RememberError("action_failure", ev.Message, ev.FieldHint, ev.Recovery, &worked)
		}
	case EventElementFound:
		if ev.Selector != "" {
			e.kb.AddLearningWithSource(ev.Domain, ev.Page, ev.Target, ev.Selector, selectorkb.Strategy(ev.Strategy), true, "", nil, selectorkb.LearnedFromExploration)
		}
	case EventPageLoaded:
		e.brain.Page.RememberPage(brain.PageSignature{URLPattern: ev.Page, PageType: ev.PageType}, ev.LoadTimeMs, nil)
	case EventErrorOccurred:
		e.brain.Error.RememberError("runtime_error", ev.Message, ev.FieldHint, "", nil)
	case EventErrorRecovered:
		worked := true
		e.brain.Error.RememberError("runtime_error", ev.Message, ev.FieldHint, ev.Recovery, &worked)
	case EventWorkflowCompleted, EventWorkflowFailed:
		// session-level aggregation happens in EndSession; nothing
		// further to do per-event.
	}
}

func (e *Engine) trackSequence(ev Event) {
	if ev.SessionID == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[ev.SessionID]
	if !ok {
		return
	}
	if ev.PageType != "" {
		s.PageSequence = append(s.PageSequence, ev.PageType)
	}
	if ev.Action != "" {
		s.ActionSequence = append(s.ActionSequence, ev.Action)
	}
	if ev.Type == EventErrorOccurred {
		s.Errors++
	}
}

// DecayOldKnowledge drops stale, low-confidence brain-memory entries.
func (e *Engine) DecayOldKnowledge(maxAgeDays int) int {
	return e.brain.Decay(maxAgeDays)
}

// Consolidate forces a flush of all stores.
func (e *Engine) Consolidate() {
	e.kb.ForceSave()
	if err := e.brain.Flush(); err != nil {
		logging.LearningWarn("consolidate: failed to flush brain memories: %v", err)
	}
}

// Close drains and stops the dispatch loop.
func (e *Engine) Close() {
	close(e.queue)
	<-e.doneCh
}
