package learning

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ghostqa/internal/logging"
)

var auditMu sync.Mutex

// appendAudit appends one dispatched event as a line of newline-delimited
// JSON to <data>/learning/events/<date>.jsonl, best-effort: a write
// failure here never blocks or fails event dispatch.
func (e *Engine) appendAudit(ev Event) {
	if e.auditDir == "" {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if err := os.MkdirAll(e.auditDir, 0755); err != nil {
		logging.LearningWarn("failed to create learning audit directory: %v", err)
		return
	}

	path := filepath.Join(e.auditDir, time.Now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.LearningWarn("failed to open learning audit file: %v", err)
		return
	}
	defer f.Close()

	f.Write(data)
	f.Write([]byte("\n"))
}
