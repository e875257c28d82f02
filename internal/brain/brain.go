package brain

import "path/filepath"

// Brain bundles the three memories so callers needing more than one
// (Decision Engine, Learning Engine) can hold a single reference rather
// than wiring each memory independently.
type Brain struct {
	Page     *PageMemory
	Error    *ErrorMemory
	Workflow *WorkflowMemory
}

// New constructs all three memories rooted at <dataDir>/memory.
func New(dataDir string) *Brain {
	memDir := filepath.Join(dataDir, "memory")
	return &Brain{
		Page:     NewPageMemory(memDir),
		Error:    NewErrorMemory(memDir),
		Workflow: NewWorkflowMemory(memDir),
	}
}

// Flush persists all three memories.
func (b *Brain) Flush() error {
	if err := b.Page.Flush(); err != nil {
		return err
	}
	if err := b.Error.Flush(); err != nil {
		return err
	}
	return b.Workflow.Flush()
}

// Decay runs the maintenance decay pass across all three memories.
func (b *Brain) Decay(maxAgeDays int) int {
	return b.Page.Decay(maxAgeDays) + b.Error.Decay(maxAgeDays) + b.Workflow.Decay(maxAgeDays)
}

// GetStats aggregates per-memory stats.
func (b *Brain) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"page":     b.Page.GetStats(),
		"error":    b.Error.GetStats(),
		"workflow": b.Workflow.GetStats(),
	}
}
