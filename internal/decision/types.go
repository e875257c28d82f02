// Package decision implements the Decision Engine: a tiered resolver that
// answers a typed decision request from local data (Selector Knowledge
// Base, page memory, heuristics) before falling back to the AI Gateway.
package decision

import "ghostqa/internal/selectorkb"

// Type is the closed set of decision request kinds.
type Type string

const (
	TypeFindElement Type = "FindElement"
	TypeChooseAction Type = "ChooseAction"
	TypeHandleError  Type = "HandleError"
	TypePredictNext  Type = "PredictNext"
	TypeWaitTime     Type = "WaitTime"
	TypePageType     Type = "PageType"
	TypeRecovery     Type = "Recovery"
)

// Source identifies which tier produced a Decision.
type Source string

const (
	SourceKnowledgeBase Source = "knowledge_base"
	SourcePageMemory    Source = "page_memory"
	SourceHeuristic     Source = "heuristic"
	SourceAIGateway     Source = "ai_gateway"
	SourceDefault       Source = "default"
)

// Request is a typed ask of the Decision Engine.
type Request struct {
	Type        Type
	Domain      string
	Page        string
	PageType    string
	Intent      string
	StepText    string
	ErrorMsg    string
	Action      string
	Screenshot  []byte
	MinConfidence float64
	DisallowAI  bool // Strict execution mode: never consult the AI Gateway tier
}

// Decision is the Decision Engine's answer: a value, the tier that
// produced it, a confidence score, and enough provenance to later record
// the outcome back to the source.
type Decision struct {
	Type         Type              `json:"type"`
	Source       Source            `json:"source"`
	Confidence   float64           `json:"confidence"`
	Value        string            `json:"value"`
	Strategy     selectorkb.Strategy `json:"strategy,omitempty"`
	Alternatives []string          `json:"alternatives,omitempty"`
	Reasoning    string            `json:"reasoning,omitempty"`
	MemoryID     string            `json:"memory_id,omitempty"`
}
