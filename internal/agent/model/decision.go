package model

import "strings"

// ToolName identifies one of the downstream query handlers. The set is
// closed: anything a model emits outside it normalises to ToolInvalid so no
// unconstrained string travels downstream.
type ToolName string

const (
	ToolPolicyLookup  ToolName = "policy_lookup"
	ToolDocumentCheck ToolName = "document_check"
	ToolClaimStatus   ToolName = "claim_status"

	// ToolNone means the router found no applicable tool.
	ToolNone ToolName = "none"
	// ToolInvalid marks a routed value outside the enumerated set.
	ToolInvalid ToolName = "invalid"
)

// KnownTools lists the three routable tools in a stable order.
var KnownTools = []ToolName{ToolPolicyLookup, ToolDocumentCheck, ToolClaimStatus}

// ParseToolName normalises a raw model-produced tool value.
func ParseToolName(v string) ToolName {
	switch ToolName(strings.ToLower(strings.TrimSpace(v))) {
	case ToolPolicyLookup:
		return ToolPolicyLookup
	case ToolDocumentCheck:
		return ToolDocumentCheck
	case ToolClaimStatus:
		return ToolClaimStatus
	case ToolNone, "":
		return ToolNone
	default:
		return ToolInvalid
	}
}

// Routable reports whether the tool is one of the three invokable handlers.
func (t ToolName) Routable() bool {
	switch t {
	case ToolPolicyLookup, ToolDocumentCheck, ToolClaimStatus:
		return true
	default:
		return false
	}
}

// Confidence is the router's self-assessed certainty level.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence normalises a raw confidence value; anything unrecognised
// is treated as low so it still triggers escalation.
func ParseConfidence(v string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(v))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// RoutingDecision is the router's classification of one query.
type RoutingDecision struct {
	Tool       ToolName   `json:"tool"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

// Query is the immutable input to one orchestration cycle.
type Query struct {
	Text      string `json:"query"`
	SessionID string `json:"session_id"`
}

// FinalAnswer is the terminal artifact of one orchestration cycle.
type FinalAnswer struct {
	Text       string
	ToolUsed   ToolName
	Confidence Confidence
}

// ToolResult is the polymorphic outcome of a tool invocation: either a
// domain payload or an {"error": reason} shape.
type ToolResult map[string]any

// ErrorResult builds a ToolResult carrying only an error reason.
func ErrorResult(reason string) ToolResult {
	return ToolResult{"error": reason}
}

// IsError reports whether the result carries the error marker.
func (r ToolResult) IsError() bool {
	if r == nil {
		return false
	}
	_, ok := r["error"]
	return ok
}

// ErrorReason returns the error marker text, if any.
func (r ToolResult) ErrorReason() string {
	if r == nil {
		return ""
	}
	if s, ok := r["error"].(string); ok {
		return s
	}
	return ""
}

// Empty reports whether the result holds no data at all.
func (r ToolResult) Empty() bool {
	return len(r) == 0
}
