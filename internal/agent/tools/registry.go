package tools

import (
	"github.com/northstar-insurance/server/internal/agent/model"
)

// Spec declares one tool's downstream function identifier and the parameters
// the extractor must account for.
type Spec struct {
	Name           model.ToolName
	Function       string
	RequiredParams []string
}

// Registry is the static mapping from tool name to downstream function.
// Validation against it is the invoker's responsibility, not the router's.
type Registry struct {
	specs map[model.ToolName]Spec
}

func NewRegistry(cfg model.ToolsConfig) *Registry {
	specs := map[model.ToolName]Spec{
		model.ToolPolicyLookup: {
			Name:           model.ToolPolicyLookup,
			Function:       cfg.PolicyFunction,
			RequiredParams: []string{"policy_id"},
		},
		model.ToolClaimStatus: {
			Name:           model.ToolClaimStatus,
			Function:       cfg.ClaimFunction,
			RequiredParams: []string{"claim_id"},
		},
		model.ToolDocumentCheck: {
			Name:           model.ToolDocumentCheck,
			Function:       cfg.DocumentFunction,
			RequiredParams: []string{"loss_type", "documents_submitted"},
		},
	}
	return &Registry{specs: specs}
}

// Lookup resolves a tool name against the registry.
func (r *Registry) Lookup(name model.ToolName) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}
