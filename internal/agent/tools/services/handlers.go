package services

import (
	"context"
	"errors"

	"github.com/northstar-insurance/server/internal/agent/model"
)

// Handlers serve the three downstream tool functions in-process, with the
// same argument contracts and error strings the deployed functions use.
type Handlers struct {
	data *Dataset
}

func NewHandlers(data *Dataset) *Handlers {
	return &Handlers{data: data}
}

// PolicyDetails answers policy_lookup: the full policy record by policy_id.
func (h *Handlers) PolicyDetails(ctx context.Context, args map[string]any) model.ToolResult {
	policyID, ok := stringArg(args, "policy_id")
	if !ok {
		return model.ErrorResult("policy_id is required")
	}

	policies, err := h.data.Policies(ctx)
	if err != nil {
		return model.ErrorResult(err.Error())
	}

	policy, ok := policies[policyID]
	if !ok {
		return model.ErrorResult("Policy not found")
	}
	return toResult(policy)
}

// ClaimStatus answers claim_status: the claim record by claim_id.
func (h *Handlers) ClaimStatus(ctx context.Context, args map[string]any) model.ToolResult {
	claimID, ok := stringArg(args, "claim_id")
	if !ok {
		return model.ErrorResult("claim_id is required")
	}

	claim, err := h.data.Claim(ctx, claimID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ErrorResult("Claim not found")
		}
		return model.ErrorResult(err.Error())
	}
	return toResult(claim)
}

// CheckDocuments answers document_check: required vs missing documents for a
// loss type.
func (h *Handlers) CheckDocuments(ctx context.Context, args map[string]any) model.ToolResult {
	lossType, ok := stringArg(args, "loss_type")
	if !ok {
		return model.ErrorResult("loss_type is required")
	}
	submitted := stringSliceArg(args, "documents_submitted")

	rules, err := h.data.DocumentRules(ctx)
	if err != nil {
		return model.ErrorResult(err.Error())
	}

	required := rules[lossType]
	missing := []string{}
	for _, doc := range required {
		found := false
		for _, s := range submitted {
			if s == doc {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, doc)
		}
	}

	return toResult(model.DocumentCheck{
		RequiredDocuments: required,
		MissingDocuments:  missing,
		Complete:          len(missing) == 0,
	})
}

func stringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func stringSliceArg(args map[string]any, name string) []string {
	v, ok := args[name]
	if !ok || v == nil {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// toResult flattens a typed payload into the generic ToolResult mapping.
func toResult(v any) model.ToolResult {
	raw, err := toJSONMap(v)
	if err != nil {
		return model.ErrorResult("invalid downstream response format")
	}
	return raw
}
