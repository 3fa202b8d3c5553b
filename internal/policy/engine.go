// Package policy decides whether a conversation turn may start.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Refusal reasons produced by the default policy.
const (
	ReasonEmptyQuestion = "empty_question"
	ReasonNoDataset     = "no_dataset"
	ReasonMissingAPIKey = "missing_api_key"
)

// TurnInput is the policy input for one submission.
type TurnInput struct {
	Question        string `json:"question"`
	DatasetSelected bool   `json:"dataset_selected"`
	Provider        string `json:"provider"`
	APIKeySet       bool   `json:"api_key_set"`
}

// Decision is the policy outcome.
type Decision struct {
	Allow  bool
	Reason string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.lumora.turn.decision"),
		rego.Module("turn.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewDefaultEngine compiles DefaultPolicy.
func NewDefaultEngine(ctx context.Context) (*Engine, error) {
	return NewEngine(ctx, DefaultPolicy)
}

// Evaluate checks whether a turn may be submitted.
func (e *Engine) Evaluate(ctx context.Context, input TurnInput) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	// The policy defines a default, so an empty result set means a broken module.
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Decision{}, fmt.Errorf("policy produced no decision")
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}
	allow, _ := obj["allow"].(bool)
	reason, _ := obj["reason"].(string)
	return Decision{Allow: allow, Reason: reason}, nil
}

// DefaultPolicy refuses blank questions, submissions without an active
// dataset, and live-provider submissions without an API key, in that order.
const DefaultPolicy = `
package lumora.turn

import rego.v1

default decision := {"allow": true, "reason": ""}

decision := {"allow": false, "reason": "empty_question"} if {
	trim_space(input.question) == ""
} else := {"allow": false, "reason": "no_dataset"} if {
	not input.dataset_selected
} else := {"allow": false, "reason": "missing_api_key"} if {
	input.provider == "openrouter"
	not input.api_key_set
}
`
