// Package policy decides who may do what, using an embedded Rego policy
// evaluated in-process by OPA.
package policy

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/pkordes/erj-report/internal/domain"
)

//go:embed authz.rego
var defaultModule string

const query = "data.erj.authz.allow"

// Authorizer evaluates a prepared Rego query. It is safe for concurrent use.
type Authorizer struct {
	query rego.PreparedEvalQuery
}

// New compiles the embedded policy.
func New(ctx context.Context) (*Authorizer, error) {
	return NewWithModule(ctx, defaultModule)
}

// NewWithModule compiles a caller-supplied policy. The module must define
// data.erj.authz.allow.
func NewWithModule(ctx context.Context, module string) (*Authorizer, error) {
	pq, err := rego.New(
		rego.Query(query),
		rego.Module("authz.rego", module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("policy.New: prepare: %w", err)
	}
	return &Authorizer{query: pq}, nil
}

// Authorize returns nil when the policy allows the request and an error
// wrapping domain.ErrForbidden when it does not.
func (a *Authorizer) Authorize(ctx context.Context, req domain.AccessRequest) error {
	rs, err := a.query.Eval(ctx, rego.EvalInput(input(req)))
	if err != nil {
		return fmt.Errorf("policy.Authorize: eval: %w", err)
	}
	if !rs.Allowed() {
		return fmt.Errorf("%w: %s may not %s", domain.ErrForbidden, describe(req.Actor), req.Action)
	}
	return nil
}

// input builds the document exposed to the policy as `input`. Only the
// fields the policy reads are included.
func input(req domain.AccessRequest) map[string]any {
	in := map[string]any{
		"action": req.Action,
		"actor": map[string]any{
			"id":   req.Actor.ID,
			"name": req.Actor.Name,
			"role": req.Actor.Role,
		},
	}
	if req.Report != nil {
		in["report"] = map[string]any{
			"number": req.Report.Number,
			"currentDriver": map[string]any{
				"id":   req.Report.CurrentDriver.ID,
				"name": req.Report.CurrentDriver.Name,
			},
		}
	}
	if req.UserID != "" {
		in["user"] = map[string]any{"id": req.UserID}
	}
	return in
}

func describe(a domain.Actor) string {
	if a.ID == "" {
		return "anonymous caller"
	}
	return "user " + a.ID
}
