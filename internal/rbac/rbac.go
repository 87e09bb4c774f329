// Package rbac decides role-based access using an in-process OPA Rego
// policy. Trainers manage assignments and see the admin overview; players
// may only read their own data.
package rbac

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const policyQuery = "data.smartdisc.access.allow"

const accessPolicy = `package smartdisc.access

default allow = false

trainer if input.user.role == "trainer"

trainer_actions := {
	"admin.view",
	"players.list",
	"assignment.create",
	"assignment.delete",
	"assignment.read",
}

allow if {
	trainer
	input.action in trainer_actions
}

allow if {
	input.user.role == "player"
	input.action == "assignment.read"
	input.resource.player_id == input.user.id
}
`

// Known actions.
const (
	ActionAdminView        = "admin.view"
	ActionPlayersList      = "players.list"
	ActionAssignmentCreate = "assignment.create"
	ActionAssignmentDelete = "assignment.delete"
	ActionAssignmentRead   = "assignment.read"
)

// Input describes one access decision.
type Input struct {
	UserID string
	Role   string
	Action string
	// ResourcePlayerID is the player whose data the action touches, for
	// own-data checks. Empty when the action has no player scope.
	ResourcePlayerID string
}

// Evaluator evaluates the access policy. Construct once; evaluation is
// goroutine-safe.
type Evaluator struct {
	compiler *ast.Compiler
}

// NewEvaluator compiles the access policy.
func NewEvaluator() (*Evaluator, error) {
	compiler, err := ast.CompileModules(map[string]string{"access.rego": accessPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	return &Evaluator{compiler: compiler}, nil
}

// Allow evaluates the policy for in. Errors count as denied.
func (e *Evaluator) Allow(ctx context.Context, in Input) (bool, error) {
	input := map[string]interface{}{
		"user": map[string]interface{}{
			"id":   in.UserID,
			"role": in.Role,
		},
		"action": in.Action,
		"resource": map[string]interface{}{
			"player_id": in.ResourcePlayerID,
		},
	}
	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("access policy returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("access policy returned non-boolean")
	}
	return allowed, nil
}
