package usecase

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// PendingRule decides whether an order still counts as pending.
type PendingRule struct {
	expr      string
	threshold float64
	program   cel.Program
}

// NewPendingRule compiles expr. The expression sees `order` as a map with
// id, userId, total and totalProducts, and `threshold` as a double.
func NewPendingRule(expr string, threshold float64) (*PendingRule, error) {
	env, err := cel.NewEnv(
		cel.Variable("order", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("threshold", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("pending rule %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return &PendingRule{expr: expr, threshold: threshold, program: program}, nil
}

// Expr returns the source expression.
func (r *PendingRule) Expr() string { return r.expr }

// Pending evaluates the rule for one order.
func (r *PendingRule) Pending(o Order) (bool, error) {
	out, _, err := r.program.Eval(map[string]any{
		"order": map[string]any{
			"id":            o.ID,
			"userId":        o.UserID,
			"total":         o.Total,
			"totalProducts": o.TotalProducts,
		},
		"threshold": r.threshold,
	})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	pending, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean value")
	}
	return pending, nil
}
