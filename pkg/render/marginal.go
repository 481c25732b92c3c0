package render

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/travigo/transferboard/pkg/ctdf"
)

const DefaultMarginalRule = "TransferSlack <= 1"

// MarginalRule flags rows that are feasible but likely to be missed.
// Expressions are evaluated against the fields of ctdf.ComparisonRow.
type MarginalRule struct {
	Source string

	program *vm.Program
}

func CompileMarginalRule(source string) (*MarginalRule, error) {
	if source == "" {
		source = DefaultMarginalRule
	}

	program, err := expr.Compile(source, expr.Env(ctdf.ComparisonRow{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile marginal rule %q: %w", source, err)
	}

	return &MarginalRule{
		Source:  source,
		program: program,
	}, nil
}

// Match on a nil rule never flags anything.
func (r *MarginalRule) Match(row ctdf.ComparisonRow) (bool, error) {
	if r == nil || r.program == nil {
		return false, nil
	}

	output, err := expr.Run(r.program, row)
	if err != nil {
		return false, err
	}

	return output.(bool), nil
}
