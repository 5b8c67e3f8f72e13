package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Call is the activation a filter expression is evaluated against.
type Call struct {
	Number   string
	Type     string
	RawType  int64
	Date     int64
	Duration int64
	Name     string
	Record   map[string]string
}

type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("number", cel.StringType),
		cel.Variable("type", cel.StringType),
		cel.Variable("rawType", cel.IntType),
		cel.Variable("date", cel.IntType),
		cel.Variable("duration", cel.IntType),
		cel.Variable("name", cel.StringType),
		cel.Variable("record", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

// CompileFilter compiles a boolean expression once so it can be evaluated for
// every call in a pass.
func (e *Evaluator) CompileFilter(expression string) (*Program, error) {
	ast, err := e.compile(expression)
	if err != nil {
		return nil, err
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Program{program: program}, nil
}

func (e *Evaluator) compile(expression string) (*cel.Ast, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}

	return ast, nil
}

type Program struct {
	program cel.Program
}

func (p *Program) Matches(ctx context.Context, call Call) (bool, error) {
	record := call.Record
	if record == nil {
		record = map[string]string{}
	}

	vars := map[string]interface{}{
		"number":   call.Number,
		"type":     call.Type,
		"rawType":  call.RawType,
		"date":     call.Date,
		"duration": call.Duration,
		"name":     call.Name,
		"record":   record,
	}

	result, _, err := p.program.ContextEval(ctx, vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}
