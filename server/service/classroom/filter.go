package classroom

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/hrygo/roomtable/plugin/timetable"
)

var (
	filterEnvOnce sync.Once
	filterEnv     *cel.Env
	filterEnvErr  error
)

// sessionEnv declares the variables a session filter can reference.
func sessionEnv() (*cel.Env, error) {
	filterEnvOnce.Do(func() {
		filterEnv, filterEnvErr = cel.NewEnv(
			cel.Variable("room", cel.StringType),
			cel.Variable("subject", cel.StringType),
			cel.Variable("professor", cel.StringType),
			cel.Variable("day", cel.StringType),
			cel.Variable("time", cel.StringType),
			cel.Variable("periods", cel.ListType(cel.IntType)),
		)
	})
	return filterEnv, filterEnvErr
}

// SessionFilter is a compiled CEL predicate over sessions, for example
// `day == "월" && periods.exists(p, p >= 3)` or `room.startsWith("B")`.
type SessionFilter struct {
	expr    string
	program cel.Program
}

// CompileFilter parses and type-checks a filter expression. The expression
// must evaluate to bool.
func CompileFilter(expr string) (*SessionFilter, error) {
	env, err := sessionEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must evaluate to bool, got %s", out)
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return &SessionFilter{expr: expr, program: program}, nil
}

// String returns the source expression.
func (f *SessionFilter) String() string {
	return f.expr
}

// Match evaluates the filter against one session of room.
func (f *SessionFilter) Match(room string, s *timetable.Session) (bool, error) {
	periods := make([]int64, len(s.Periods))
	for i, p := range s.Periods {
		periods[i] = int64(p)
	}
	out, _, err := f.program.Eval(map[string]any{
		"room":      room,
		"subject":   s.Subject,
		"professor": s.Professor,
		"day":       s.Day,
		"time":      s.Time,
		"periods":   periods,
	})
	if err != nil {
		return false, err
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.expr, out.Value())
	}
	return matched, nil
}
