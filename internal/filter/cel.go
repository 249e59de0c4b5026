package filter

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// Expr wraps a compiled CEL program evaluated client-side against normalized
// live-stream records. When disabled (empty expression), Match always returns
// true.
type Expr struct {
	prog    cel.Program
	enabled bool
}

// NewExpr compiles expr against the record variables:
//
//	level, source, message: string
//	ts_ms, now_ms:          int
//	raw:                    the decoded raw payload (dyn)
//
// An empty expression yields a disabled Expr that matches everything.
func NewExpr(expr string) (Expr, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Expr{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("level", cel.StringType),
		cel.Variable("source", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
		cel.Variable("raw", cel.DynType),
	)
	if err != nil {
		return Expr{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Expr{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Expr{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Expr{}, err
	}
	return Expr{prog: prog, enabled: true}, nil
}

// Enabled reports whether a non-empty expression was compiled.
func (e Expr) Enabled() bool { return e.enabled }

// Match evaluates the expression against one record. Evaluation errors count
// as non-matches. When disabled, returns true.
func (e Expr) Match(level, source, message string, tsMs int64, raw []byte) bool {
	if !e.enabled {
		return true
	}
	var rawObj any
	_ = json.Unmarshal(raw, &rawObj)
	out, _, err := e.prog.Eval(map[string]any{
		"level":   level,
		"source":  source,
		"message": message,
		"ts_ms":   tsMs,
		"now_ms":  time.Now().UnixMilli(),
		"raw":     rawObj,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
