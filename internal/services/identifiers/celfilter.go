package identifiersvc

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"github.com/rzbill/cuidd/internal/ledger"
	"github.com/rzbill/cuidd/pkg/cuid"
)

// celFilter wraps a compiled CEL program evaluated per record during List.
// When disabled, Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("label", cel.StringType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("counter", cel.IntType),
		cel.Variable("fingerprint", cel.StringType),
		cel.Variable("random", cel.StringType),
		cel.Variable("issued_at_ms", cel.IntType),
		// Current time in ms for windowed filters
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, errors.Wrapf(ErrInvalidArgument, "filter: %v", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return celFilter{}, errors.Wrapf(ErrInvalidArgument, "filter must be boolean, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return celFilter{}, errors.Wrapf(ErrInvalidArgument, "filter: %v", err)
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the expression against a record. Evaluation errors drop
// the record.
func (f celFilter) Eval(r ledger.Record) bool {
	if !f.enabled {
		return true
	}
	p, err := cuid.Parse(r.ID)
	if err != nil {
		return false
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":           r.ID,
		"kind":         r.Kind,
		"label":        r.Label,
		"ts_ms":        p.TimestampMs,
		"counter":      int64(p.Counter),
		"fingerprint":  p.Fingerprint,
		"random":       p.Random,
		"issued_at_ms": r.IssuedAtMs,
		"now_ms":       time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
