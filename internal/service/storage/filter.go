package storage

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"fishsense/internal/model"
)

// CompileFilter compiles a listing filter. Field names follow the upload
// payload (utc_unix_timestamp, fish_found, estimated_length, ...).
func CompileFilter(expression string) (func(model.PhotoProjection) bool, error) {
	if strings.TrimSpace(expression) == "" {
		return func(model.PhotoProjection) bool { return true }, nil
	}

	program, err := expr.Compile(expression, expr.Env(model.PhotoProjection{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter '%s': %w", expression, err)
	}

	return func(p model.PhotoProjection) bool {
		result, err := expr.Run(program, p)
		if err != nil {
			return false
		}
		b, ok := result.(bool)
		return ok && b
	}, nil
}
