package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config") {
		assert.Fail(t, "zero-value field", field)
	}
}

func TestBoundsOrdered(t *testing.T) {
	cfg := Default()
	require.LessOrEqual(t, cfg.Line.Size.Default, cfg.Line.Size.Maximal)
	require.LessOrEqual(t, cfg.Headers.Number.Default, cfg.Headers.Number.Maximal)
	require.LessOrEqual(t, cfg.Headers.Space.Default, cfg.Headers.Space.Maximal)
	require.LessOrEqual(t, cfg.Headers.MaxFieldSize, cfg.Headers.Space.Maximal)
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := 0; field < a.Value.NumField(); field++ {
			v := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fields = append(fields, visit(v, name+"."+a.Type.Field(field).Name)...)
		}

		return fields
	}

	if a.Value.IsZero() {
		return []string{name}
	}

	return nil
}
