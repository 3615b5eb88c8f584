package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	e := NewJSEvaluator()

	tests := []struct {
		name  string
		expr  string
		scope Scope
		want  interface{}
	}{
		{
			name:  "dotted path into nested map",
			expr:  "user.name",
			scope: Scope{"user": map[string]interface{}{"name": "Ann"}},
			want:  "Ann",
		},
		{
			name:  "comparison",
			expr:  "count > 0",
			scope: Scope{"count": 1},
			want:  true,
		},
		{
			name:  "comparison false",
			expr:  "count > 0",
			scope: Scope{"count": 0},
			want:  false,
		},
		{
			name:  "arithmetic",
			expr:  "a + b",
			scope: Scope{"a": 2, "b": 3},
			want:  int64(5),
		},
		{
			name:  "ternary",
			expr:  "active ? 'on' : 'off'",
			scope: Scope{"active": true},
			want:  "on",
		},
		{
			name:  "string concatenation",
			expr:  "'Hello, ' + user.name",
			scope: Scope{"user": map[string]interface{}{"name": "Bea"}},
			want:  "Hello, Bea",
		},
		{
			name:  "empty expression is nil",
			expr:  "",
			scope: Scope{},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(tt.expr, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	e := NewJSEvaluator()

	t.Run("syntax error returns error not panic", func(t *testing.T) {
		_, err := e.Evaluate("count >", Scope{"count": 1})
		assert.Error(t, err)
	})

	t.Run("reference to missing variable", func(t *testing.T) {
		_, err := e.Evaluate("missing.deeply.nested", Scope{})
		assert.Error(t, err)
	})

	t.Run("thrown exception is an error", func(t *testing.T) {
		_, err := e.Evaluate(`(function(){ throw new Error("boom") })()`, Scope{})
		assert.Error(t, err)
	})

	t.Run("undefined result is nil without error", func(t *testing.T) {
		got, err := e.Evaluate("undefined", Scope{})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestScopeIsolation(t *testing.T) {
	e := NewJSEvaluator()

	_, err := e.Evaluate("secret", Scope{"secret": "s3cr3t"})
	require.NoError(t, err)

	// The key must not leak into a later evaluation's scope.
	got, err := e.Evaluate("typeof secret", Scope{})
	require.NoError(t, err)
	assert.Equal(t, "undefined", got)
}

func TestArraysExport(t *testing.T) {
	e := NewJSEvaluator()

	got, err := e.Evaluate("items.filter(function(i){ return i.done })", Scope{
		"items": []interface{}{
			map[string]interface{}{"label": "a", "done": true},
			map[string]interface{}{"label": "b", "done": false},
		},
	})
	require.NoError(t, err)
	arr, ok := got.([]interface{})
	require.True(t, ok)
	require.Len(t, arr, 1)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		val  interface{}
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"zero int", 0, false},
		{"nonzero int", 3, true},
		{"zero int64", int64(0), false},
		{"zero float", 0.0, false},
		{"empty string", "", false},
		{"string", "x", true},
		{"empty slice still truthy", []interface{}{}, true},
		{"map truthy", map[string]interface{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.val))
		})
	}
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "Ann", Stringify("Ann"))
	assert.Equal(t, "42", Stringify(int64(42)))
	assert.Equal(t, "42", Stringify(42.0))
	assert.Equal(t, "4.2", Stringify(4.2))
	assert.Equal(t, "true", Stringify(true))
}
