package tools

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
}

func echoDefinition() Definition {
	return Definition{
		Name:        "echo",
		Description: "Echo the input back.",
		Parameters: []Parameter{
			{Name: "text", Type: "string", Description: "Text to echo", Required: true},
			{Name: "repeat", Type: "number", Description: "Repeat count", Required: false, Default: float64(1)},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			text, _ := params["text"].(string)
			return text, nil
		},
	}
}

func TestRegister(t *testing.T) {
	t.Run("registers a valid tool", func(t *testing.T) {
		r := NewRegistry(testLogger())
		require.NoError(t, r.Register(echoDefinition()))

		assert.NotNil(t, r.Get("echo"))
		assert.Len(t, r.List(), 1)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		r := NewRegistry(testLogger())
		err := r.Register(Definition{Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return nil, nil
		}})
		assert.Error(t, err)
	})

	t.Run("rejects missing handler", func(t *testing.T) {
		r := NewRegistry(testLogger())
		err := r.Register(Definition{Name: "broken"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "handler")
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		r := NewRegistry(testLogger())
		require.NoError(t, r.Register(echoDefinition()))

		err := r.Register(echoDefinition())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})
}

func TestList(t *testing.T) {
	r := NewRegistry(testLogger())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		def := echoDefinition()
		def.Name = name
		require.NoError(t, r.Register(def))
	}

	names := []string{}
	for _, def := range r.List() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestExecute(t *testing.T) {
	t.Run("executes with valid arguments", func(t *testing.T) {
		r := NewRegistry(testLogger())
		require.NoError(t, r.Register(echoDefinition()))

		result := r.Execute(context.Background(), "echo", map[string]interface{}{"text": "hello"})

		assert.True(t, result.Success)
		assert.Equal(t, "hello", result.Output)
	})

	t.Run("rejects missing required argument", func(t *testing.T) {
		r := NewRegistry(testLogger())
		require.NoError(t, r.Register(echoDefinition()))

		result := r.Execute(context.Background(), "echo", map[string]interface{}{})

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "invalid arguments")
	})

	t.Run("rejects wrong argument type", func(t *testing.T) {
		r := NewRegistry(testLogger())
		require.NoError(t, r.Register(echoDefinition()))

		result := r.Execute(context.Background(), "echo", map[string]interface{}{"text": 42})

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "invalid arguments")
	})

	t.Run("unknown tool", func(t *testing.T) {
		r := NewRegistry(testLogger())

		result := r.Execute(context.Background(), "nope", nil)

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "tool not found")
	})

	t.Run("applies parameter defaults", func(t *testing.T) {
		r := NewRegistry(testLogger())
		def := echoDefinition()
		def.Handler = func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return params["repeat"], nil
		}
		require.NoError(t, r.Register(def))

		result := r.Execute(context.Background(), "echo", map[string]interface{}{"text": "x"})

		assert.True(t, result.Success)
		assert.Equal(t, float64(1), result.Output)
	})

	t.Run("handler errors are reported, not raised", func(t *testing.T) {
		r := NewRegistry(testLogger())
		def := echoDefinition()
		def.Name = "failing"
		def.Handler = func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return nil, fmt.Errorf("boom")
		}
		require.NoError(t, r.Register(def))

		result := r.Execute(context.Background(), "failing", map[string]interface{}{"text": "x"})

		assert.False(t, result.Success)
		assert.Equal(t, "boom", result.Error)
	})
}

func TestInputSchema(t *testing.T) {
	schema := InputSchema(echoDefinition())

	assert.Equal(t, "object", schema["type"])

	properties, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, properties, "text")
	assert.Contains(t, properties, "repeat")

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"text"}, required)
}
