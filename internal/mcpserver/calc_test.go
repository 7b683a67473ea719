package mcpserver

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calcHandler func(context.Context, *mcp.CallToolRequest, CalcInput) (*mcp.CallToolResult, CalcOutput, error)

func TestCalculatorTools(t *testing.T) {
	tests := []struct {
		name     string
		handler  calcHandler
		input    CalcInput
		expected float64
	}{
		{"add", handleAdd, CalcInput{A: 2, B: 3}, 5},
		{"add negative", handleAdd, CalcInput{A: 2, B: -5}, -3},
		{"subtract", handleSubtract, CalcInput{A: 10, B: 4}, 6},
		{"multiply", handleMultiply, CalcInput{A: 6, B: 7}, 42},
		{"multiply by zero", handleMultiply, CalcInput{A: 6, B: 0}, 0},
		{"divide", handleDivide, CalcInput{A: 9, B: 3}, 3},
		{"divide fraction", handleDivide, CalcInput{A: 1, B: 4}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, output, err := tt.handler(context.Background(), nil, tt.input)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.False(t, result.IsError)
			assert.Equal(t, tt.expected, output.Result)
		})
	}
}

func TestDivideByZero(t *testing.T) {
	result, _, err := handleDivide(context.Background(), nil, CalcInput{A: 1, B: 0})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "division by zero")
}
