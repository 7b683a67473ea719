package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CalcInput is the shared input schema of the arithmetic tools.
type CalcInput struct {
	A float64 `json:"a" jsonschema:"first operand"`
	B float64 `json:"b" jsonschema:"second operand"`
}

// CalcOutput is the shared output schema of the arithmetic tools.
type CalcOutput struct {
	Result float64 `json:"result"`
}

func (s *Server) registerCalculator() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add",
		Description: "Add two numbers",
	}, handleAdd)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "subtract",
		Description: "Subtract the second number from the first",
	}, handleSubtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "multiply",
		Description: "Multiply two numbers",
	}, handleMultiply)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "divide",
		Description: "Divide the first number by the second",
	}, handleDivide)
}

func handleAdd(_ context.Context, _ *mcp.CallToolRequest, input CalcInput) (*mcp.CallToolResult, CalcOutput, error) {
	return calcResult(input.A + input.B)
}

func handleSubtract(_ context.Context, _ *mcp.CallToolRequest, input CalcInput) (*mcp.CallToolResult, CalcOutput, error) {
	return calcResult(input.A - input.B)
}

func handleMultiply(_ context.Context, _ *mcp.CallToolRequest, input CalcInput) (*mcp.CallToolResult, CalcOutput, error) {
	return calcResult(input.A * input.B)
}

func handleDivide(_ context.Context, _ *mcp.CallToolRequest, input CalcInput) (*mcp.CallToolResult, CalcOutput, error) {
	if input.B == 0 {
		return toolError("division by zero"), CalcOutput{}, nil
	}
	return calcResult(input.A / input.B)
}

func calcResult(value float64) (*mcp.CallToolResult, CalcOutput, error) {
	return textResult(fmt.Sprintf("%g", value)), CalcOutput{Result: value}, nil
}
