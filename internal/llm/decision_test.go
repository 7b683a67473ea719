package llm

import (
	"strings"
	"testing"
)

func TestParseDecisionToolCall(t *testing.T) {
	raw := `Sure, here is my decision:
{
  "use_tool": true,
  "tool": "add",
  "arguments": {"a": 2, "b": 3},
  "reasoning": "the user asked for a sum"
}`

	d, ok := ParseDecision(raw)
	if !ok {
		t.Fatal("ParseDecision() not ok for valid payload")
	}
	if !d.UseTool {
		t.Error("UseTool = false, want true")
	}
	if d.Tool != "add" {
		t.Errorf("Tool = %q, want add", d.Tool)
	}
	if d.Arguments["a"] != float64(2) || d.Arguments["b"] != float64(3) {
		t.Errorf("Arguments = %v", d.Arguments)
	}
}

func TestParseDecisionNoTool(t *testing.T) {
	d, ok := ParseDecision(`{"use_tool": false, "reasoning": "answering directly"}`)
	if !ok {
		t.Fatal("ParseDecision() not ok for valid payload")
	}
	if d.UseTool {
		t.Error("UseTool = true, want false")
	}
	if d.Reasoning != "answering directly" {
		t.Errorf("Reasoning = %q", d.Reasoning)
	}
}

func TestParseDecisionMalformedFallsBack(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I think I should just answer the question."},
		{"unbalanced braces", `{"use_tool": true, "tool": "add"`},
		{"invalid json", `{use_tool: yes}`},
		{"tool without name", `{"use_tool": true, "arguments": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseDecision(tt.raw)
			if ok {
				t.Errorf("ParseDecision(%q) ok = true, want fallback", tt.raw)
			}
			if d.UseTool {
				t.Error("fallback decision has UseTool = true")
			}
		})
	}
}

func TestParseDecisionNestedObject(t *testing.T) {
	raw := `noise before {"use_tool": true, "tool": "upload_document",
		"arguments": {"document_title": "notes", "metadata": {"lang": "en"}},
		"reasoning": "upload"} noise after`

	d, ok := ParseDecision(raw)
	if !ok {
		t.Fatal("ParseDecision() failed on nested object")
	}
	meta, ok := d.Arguments["metadata"].(map[string]any)
	if !ok || meta["lang"] != "en" {
		t.Errorf("nested arguments lost: %v", d.Arguments)
	}
}

func TestParseDecisionBracesInsideStrings(t *testing.T) {
	raw := `{"use_tool": true, "tool": "search_semantic",
		"arguments": {"query": "what is {json}?"}, "reasoning": "lookup"}`

	d, ok := ParseDecision(raw)
	if !ok {
		t.Fatal("ParseDecision() failed on braces inside a string")
	}
	if d.Arguments["query"] != "what is {json}?" {
		t.Errorf("query = %v", d.Arguments["query"])
	}
}

func TestDecisionPrompt(t *testing.T) {
	prompt := DecisionPrompt("add 2 and 3", []ToolInfo{
		{Name: "add", Description: "adds two numbers"},
		{Name: "divide", Description: "divides two numbers"},
	})

	for _, want := range []string{"- add: adds two numbers", "- divide: divides two numbers", "add 2 and 3", "use_tool"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
