package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolInfo describes a remote tool offered to the model.
type ToolInfo struct {
	Name        string
	Description string
}

// Decision is the model's verdict on whether a tool call is needed. When
// UseTool is false the assistant answers conversationally; Tool and Arguments
// are only meaningful when UseTool is true.
type Decision struct {
	UseTool   bool           `json:"use_tool"`
	Tool      string         `json:"tool,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Reasoning string         `json:"reasoning,omitempty"`
}

// NoTool is the fallback decision used when the model output cannot be
// parsed. The assistant never guesses tool arguments.
func NoTool(reasoning string) Decision {
	return Decision{UseTool: false, Reasoning: reasoning}
}

// DecisionPrompt builds the tool-selection prompt for a user message.
func DecisionPrompt(userMessage string, tools []ToolInfo) string {
	lines := make([]string, 0, len(tools))
	for _, t := range tools {
		lines = append(lines, fmt.Sprintf("- %s: %s", t.Name, t.Description))
	}

	return fmt.Sprintf(`You are an intelligent assistant. You have access to the following tools:

%s

User: %s

Analyze the user's message and decide:
1. Do you need a tool to answer?
2. If YES, which tool and with which arguments?
3. If NO, say you will answer directly.

Respond ONLY with valid JSON in this format:

If a tool is needed:
{
  "use_tool": true,
  "tool": "tool_name",
  "arguments": { ... },
  "reasoning": "brief explanation"
}

If no tool is needed:
{
  "use_tool": false,
  "reasoning": "answering directly"
}

JSON:`, strings.Join(lines, "\n"), userMessage)
}

// ParseDecision extracts a Decision from free-form model output. It scans for
// the first balanced JSON object in the text and unmarshals it; anything
// malformed falls back to NoTool. The second return value reports whether a
// decision was actually parsed.
func ParseDecision(raw string) (Decision, bool) {
	obj, ok := extractJSONObject(raw)
	if !ok {
		return NoTool("could not parse model response"), false
	}

	var d Decision
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return NoTool("could not parse model response"), false
	}

	if d.UseTool && d.Tool == "" {
		// A tool decision without a tool name is no decision at all.
		return NoTool("model requested a tool without naming one"), false
	}

	return d, true
}

// extractJSONObject returns the first balanced top-level {...} block in text,
// ignoring braces inside JSON strings.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
