package mcpserver

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEntities(t *testing.T) {
	input := ExtractEntitiesInput{
		Content: "Contact bob@example.com or alice@test.org, see https://example.com/docs. " +
			"Call 555-123-4567 before 2024-01-15. Also bob@example.com again.",
	}

	result, output, err := handleExtractEntities(context.Background(), nil, input)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, []string{"bob@example.com", "alice@test.org"}, output.Entities["email"])
	assert.Equal(t, []string{"https://example.com/docs."}, output.Entities["url"])
	assert.Contains(t, output.Entities["phone"], "555-123-4567")
	assert.Contains(t, output.Entities["date"], "2024-01-15")

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Email (2):")
	assert.Contains(t, text.Text, "bob@example.com")
}

func TestExtractEntitiesSelectedTypes(t *testing.T) {
	input := ExtractEntitiesInput{
		Content:     "Ping @dev about #release and #release again",
		EntityTypes: []string{"hashtag", "mention"},
	}

	_, output, err := handleExtractEntities(context.Background(), nil, input)
	require.NoError(t, err)

	assert.Equal(t, []string{"#release"}, output.Entities["hashtag"])
	assert.Equal(t, []string{"@dev"}, output.Entities["mention"])
	assert.NotContains(t, output.Entities, "email")
	assert.Equal(t, 2, output.TotalFound)
}

func TestExtractEntitiesUnknownType(t *testing.T) {
	input := ExtractEntitiesInput{
		Content:     "nothing to see",
		EntityTypes: []string{"ipaddress"},
	}

	_, output, err := handleExtractEntities(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Empty(t, output.Entities["ipaddress"])
	assert.Zero(t, output.TotalFound)
}

func TestExtractEntitiesEmptyContent(t *testing.T) {
	result, _, err := handleExtractEntities(context.Background(), nil, ExtractEntitiesInput{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		input   ValidateContentInput
		cleaned string
	}{
		{
			name:    "default operations strip html and collapse spaces",
			input:   ValidateContentInput{Content: "<p>Hello   <b>world</b></p>\n\n  again"},
			cleaned: "Hello world again",
		},
		{
			name: "remove urls",
			input: ValidateContentInput{
				Content:    "see https://example.com now",
				Operations: []string{"remove_urls", "trim_spaces"},
			},
			cleaned: "see now",
		},
		{
			name: "lowercase",
			input: ValidateContentInput{
				Content:    "MiXeD Case",
				Operations: []string{"lowercase"},
			},
			cleaned: "mixed case",
		},
		{
			name: "remove numbers and punctuation",
			input: ValidateContentInput{
				Content:    "order #42, total 19.99!",
				Operations: []string{"remove_numbers", "remove_punctuation", "trim_spaces"},
			},
			cleaned: "order total",
		},
		{
			name: "unknown operation is a no-op",
			input: ValidateContentInput{
				Content:    "unchanged",
				Operations: []string{"sparkle"},
			},
			cleaned: "unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, output, err := handleValidateContent(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.False(t, result.IsError)
			assert.Equal(t, tt.cleaned, output.CleanedContent)
			assert.False(t, output.Truncated)
		})
	}
}

func TestValidateContentTruncates(t *testing.T) {
	input := ValidateContentInput{
		Content:    "abcdefghij",
		Operations: []string{"trim_spaces"},
		MaxLength:  4,
	}

	result, output, err := handleValidateContent(context.Background(), nil, input)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "abcd", output.CleanedContent)
	assert.True(t, output.Truncated)
	assert.Equal(t, 10, output.OriginalLength)
	assert.Equal(t, 4, output.CleanedLength)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Truncated: Yes")
}

func TestValidateContentEmpty(t *testing.T) {
	result, _, err := handleValidateContent(context.Background(), nil, ValidateContentInput{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFormatStructured(t *testing.T) {
	tests := []struct {
		name     string
		input    FormatStructuredInput
		expected string
	}{
		{
			name:     "valid json compact",
			input:    FormatStructuredInput{Content: `{"b":1,"a":2}`, Format: "json", PrettyPrint: boolPtr(false)},
			expected: `{"a":2,"b":1}`,
		},
		{
			name:     "plain text wrapped as json",
			input:    FormatStructuredInput{Content: "plain text", Format: "json", PrettyPrint: boolPtr(false)},
			expected: `{"content":"plain text"}`,
		},
		{
			name:     "yaml literal block",
			input:    FormatStructuredInput{Content: "line one\nline two", Format: "yaml"},
			expected: "content: |\n  line one\n  line two\n",
		},
		{
			name:     "csv quotes lines",
			input:    FormatStructuredInput{Content: "a \"quoted\" line\n\nsecond", Format: "csv"},
			expected: "\"a \"\"quoted\"\" line\"\n\"second\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, output, err := handleFormatStructured(context.Background(), nil, tt.input)
			require.NoError(t, err)
			assert.False(t, result.IsError)
			assert.Equal(t, tt.expected, output.Formatted)
		})
	}
}

func TestFormatStructuredJSONPretty(t *testing.T) {
	input := FormatStructuredInput{Content: `{"a":1}`, Format: "json"}

	_, output, err := handleFormatStructured(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1\n}", output.Formatted)
}

func TestFormatStructuredXML(t *testing.T) {
	t.Run("well-formed passes through", func(t *testing.T) {
		input := FormatStructuredInput{Content: "<note><to>Ana</to></note>", Format: "xml"}
		_, output, err := handleFormatStructured(context.Background(), nil, input)
		require.NoError(t, err)
		assert.Contains(t, output.Formatted, "<note><to>Ana</to></note>")
	})

	t.Run("invalid wrapped in root", func(t *testing.T) {
		input := FormatStructuredInput{Content: "not <xml", Format: "xml"}
		_, output, err := handleFormatStructured(context.Background(), nil, input)
		require.NoError(t, err)
		assert.Contains(t, output.Formatted, "<root>")
		assert.Contains(t, output.Formatted, "not &lt;xml")
	})
}

func TestFormatStructuredUnknownFormat(t *testing.T) {
	input := FormatStructuredInput{Content: "x", Format: "toml"}

	result, _, err := handleFormatStructured(context.Background(), nil, input)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "json, xml, yaml, csv")
}

func TestTemplateReport(t *testing.T) {
	restore := reportNow
	reportNow = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	defer func() { reportNow = restore }()

	data := map[string]any{
		"total_documents": float64(12),
		"status":          "healthy",
	}

	t.Run("summary", func(t *testing.T) {
		_, output, err := handleTemplateReport(context.Background(), nil, TemplateReportInput{
			Template: "summary",
			Data:     data,
			Title:    "Index Status",
		})
		require.NoError(t, err)
		assert.Contains(t, output.Report, "=== Index Status ===")
		assert.Contains(t, output.Report, "Date: 2026-08-30 12:00:00")
		assert.Contains(t, output.Report, "Total documents: 12")
		assert.Contains(t, output.Report, "Status: healthy")
	})

	t.Run("markdown", func(t *testing.T) {
		_, output, err := handleTemplateReport(context.Background(), nil, TemplateReportInput{
			Template: "markdown",
			Data: map[string]any{
				"checks": map[string]any{"database": "ok"},
				"notes":  []any{"first", "second"},
			},
		})
		require.NoError(t, err)
		assert.Contains(t, output.Report, "# Generated Report")
		assert.Contains(t, output.Report, "## Checks")
		assert.Contains(t, output.Report, "- **database**: ok")
		assert.Contains(t, output.Report, "- first")
	})

	t.Run("detailed", func(t *testing.T) {
		_, output, err := handleTemplateReport(context.Background(), nil, TemplateReportInput{
			Template: "detailed",
			Data:     map[string]any{"summary": "all good"},
			Title:    "Daily Report",
		})
		require.NoError(t, err)
		assert.Contains(t, output.Report, "Daily Report")
		assert.Contains(t, output.Report, "## Summary")
		assert.Contains(t, output.Report, "  - all good")
	})

	t.Run("html", func(t *testing.T) {
		_, output, err := handleTemplateReport(context.Background(), nil, TemplateReportInput{
			Template: "html",
			Data:     map[string]any{"status": "<ok>"},
		})
		require.NoError(t, err)
		assert.Contains(t, output.Report, "<h1>Generated Report</h1>")
		assert.Contains(t, output.Report, "<td>&lt;ok&gt;</td>")
	})
}

func TestTemplateReportValidation(t *testing.T) {
	t.Run("missing data", func(t *testing.T) {
		result, _, err := handleTemplateReport(context.Background(), nil, TemplateReportInput{Template: "summary"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("unknown template", func(t *testing.T) {
		result, _, err := handleTemplateReport(context.Background(), nil, TemplateReportInput{
			Template: "pdf",
			Data:     map[string]any{"a": "b"},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func boolPtr(b bool) *bool { return &b }
