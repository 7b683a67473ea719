package mcpserver

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// reportNow is swapped out in tests for deterministic report timestamps.
var reportNow = time.Now

// ExtractEntitiesInput is the input schema of extract_entities.
type ExtractEntitiesInput struct {
	Content     string   `json:"content" jsonschema:"text to extract entities from"`
	EntityTypes []string `json:"entity_types,omitempty" jsonschema:"entity types to extract: email, url, phone, date, number, hashtag, mention"`
}

// ExtractEntitiesOutput is the structured result of extract_entities.
type ExtractEntitiesOutput struct {
	Entities   map[string][]string `json:"entities"`
	TotalFound int                 `json:"total_found"`
}

// ValidateContentInput is the input schema of validate_content.
type ValidateContentInput struct {
	Content    string   `json:"content" jsonschema:"content to validate and clean"`
	Operations []string `json:"operations,omitempty" jsonschema:"cleanup operations: strip_html, remove_urls, trim_spaces, remove_special_chars, lowercase, uppercase, remove_numbers, remove_punctuation"`
	MaxLength  int      `json:"max_length,omitempty" jsonschema:"maximum allowed length of the cleaned text"`
}

// ValidateContentOutput is the structured result of validate_content.
type ValidateContentOutput struct {
	CleanedContent    string   `json:"cleaned_content"`
	OriginalLength    int      `json:"original_length"`
	CleanedLength     int      `json:"cleaned_length"`
	OperationsApplied []string `json:"operations_applied"`
	Truncated         bool     `json:"truncated"`
}

// FormatStructuredInput is the input schema of format_structured.
type FormatStructuredInput struct {
	Content     string `json:"content" jsonschema:"content to format"`
	Format      string `json:"format" jsonschema:"output format: json, xml, yaml, csv"`
	PrettyPrint *bool  `json:"pretty_print,omitempty" jsonschema:"format with readable indentation (default true)"`
}

// FormatStructuredOutput is the structured result of format_structured.
type FormatStructuredOutput struct {
	Format    string `json:"format"`
	Formatted string `json:"formatted"`
}

// TemplateReportInput is the input schema of generate_template_report.
type TemplateReportInput struct {
	Template string         `json:"template" jsonschema:"report template: summary, detailed, markdown, html"`
	Data     map[string]any `json:"data" jsonschema:"data to fill the template with"`
	Title    string         `json:"title,omitempty" jsonschema:"report title"`
}

// TemplateReportOutput is the structured result of generate_template_report.
type TemplateReportOutput struct {
	Template string `json:"template"`
	Report   string `json:"report"`
}

func (s *Server) registerTextTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_entities",
		Description: "Extract entities such as emails, URLs, phone numbers, dates, numbers, hashtags and mentions from text",
	}, handleExtractEntities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_content",
		Description: "Validate and clean text by stripping HTML, collapsing whitespace and other cleanup operations",
	}, handleValidateContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "format_structured",
		Description: "Format text as JSON, XML, YAML or CSV",
	}, handleFormatStructured)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_template_report",
		Description: "Generate a formatted report from key/value data using a predefined template",
	}, handleTemplateReport)
}

var entityPatterns = map[string]*regexp.Regexp{
	"email":   regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	"url":     regexp.MustCompile(`https?://[^\s]+`),
	"phone":   regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	"date":    regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2}`),
	"number":  regexp.MustCompile(`\b\d+(?:\.\d+)?\b`),
	"hashtag": regexp.MustCompile(`#[a-zA-Z0-9_]+`),
	"mention": regexp.MustCompile(`@[a-zA-Z0-9_]+`),
}

// defaultEntityTypes is what extract_entities looks for when the caller does
// not narrow the search.
var defaultEntityTypes = []string{"email", "url", "phone", "date", "number"}

func handleExtractEntities(_ context.Context, _ *mcp.CallToolRequest, input ExtractEntitiesInput) (*mcp.CallToolResult, ExtractEntitiesOutput, error) {
	if input.Content == "" {
		return toolError("content is required"), ExtractEntitiesOutput{}, nil
	}

	types := input.EntityTypes
	if len(types) == 0 {
		types = defaultEntityTypes
	}

	output := ExtractEntitiesOutput{Entities: make(map[string][]string, len(types))}
	for _, entityType := range types {
		found := extractEntityType(input.Content, entityType)
		output.Entities[entityType] = found
		output.TotalFound += len(found)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Extracted entities\n\nTotal found: %d\n\n", output.TotalFound)
	for _, entityType := range types {
		items := output.Entities[entityType]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d):\n", capitalize(entityType), len(items))
		for _, item := range items {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
		b.WriteString("\n")
	}
	return textResult(strings.TrimRight(b.String(), "\n")), output, nil
}

// extractEntityType returns the unique matches for one entity type in
// first-seen order. Unknown types yield no matches.
func extractEntityType(content, entityType string) []string {
	pattern, ok := entityPatterns[entityType]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var unique []string
	for _, match := range pattern.FindAllString(content, -1) {
		if !seen[match] {
			seen[match] = true
			unique = append(unique, match)
		}
	}
	return unique
}

var (
	htmlTagPattern     = regexp.MustCompile(`(?s)<[^>]*>`)
	urlPattern         = regexp.MustCompile(`https?://[^\s]+`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	specialCharPattern = regexp.MustCompile(`[^a-zA-Z0-9\s\-_.,!?áéíóúñÁÉÍÓÚÑ]`)
	digitsPattern      = regexp.MustCompile(`\d+`)
	punctuationPattern = regexp.MustCompile(`[^\w\s]`)
)

// defaultCleanupOperations is what validate_content applies when the caller
// does not pick operations.
var defaultCleanupOperations = []string{"strip_html", "trim_spaces"}

func handleValidateContent(_ context.Context, _ *mcp.CallToolRequest, input ValidateContentInput) (*mcp.CallToolResult, ValidateContentOutput, error) {
	if input.Content == "" {
		return toolError("content is required"), ValidateContentOutput{}, nil
	}
	if input.MaxLength < 0 {
		return toolError("max_length must be at least 1"), ValidateContentOutput{}, nil
	}

	operations := input.Operations
	if len(operations) == 0 {
		operations = defaultCleanupOperations
	}

	cleaned := input.Content
	for _, operation := range operations {
		cleaned = applyCleanupOperation(cleaned, operation)
	}

	truncated := false
	if input.MaxLength > 0 && utf8.RuneCountInString(cleaned) > input.MaxLength {
		cleaned = string([]rune(cleaned)[:input.MaxLength])
		truncated = true
	}

	output := ValidateContentOutput{
		CleanedContent:    cleaned,
		OriginalLength:    utf8.RuneCountInString(input.Content),
		CleanedLength:     utf8.RuneCountInString(cleaned),
		OperationsApplied: operations,
		Truncated:         truncated,
	}

	truncatedLabel := "No"
	if truncated {
		truncatedLabel = "Yes"
	}
	text := fmt.Sprintf("Content validated and cleaned\n\nOriginal length: %d characters\nCleaned length: %d characters\nOperations applied: %s\nTruncated: %s\n\nCleaned content:\n%s\n%s",
		output.OriginalLength, output.CleanedLength, strings.Join(operations, ", "),
		truncatedLabel, strings.Repeat("-", 50), cleaned)
	return textResult(text), output, nil
}

// applyCleanupOperation applies one named cleanup step. Unknown operations
// leave the content unchanged.
func applyCleanupOperation(content, operation string) string {
	switch operation {
	case "strip_html":
		return htmlTagPattern.ReplaceAllString(content, "")
	case "remove_urls":
		return urlPattern.ReplaceAllString(content, "")
	case "trim_spaces":
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(content, " "))
	case "remove_special_chars":
		return specialCharPattern.ReplaceAllString(content, "")
	case "lowercase":
		return strings.ToLower(content)
	case "uppercase":
		return strings.ToUpper(content)
	case "remove_numbers":
		return digitsPattern.ReplaceAllString(content, "")
	case "remove_punctuation":
		return punctuationPattern.ReplaceAllString(content, "")
	default:
		return content
	}
}

func handleFormatStructured(_ context.Context, _ *mcp.CallToolRequest, input FormatStructuredInput) (*mcp.CallToolResult, FormatStructuredOutput, error) {
	if input.Content == "" {
		return toolError("content is required"), FormatStructuredOutput{}, nil
	}

	pretty := input.PrettyPrint == nil || *input.PrettyPrint

	var formatted string
	switch strings.ToLower(input.Format) {
	case "json":
		formatted = formatAsJSON(input.Content, pretty)
	case "xml":
		formatted = formatAsXML(input.Content, pretty)
	case "yaml":
		formatted = formatAsYAML(input.Content)
	case "csv":
		formatted = formatAsCSV(input.Content)
	default:
		return toolError("format must be one of: json, xml, yaml, csv"), FormatStructuredOutput{}, nil
	}

	output := FormatStructuredOutput{Format: strings.ToLower(input.Format), Formatted: formatted}
	return textResult(formatted), output, nil
}

// formatAsJSON re-encodes valid JSON; anything else is wrapped as a content
// object so the output is always valid JSON.
func formatAsJSON(content string, pretty bool) string {
	var decoded any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		decoded = map[string]any{"content": content}
	}

	var encoded []byte
	if pretty {
		encoded, _ = json.MarshalIndent(decoded, "", "    ")
	} else {
		encoded, _ = json.Marshal(decoded)
	}
	return string(encoded)
}

// formatAsXML passes well-formed XML through and wraps anything else in a
// root/content envelope.
func formatAsXML(content string, pretty bool) string {
	if xmlWellFormed(content) {
		return xml.Header + strings.TrimSpace(content)
	}

	escaped := html.EscapeString(content)
	if pretty {
		return xml.Header + "<root>\n  <content>" + escaped + "</content>\n</root>"
	}
	return xml.Header + "<root><content>" + escaped + "</content></root>"
}

func xmlWellFormed(content string) bool {
	decoder := xml.NewDecoder(strings.NewReader(content))
	sawElement := false
	for {
		token, err := decoder.Token()
		if err != nil {
			return errors.Is(err, io.EOF) && sawElement
		}
		if _, ok := token.(xml.StartElement); ok {
			sawElement = true
		}
	}
}

// formatAsYAML emits the content as a literal block scalar.
func formatAsYAML(content string) string {
	var b strings.Builder
	b.WriteString("content: |\n")
	for _, line := range strings.Split(content, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// formatAsCSV quotes each non-empty line as one field.
func formatAsCSV(content string) string {
	var quoted []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(line, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, "\n")
}

func handleTemplateReport(_ context.Context, _ *mcp.CallToolRequest, input TemplateReportInput) (*mcp.CallToolResult, TemplateReportOutput, error) {
	if len(input.Data) == 0 {
		return toolError("data is required"), TemplateReportOutput{}, nil
	}

	title := input.Title
	if title == "" {
		title = "Generated Report"
	}

	timestamp := reportNow().Format("2006-01-02 15:04:05")

	var report string
	switch input.Template {
	case "summary":
		report = summaryReport(title, timestamp, input.Data)
	case "detailed":
		report = detailedReport(title, timestamp, input.Data)
	case "markdown":
		report = markdownReport(title, timestamp, input.Data)
	case "html":
		report = htmlReport(title, timestamp, input.Data)
	default:
		return toolError("template must be one of: summary, detailed, markdown, html"), TemplateReportOutput{}, nil
	}

	output := TemplateReportOutput{Template: input.Template, Report: report}
	return textResult(report), output, nil
}

func summaryReport(title, timestamp string, data map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n\n", title)
	fmt.Fprintf(&b, "Date: %s\n\n", timestamp)
	for _, key := range sortedKeys(data) {
		fmt.Fprintf(&b, "%s: %s\n", fieldLabel(key), renderValue(data[key]))
	}
	return b.String()
}

func detailedReport(title, timestamp string, data map[string]any) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", rule, title, rule)
	fmt.Fprintf(&b, "Generated: %s\n%s\n\n", timestamp, strings.Repeat("-", 60))

	for _, section := range sortedKeys(data) {
		fmt.Fprintf(&b, "## %s\n%s\n", fieldLabel(section), strings.Repeat("-", 40))
		for _, item := range sectionItems(data[section]) {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func markdownReport(title, timestamp string, data map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Generated: %s_\n\n---\n\n", timestamp)

	for _, section := range sortedKeys(data) {
		fmt.Fprintf(&b, "## %s\n\n", fieldLabel(section))
		switch content := data[section].(type) {
		case []any:
			for _, value := range content {
				fmt.Fprintf(&b, "- %s\n", renderValue(value))
			}
		case map[string]any:
			for _, key := range sortedKeys(content) {
				fmt.Fprintf(&b, "- **%s**: %s\n", key, renderValue(content[key]))
			}
		default:
			fmt.Fprintf(&b, "%s\n", renderValue(content))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func htmlReport(title, timestamp string, data map[string]any) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>body{font-family:Arial,sans-serif;margin:20px;}h1{color:#333;}table{border-collapse:collapse;width:100%;}th,td{border:1px solid #ddd;padding:8px;text-align:left;}th{background-color:#4CAF50;color:white;}</style>\n")
	b.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<p><em>Generated: %s</em></p>\n", timestamp)
	b.WriteString("<table>\n<tr><th>Field</th><th>Value</th></tr>\n")
	for _, key := range sortedKeys(data) {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(fieldLabel(key)), html.EscapeString(renderValue(data[key])))
	}
	b.WriteString("</table>\n</body>\n</html>")
	return b.String()
}

// sectionItems flattens a section value into bullet lines.
func sectionItems(value any) []string {
	switch content := value.(type) {
	case []any:
		items := make([]string, 0, len(content))
		for _, item := range content {
			items = append(items, renderValue(item))
		}
		return items
	case map[string]any:
		items := make([]string, 0, len(content))
		for _, key := range sortedKeys(content) {
			items = append(items, key+": "+renderValue(content[key]))
		}
		return items
	default:
		return []string{renderValue(value)}
	}
}

// renderValue turns a decoded JSON value into display text; composite values
// are re-encoded.
func renderValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any, map[string]any:
		encoded, _ := json.Marshal(v)
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// fieldLabel turns snake_case keys into readable labels.
func fieldLabel(key string) string {
	return capitalize(strings.ReplaceAll(key, "_", " "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
