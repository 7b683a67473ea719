package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// StripMarkdown reduces markdown content to plain prose. Headings, paragraphs,
// list items and code blocks each become a blank-line-separated paragraph so
// the output chunks on meaning rather than on markup. Any input is accepted;
// plain text passes through as its own paragraphs.
func StripMarkdown(content string) string {
	source := []byte(content)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var paragraphs []string
	appendParagraph := func(p string) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			appendParagraph(nodeText(node, source))
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			appendParagraph(nodeText(node, source))
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			appendParagraph(nodeText(node, source))
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			appendParagraph(blockLines(node.Lines(), source))
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			appendParagraph(blockLines(node.Lines(), source))
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return strings.Join(paragraphs, "\n\n")
}

func blockLines(lines *text.Segments, source []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}

// nodeText collects the raw text of a node and its children.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}
