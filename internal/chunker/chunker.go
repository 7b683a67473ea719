// Package chunker splits document text into bounded, overlapping segments
// sized for the embedding model. Splitting is a pure function of its input:
// the same text always produces the same chunks.
package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxTokens bounds the estimated token count of a chunk.
	DefaultMaxTokens = 800
	// DefaultOverlapTokens bounds the sentence tail carried into the next
	// chunk.
	DefaultOverlapTokens = 100
)

var sentenceBoundary = regexp.MustCompile(`(?s)(.*?[.!?])\s+`)

// Chunker splits raw text on paragraph boundaries, falling back to sentence
// boundaries for paragraphs that alone exceed the token budget.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

// New creates a Chunker. Non-positive arguments fall back to the defaults.
func New(maxTokens, overlapTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens <= 0 {
		overlapTokens = DefaultOverlapTokens
	}
	return &Chunker{maxTokens: maxTokens, overlapTokens: overlapTokens}
}

// Chunk splits content into an ordered sequence of non-empty chunks. Each
// non-first chunk starts with the sentence tail of its predecessor so context
// straddles chunk boundaries. Empty input yields no chunks.
func (c *Chunker) Chunk(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var chunks []string
	var current string
	currentTokens := 0

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		paragraphTokens := EstimateTokens(paragraph)

		if paragraphTokens > c.maxTokens {
			// Paragraph alone blows the budget: accumulate at
			// sentence granularity instead.
			for _, sentence := range SplitSentences(paragraph) {
				sentenceTokens := EstimateTokens(sentence)

				if currentTokens+sentenceTokens > c.maxTokens {
					if current != "" {
						flush()
						overlap := c.overlap(current)
						current = joinNonEmpty(overlap, " ", sentence)
						currentTokens = EstimateTokens(current)
					} else {
						current = sentence
						currentTokens = sentenceTokens
					}
				} else {
					current = joinNonEmpty(current, " ", sentence)
					currentTokens += sentenceTokens
				}
			}
			continue
		}

		if currentTokens+paragraphTokens > c.maxTokens {
			if current != "" {
				flush()
				overlap := c.overlap(current)
				current = joinNonEmpty(overlap, "\n\n", paragraph)
				currentTokens = EstimateTokens(current)
			} else {
				current = paragraph
				currentTokens = paragraphTokens
			}
		} else {
			current = joinNonEmpty(current, "\n\n", paragraph)
			currentTokens += paragraphTokens
		}
	}

	flush()
	return chunks
}

// overlap walks the chunk's sentences from the end, accumulating whole
// sentences while they fit the overlap budget, and returns them in original
// order.
func (c *Chunker) overlap(chunk string) string {
	sentences := SplitSentences(chunk)
	overlap := ""
	tokens := 0

	for i := len(sentences) - 1; i >= 0; i-- {
		sentenceTokens := EstimateTokens(sentences[i])
		if tokens+sentenceTokens > c.overlapTokens {
			break
		}
		overlap = joinNonEmpty(sentences[i], " ", overlap)
		tokens += sentenceTokens
	}

	return strings.TrimSpace(overlap)
}

// EstimateTokens approximates the token count of text as ceil(len/4). The
// 4-characters-per-token proxy is deliberate: it is stable and monotonic in
// length, which is all the budget arithmetic needs.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// SplitSentences splits text on `.`, `!` or `?` followed by whitespace. The
// trailing fragment, terminated or not, is kept.
func SplitSentences(text string) []string {
	var sentences []string
	rest := text
	for {
		loc := sentenceBoundary.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		if s := strings.TrimSpace(rest[loc[2]:loc[3]]); s != "" {
			sentences = append(sentences, s)
		}
		rest = rest[loc[1]:]
	}
	if s := strings.TrimSpace(rest); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func joinNonEmpty(a, sep, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + sep + b
	}
}
