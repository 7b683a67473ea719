package chunker

import (
	"strings"
	"testing"
)

func TestChunkEmptyInput(t *testing.T) {
	c := New(0, 0)

	for _, input := range []string{"", "   ", "\n\n\n", "\r\n\r\n"} {
		if got := c.Chunk(input); len(got) != 0 {
			t.Errorf("Chunk(%q) = %d chunks, want 0", input, len(got))
		}
	}
}

func TestChunkSingleParagraphUnderBudget(t *testing.T) {
	c := New(DefaultMaxTokens, DefaultOverlapTokens)

	content := "First paragraph here.\n\nSecond one.\n\nThird one."
	chunks := c.Chunk(content)

	if len(chunks) != 1 {
		t.Fatalf("Chunk() = %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0], "First paragraph here.") ||
		!strings.Contains(chunks[0], "Third one.") {
		t.Errorf("chunk missing paragraphs: %q", chunks[0])
	}
}

func TestChunkNormalizesLineEndings(t *testing.T) {
	c := New(DefaultMaxTokens, DefaultOverlapTokens)

	unix := c.Chunk("alpha beta.\n\ngamma delta.")
	windows := c.Chunk("alpha beta.\r\n\r\ngamma delta.")

	if len(unix) != len(windows) {
		t.Fatalf("chunk counts differ: %d vs %d", len(unix), len(windows))
	}
	for i := range unix {
		if unix[i] != windows[i] {
			t.Errorf("chunk %d differs: %q vs %q", i, unix[i], windows[i])
		}
	}
}

func TestChunkCoverage(t *testing.T) {
	c := New(50, 10)

	paragraphs := []string{
		"The quick brown fox jumps over the lazy dog near the river bank today.",
		"A second paragraph with different words to keep the splitter honest.",
		"Third paragraph continues the story with even more filler text inside.",
		"Fourth paragraph closes out the little document with a final thought.",
	}
	content := strings.Join(paragraphs, "\n\n")

	chunks := c.Chunk(content)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Every paragraph must appear, in order, across the chunk sequence.
	joined := strings.Join(chunks, "\n\n")
	pos := 0
	for _, p := range paragraphs {
		idx := strings.Index(joined[pos:], p)
		if idx < 0 {
			t.Fatalf("paragraph %q not found in order in chunks", p)
		}
		pos += idx
	}

	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestChunkTokenBound(t *testing.T) {
	c := New(50, 10)

	var sentences []string
	for i := 0; i < 40; i++ {
		sentences = append(sentences, "This sentence pads out one long paragraph nicely.")
	}
	// One giant paragraph forces sentence-level accumulation.
	content := strings.Join(sentences, " ")

	for i, chunk := range c.Chunk(content) {
		if got := EstimateTokens(chunk); got > 50+EstimateTokens(sentences[0]) {
			t.Errorf("chunk %d estimated at %d tokens, way over budget", i, got)
		}
	}
}

func TestChunkOversizedSentenceBecomesOwnChunk(t *testing.T) {
	c := New(20, 5)

	huge := strings.Repeat("word ", 60) + "end."
	chunks := c.Chunk(huge)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	// A sentence that alone exceeds the budget is emitted as a chunk
	// rather than dropped or split mid-word.
	for _, chunk := range chunks {
		if strings.Contains(chunk, "wordword") {
			t.Errorf("chunk split mid-word: %q", chunk)
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	c := New(30, 15)

	var paragraphs []string
	for i := 0; i < 8; i++ {
		paragraphs = append(paragraphs, "Sentence one goes here. Sentence two follows it.")
	}
	chunks := c.Chunk(strings.Join(paragraphs, "\n\n"))

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prevSentences := SplitSentences(chunks[i-1])
		if len(prevSentences) == 0 {
			continue
		}
		// Each non-first chunk starts with a suffix of the previous
		// chunk's sentences.
		found := false
		for _, s := range prevSentences {
			if strings.HasPrefix(chunks[i], s) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chunk %d does not start with a sentence from chunk %d:\nprev: %q\ncurr: %q",
				i, i-1, chunks[i-1], chunks[i])
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := New(40, 10)
	content := strings.Repeat("Some repeated sentence for testing. ", 30)

	a := c.Chunk(content)
	b := c.Chunk(content)

	if len(a) != len(b) {
		t.Fatalf("chunk counts differ between runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 800*4), 800},
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "periods",
			text: "One fish. Two fish. Red fish.",
			want: []string{"One fish.", "Two fish.", "Red fish."},
		},
		{
			name: "mixed punctuation",
			text: "Really? Yes! Good.",
			want: []string{"Really?", "Yes!", "Good."},
		},
		{
			name: "trailing fragment kept",
			text: "Done. And then",
			want: []string{"Done.", "And then"},
		},
		{
			name: "no terminator",
			text: "just a fragment",
			want: []string{"just a fragment"},
		},
		{
			name: "newline separator",
			text: "First line.\nSecond line.",
			want: []string{"First line.", "Second line."},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
