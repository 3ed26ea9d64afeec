package tokenizer

import (
	"strings"
	"testing"
)

func load(t *testing.T, vocab string) *Tokenizer {
	t.Helper()
	tok, err := Load(strings.NewReader(vocab))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestLoad(t *testing.T) {
	tok := load(t, "<blk> 0\nhello 5\nworld 6\n")

	if p, _ := tok.Piece(5); p != "hello" {
		t.Errorf("Piece(5) = %q, want hello", p)
	}
	if tok.BlankID() != 0 {
		t.Errorf("BlankID = %d, want 0", tok.BlankID())
	}
	if tok.Size() != 7 {
		t.Errorf("Size = %d, want 7", tok.Size())
	}
}

func TestLoadPieceWithSpaces(t *testing.T) {
	// Only the trailing field is the id; the piece keeps its spaces.
	tok := load(t, "a b c 3\n")
	if p, _ := tok.Piece(3); p != "a b c" {
		t.Errorf("Piece(3) = %q, want %q", p, "a b c")
	}
}

func TestLoadBlankLines(t *testing.T) {
	tok := load(t, "x 1\n\n\ny 2\n")
	if _, ok := tok.Piece(1); !ok {
		t.Error("Piece(1) missing")
	}
	if _, ok := tok.Piece(2); !ok {
		t.Error("Piece(2) missing")
	}
}

func TestLoadBadID(t *testing.T) {
	if _, err := Load(strings.NewReader("hello five\n")); err == nil {
		t.Fatal("expected error for non-integer id")
	}
}

func TestSentinelResolution(t *testing.T) {
	tests := []struct {
		name  string
		vocab string
		blank int
		start int
		end   int
	}{
		{
			name:  "explicit",
			vocab: "<BLANK> 42\n<s> 7\n</s> 8\nfoo 1\n",
			blank: 42, start: 7, end: 8,
		},
		{
			name:  "defaults",
			vocab: "foo 3\nbar 4\n",
			blank: 0, start: 1, end: 2,
		},
		{
			name:  "case insensitive",
			vocab: "<Blk> 9\n<SOS> 10\n<EOS> 11\n",
			blank: 9, start: 10, end: 11,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := load(t, tt.vocab)
			if tok.BlankID() != tt.blank {
				t.Errorf("BlankID = %d, want %d", tok.BlankID(), tt.blank)
			}
			if tok.StartID() != tt.start {
				t.Errorf("StartID = %d, want %d", tok.StartID(), tt.start)
			}
			if tok.EndID() != tt.end {
				t.Errorf("EndID = %d, want %d", tok.EndID(), tt.end)
			}
		})
	}
}

func TestBlankAlwaysMapped(t *testing.T) {
	// Vocabulary without an entry for the default blank id 0.
	tok := load(t, "hello 5\n")
	p, ok := tok.Piece(tok.BlankID())
	if !ok {
		t.Fatal("blank id has no mapping")
	}
	if p != "" {
		t.Errorf("blank piece = %q, want empty", p)
	}
}

func TestRender(t *testing.T) {
	tok := load(t, "<blk> 0\n▁hello 5\n▁world 6\nish 7\n")

	opts := RenderOptions{WordBoundary: "▁"}
	if got := tok.Render([]int{5, 6, 7}, opts); got != "hello worldish" {
		t.Errorf("Render = %q, want %q", got, "hello worldish")
	}
	if got := tok.Render(nil, opts); got != "" {
		t.Errorf("Render(nil) = %q, want empty", got)
	}
}

func TestRenderContinuation(t *testing.T) {
	tok := load(t, "hel@@ 1\nlo 2\nthere 3\n")

	opts := RenderOptions{Continuation: "@@"}
	if got := tok.Render([]int{1, 2, 3}, opts); got != "hello there" {
		t.Errorf("Render = %q, want %q", got, "hello there")
	}
}

func TestRenderSkipMeta(t *testing.T) {
	tok := load(t, "<|zh|> 1\n<NEUTRAL> 2\n[noise] 3\n▁ok 4\n")

	opts := RenderOptions{WordBoundary: "▁", SkipMeta: true}
	if got := tok.Render([]int{1, 2, 3, 4}, opts); got != "ok" {
		t.Errorf("Render = %q, want %q", got, "ok")
	}

	// Without the filter the markers come through.
	got := tok.Render([]int{1, 4}, RenderOptions{WordBoundary: "▁"})
	if !strings.Contains(got, "<|zh|>") {
		t.Errorf("Render without SkipMeta = %q, want marker retained", got)
	}
}

func TestRenderWhitespaceNormalized(t *testing.T) {
	tok := load(t, "▁a 1\n▁ 2\n▁b 3\n")
	got := tok.Render([]int{1, 2, 2, 3}, RenderOptions{WordBoundary: "▁"})
	if got != "a b" {
		t.Errorf("Render = %q, want %q", got, "a b")
	}
}
