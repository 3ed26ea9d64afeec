// Package tokenizer loads recognition model vocabularies and renders
// decoded token id sequences as text.
//
// The vocabulary resource is UTF-8 text, one entry per line:
//
//	<piece> <id>
//
// The piece may itself contain spaces; only the trailing field is parsed as
// the integer id. Three distinguished ids — blank, start-of-sequence and
// end-of-sequence — are resolved at load time by scanning piece spellings
// case-insensitively against known sentinel forms, defaulting to 0, 1, 2
// when not found.
//
// A Tokenizer is immutable after Load and safe for concurrent use. It is
// cached per model variant and must be discarded together with the model's
// inference session when the model files change (the pair is only valid as
// a matched set).
package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Default sentinel ids used when the vocabulary does not spell them out.
const (
	defaultBlankID = 0
	defaultStartID = 1
	defaultEndID   = 2
)

// Sentinel spellings, matched case-insensitively against piece names.
var (
	blankForms = []string{"<blk>", "<blank>", "blank", "<pad>"}
	startForms = []string{"<s>", "<sos>", "<bos>", "<sos/eos>"}
	endForms   = []string{"</s>", "<eos>"}
)

// Tokenizer is an immutable id→piece mapping with resolved sentinel ids.
type Tokenizer struct {
	pieces map[int]string
	size   int // highest id + 1

	blank int
	start int
	end   int
}

// Load parses a vocabulary resource.
// Blank lines are skipped; a line whose trailing field is not an integer is
// an error.
func Load(r io.Reader) (*Tokenizer, error) {
	t := &Tokenizer{
		pieces: make(map[int]string),
		blank:  -1,
		start:  -1,
		end:    -1,
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cut := strings.LastIndexByte(line, ' ')
		if cut < 0 {
			return nil, fmt.Errorf("tokenizer: line %d: missing id field", lineNo)
		}
		piece := line[:cut]
		id, err := strconv.Atoi(strings.TrimSpace(line[cut+1:]))
		if err != nil {
			return nil, fmt.Errorf("tokenizer: line %d: bad id: %w", lineNo, err)
		}

		t.pieces[id] = piece
		if id >= t.size {
			t.size = id + 1
		}

		lower := strings.ToLower(piece)
		switch {
		case t.blank < 0 && matchesAny(lower, blankForms):
			t.blank = id
		case t.start < 0 && matchesAny(lower, startForms):
			t.start = id
		case t.end < 0 && matchesAny(lower, endForms):
			t.end = id
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tokenizer: read vocabulary: %w", err)
	}

	if t.blank < 0 {
		t.blank = defaultBlankID
	}
	if t.start < 0 {
		t.start = defaultStartID
	}
	if t.end < 0 {
		t.end = defaultEndID
	}
	// The blank id must always resolve to some piece, even when the
	// vocabulary file omits it.
	if _, ok := t.pieces[t.blank]; !ok {
		t.pieces[t.blank] = ""
		if t.blank >= t.size {
			t.size = t.blank + 1
		}
	}

	return t, nil
}

// LoadFile parses a vocabulary file from disk.
func LoadFile(path string) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: open vocabulary: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func matchesAny(s string, forms []string) bool {
	for _, f := range forms {
		if s == f {
			return true
		}
	}
	return false
}

// Piece returns the text piece for an id.
func (t *Tokenizer) Piece(id int) (string, bool) {
	p, ok := t.pieces[id]
	return p, ok
}

// Size returns the vocabulary size (highest id + 1).
func (t *Tokenizer) Size() int { return t.size }

// BlankID returns the CTC blank id.
func (t *Tokenizer) BlankID() int { return t.blank }

// StartID returns the start-of-sequence id.
func (t *Tokenizer) StartID() int { return t.start }

// EndID returns the end-of-sequence id.
func (t *Tokenizer) EndID() int { return t.end }

// RenderOptions controls how an id sequence is rendered as text.
type RenderOptions struct {
	// WordBoundary is a glyph replaced by a space when joining pieces
	// (the sentencepiece "▁" convention). Empty disables it.
	WordBoundary string

	// Continuation is a trailing marker indicating the piece joins with
	// the next one (the BPE "@@" convention). Empty disables it.
	Continuation string

	// SkipMeta drops pieces that look like bracketed meta-tokens:
	// <...>, [...] or <|...|>. This is a best-effort spelling filter,
	// not a complete one; unknown bracket conventions pass through.
	SkipMeta bool
}

// Render maps ids to pieces, joins them according to the options and
// returns the whitespace-normalized result. Unknown ids are skipped.
// An empty id sequence yields an empty string.
func (t *Tokenizer) Render(ids []int, opts RenderOptions) string {
	var sb strings.Builder
	for _, id := range ids {
		piece, ok := t.pieces[id]
		if !ok {
			continue
		}
		if opts.SkipMeta && isMetaPiece(piece) {
			continue
		}
		if opts.Continuation != "" {
			if rest, joined := strings.CutSuffix(piece, opts.Continuation); joined {
				sb.WriteString(rest)
				continue
			}
			sb.WriteString(piece)
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(piece)
	}

	text := sb.String()
	if opts.WordBoundary != "" {
		text = strings.ReplaceAll(text, opts.WordBoundary, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

// isMetaPiece reports whether a piece spelling looks like a non-lexical
// marker token.
func isMetaPiece(p string) bool {
	if len(p) < 2 {
		return false
	}
	if strings.HasPrefix(p, "<|") && strings.HasSuffix(p, "|>") {
		return true
	}
	if strings.HasPrefix(p, "<") && strings.HasSuffix(p, ">") {
		return true
	}
	if strings.HasPrefix(p, "[") && strings.HasSuffix(p, "]") {
		return true
	}
	return false
}
