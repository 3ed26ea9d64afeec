// Package ctc implements CTC-style greedy decoding of per-frame token
// probabilities.
//
// A CTC model emits one symbol per input frame, including a distinguished
// blank symbol. Decoding collapses the frame sequence to the final token
// sequence: runs of identical non-blank ids collapse to one instance, and
// a blank frame resets the collapse so the same id can be emitted again
// immediately after it. This is greedy (per-frame argmax) decoding, not
// beam search.
package ctc

// Collapse applies the CTC collapse automaton to a sequence of per-frame
// ids. The blank id is never emitted; consecutive duplicates are emitted
// once; a blank between two identical ids separates them into two
// emissions. Ids listed in suppress are never emitted but still update the
// duplicate-collapse cursor, so frames repeating a suppressed id stay
// collapsed.
func Collapse(ids []int, blank int, suppress ...int) []int {
	var out []int
	prev := blank
	for _, id := range ids {
		if id == blank {
			prev = blank
			continue
		}
		if id == prev {
			continue
		}
		prev = id
		if contains(suppress, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Decode selects the argmax id for each of frames rows of width vocab in
// the row-major logits slice, then collapses the resulting id sequence.
// len(logits) must be at least frames*vocab.
func Decode(logits []float32, frames, vocab, blank int, suppress ...int) []int {
	ids := make([]int, 0, frames)
	for t := 0; t < frames; t++ {
		row := logits[t*vocab : (t+1)*vocab]
		best := 0
		for i := 1; i < vocab; i++ {
			if row[i] > row[best] {
				best = i
			}
		}
		ids = append(ids, best)
	}
	return Collapse(ids, blank, suppress...)
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
