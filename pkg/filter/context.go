package filter

type entry struct {
	text  string
	index int
}

// contextBuffer holds up to before candidate lines preceding a match and
// counts down the trailing lines still owed after one.
// The ring grows on demand up to before slots.
type contextBuffer struct {
	ring    []entry
	head    int
	size    int
	before  int
	after   int
	pending int
}

func newContextBuffer(before, after int) *contextBuffer {
	return &contextBuffer{before: before, after: after}
}

// offer returns true when the line should be emitted now as trailing
// context. Otherwise it is retained, dropping the oldest retained line when
// the window is full.
func (b *contextBuffer) offer(text string, index int) bool {
	if b.pending > 0 {
		b.pending--
		return true
	}
	if b.before == 0 {
		return false
	}
	// head stays 0 until the ring reaches full size.
	if b.size == len(b.ring) && len(b.ring) < b.before {
		b.ring = append(b.ring, entry{text: text, index: index})
		b.size++
		return false
	}
	b.ring[(b.head+b.size)%len(b.ring)] = entry{text: text, index: index}
	if b.size < len(b.ring) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.ring)
	}
	return false
}

// flush returns the retained lines oldest first and empties the window.
func (b *contextBuffer) flush() []entry {
	out := make([]entry, b.size)
	for i := range out {
		out[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	b.head, b.size = 0, 0
	return out
}

// arm resets the trailing-context counter after a match.
func (b *contextBuffer) arm() { b.pending = b.after }

func (b *contextBuffer) owesTrailing() bool { return b.pending > 0 }
