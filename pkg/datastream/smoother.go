package datastream

import (
	"strings"
	"unicode"
)

// Smoother re-chunks streamed text on word boundaries: a chunk is released once a word
// and the whitespace after it are complete.
type Smoother struct {
	buf strings.Builder
}

// Push adds a delta and returns the complete words it released, in order.
func (s *Smoother) Push(delta string) []string {
	s.buf.WriteString(delta)
	pending := s.buf.String()

	var out []string
	for {
		end := wordEnd(pending)
		if end < 0 {
			break
		}
		out = append(out, pending[:end])
		pending = pending[end:]
	}

	s.buf.Reset()
	s.buf.WriteString(pending)
	return out
}

// Flush returns whatever is still buffered.
func (s *Smoother) Flush() string {
	rest := s.buf.String()
	s.buf.Reset()
	return rest
}

// wordEnd finds the end of the first "non-space run followed by a space run" that is
// terminated by a further non-space rune, or -1 if the text does not contain one yet.
func wordEnd(text string) int {
	seenWord := false
	seenSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		switch {
		case !space && seenSpace && seenWord:
			return i
		case !space:
			seenWord = true
		case space && seenWord:
			seenSpace = true
		}
	}
	return -1
}
