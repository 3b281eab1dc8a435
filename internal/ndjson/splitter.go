package ndjson

import "bytes"

// Splitter accumulates chunks and splits them into newline-terminated frames.
// The zero value is ready to use. A Splitter is not safe for concurrent use.
type Splitter struct {
	pending []byte
}

// Feed appends chunk to any held remainder and returns every complete,
// non-blank line it now contains, in order. The returned frames do not alias
// chunk, so callers may reuse their read buffer.
func (s *Splitter) Feed(chunk []byte) [][]byte {
	if len(chunk) == 0 {
		return nil
	}
	s.pending = append(s.pending, chunk...)

	var frames [][]byte
	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			break
		}
		if line := trimCR(s.pending[:i]); !isBlank(line) {
			frames = append(frames, bytes.Clone(line))
		}
		s.pending = s.pending[i+1:]
	}

	// Compact so a long-lived stream does not pin every chunk it has seen.
	if len(s.pending) == 0 {
		s.pending = nil
	} else if cap(s.pending) > 2*len(s.pending) {
		s.pending = bytes.Clone(s.pending)
	}
	return frames
}

// Pending returns the number of buffered bytes that do not yet form a
// complete line.
func (s *Splitter) Pending() int {
	return len(s.pending)
}

// Reset discards any held partial line.
func (s *Splitter) Reset() {
	s.pending = nil
}

func isBlank(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
