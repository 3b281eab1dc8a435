package ndjson

import (
	"errors"
	"io"
)

const readChunkSize = 4096

// Reader yields frames from an underlying byte stream.
type Reader struct {
	r        io.Reader
	buf      []byte
	frames   [][]byte
	splitter Splitter
	err      error
}

// NewReader returns a Reader that frames r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   r,
		buf: make([]byte, readChunkSize),
	}
}

// ReadLine returns the next frame. It returns io.EOF once the stream has
// closed and every complete frame has been returned. A partial line left at
// end of stream is not a frame and is discarded; Dropped reports its size.
// Any other read error is returned after the frames that preceded it.
func (r *Reader) ReadLine() ([]byte, error) {
	for len(r.frames) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		n, err := r.r.Read(r.buf)
		if n > 0 {
			r.frames = r.splitter.Feed(r.buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.ErrClosedPipe) {
				err = io.EOF
			}
			r.err = err
		}
	}

	frame := r.frames[0]
	r.frames[0] = nil
	r.frames = r.frames[1:]
	return frame, nil
}

// Dropped returns the size of the unterminated tail discarded at end of
// stream, or zero while the stream is still open.
func (r *Reader) Dropped() int {
	if r.err == nil {
		return 0
	}
	return r.splitter.Pending()
}
