package stream

import (
	"errors"
	"io"
)

const defaultChunkSize = 4096

// Reader pulls frames from a response body one at a time.
//
// After the Done frame has been returned, Next reports io.EOF without touching
// the underlying reader again, so a relay that keeps the connection open after
// [DONE] never blocks the caller.
type Reader struct {
	src     io.Reader
	dec     *Decoder
	buf     []byte
	pending []Frame
	err     error
}

// NewReader wraps src with a fresh Decoder.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src: src,
		dec: NewDecoder(),
		buf: make([]byte, defaultChunkSize),
	}
}

// Next returns the next frame in arrival order. It returns io.EOF once the
// stream has ended, either through [DONE] or through the end of the body. Any
// other read error is returned as is.
func (r *Reader) Next() (Frame, error) {
	for {
		if len(r.pending) > 0 {
			f := r.pending[0]
			r.pending = r.pending[1:]
			return f, nil
		}

		if r.err != nil {
			return Frame{}, r.err
		}

		if r.dec.Done() {
			r.err = io.EOF
			continue
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.pending = r.dec.Feed(r.buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.pending = append(r.pending, r.dec.Flush()...)
				r.err = io.EOF
			} else {
				r.err = err
			}
		}
	}
}

// Done reports whether the terminal [DONE] frame has been decoded.
func (r *Reader) Done() bool {
	return r.dec.Done()
}
