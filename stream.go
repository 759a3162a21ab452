package rewind

import (
	"io"
	"math"
)

// Discarder is the skip capability: it throws away the next n bytes of the
// stream and reports how many were actually skipped. Implementations may skip
// fewer bytes than requested; callers wanting an exact skip loop until the
// total is reached or an error is returned.
type Discarder interface {
	Discard(n int64) (int64, error)
}

// Stream is the full capability set Reader expects from a source: bulk reads,
// single-byte reads, skipping, a best-effort count of bytes readable without
// blocking, and closing. Use AsStream to upgrade a plain io.Reader.
type Stream interface {
	io.Reader
	io.ByteReader
	io.Closer
	Discarder

	// Buffered returns an estimate of the number of bytes that can be read
	// without blocking. Zero is always a valid answer.
	Buffered() int
}

type byteDiscarder interface {
	Discard(n int) (int, error)
}

type lengther interface {
	Len() int
}

type bufferedCounter interface {
	Buffered() int
}

// AsStream upgrades r to a Stream. Capabilities r already has (io.ByteReader,
// io.Closer, either Discard shape, Buffered or Len) are used directly; the
// rest are filled in with generic fallbacks. A value that is already a Stream
// is returned unchanged.
func AsStream(r io.Reader) Stream {
	if s, ok := r.(Stream); ok {
		return s
	}
	return &sourceStream{r: r}
}

type sourceStream struct {
	r io.Reader
}

var _ Stream = (*sourceStream)(nil)

func (s *sourceStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *sourceStream) ReadByte() (byte, error) {
	if br, ok := s.r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *sourceStream) Discard(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if d, ok := s.r.(Discarder); ok {
		return d.Discard(n)
	}
	if d, ok := s.r.(byteDiscarder); ok && n <= math.MaxInt {
		skipped, err := d.Discard(int(n))
		return int64(skipped), err
	}
	return io.CopyN(io.Discard, s.r, n)
}

func (s *sourceStream) Buffered() int {
	if b, ok := s.r.(bufferedCounter); ok {
		return b.Buffered()
	}
	if l, ok := s.r.(lengther); ok {
		return l.Len()
	}
	return 0
}

func (s *sourceStream) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
