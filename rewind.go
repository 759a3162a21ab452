// Package rewind lets a forward-only byte stream be read twice. A Reader
// captures everything handed to the consumer, and a single call to Rewind
// replays the captured bytes from the start before continuing into the
// unread remainder of the source. The source never needs to support seeking,
// which makes this the building block for sniff-then-consume flows such as
// content type detection on an upload body.
//
// A Reader is synchronous and single-goroutine. It takes no locks and
// starts no goroutines; blocking behavior belongs to the source. Callers
// sharing one across goroutines must provide their own synchronization.
package rewind

import (
	"bytes"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

const defaultBufferSize = 4096

// Discarded bytes are captured through a scratch buffer of at most this size,
// so one Discard call may skip less than asked for.
const maxDiscardScratch = 32 * 1024

// Reader decorates a source stream with one-shot rewind support. Until
// Rewind is called it hands out bytes from the source while keeping a copy;
// afterwards it serves the copy from the start, then reads on past it from
// the source without buffering anything further.
type Reader struct {
	src     Stream
	buf     *bytes.Buffer
	frozen  []byte
	pos     int
	rewound bool
	log     *logrus.Entry
}

var _ Stream = (*Reader)(nil)
var _ io.Seeker = (*Reader)(nil)

// NewReader decorates src with rewind support. Sources that satisfy Stream
// (or any subset of its optional capabilities) are used directly; plain
// readers are upgraded through AsStream.
func NewReader(src io.Reader) *Reader {
	return NewTracedReader(src, nil)
}

// NewTracedReader is NewReader with debug-level tracing of reads, discards,
// and the rewind transition written to log. A nil entry disables tracing.
func NewTracedReader(src io.Reader, log *logrus.Entry) *Reader {
	return &Reader{
		src: AsStream(src),
		buf: bytes.NewBuffer(make([]byte, 0, defaultBufferSize)),
		log: log,
	}
}

// Rewind repositions the stream at its first byte. It may be called once:
// every later call fails with ErrAlreadyRewound, leaving the stream where it
// was. The source is not touched.
func (r *Reader) Rewind() error {
	if r.rewound {
		return ErrAlreadyRewound
	}
	r.frozen = r.buf.Bytes()
	r.buf = nil
	r.pos = 0
	r.rewound = true
	if r.log != nil {
		r.log.WithFields(logrus.Fields{
			"captured": humanize.Bytes(uint64(len(r.frozen))),
		}).Debug("Rewound stream")
	}
	return nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !r.rewound {
		n, err := r.src.Read(p)
		if n > 0 {
			r.buf.Write(p[:n])
		}
		if r.log != nil {
			r.log.WithFields(logrus.Fields{
				"read":     n,
				"captured": r.buf.Len(),
			}).Debug("Read from source")
		}
		return n, err
	}

	served := copy(p, r.frozen[r.pos:])
	r.pos += served
	if served == len(p) {
		return served, nil
	}

	// Capture is exhausted: top up with a single source read. These bytes
	// are not captured again.
	n, err := r.src.Read(p[served:])
	if r.log != nil {
		r.log.WithFields(logrus.Fields{
			"replayed": served,
			"read":     n,
		}).Debug("Read past captured bytes")
	}
	return served + n, err
}

func (r *Reader) ReadByte() (byte, error) {
	if !r.rewound {
		b, err := r.src.ReadByte()
		if err != nil {
			return b, err
		}
		r.buf.WriteByte(b)
		return b, nil
	}
	if r.pos < len(r.frozen) {
		b := r.frozen[r.pos]
		r.pos++
		return b, nil
	}
	return r.src.ReadByte()
}

// Discard skips up to n bytes and returns how many were skipped. Before the
// rewind the skipped bytes are still captured, so a replay reproduces them;
// afterwards the captured bytes are consumed first and anything beyond them
// is dropped from the source for good. A single call may skip fewer bytes
// than requested; n <= 0 is a no-op.
func (r *Reader) Discard(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	if !r.rewound {
		size := n
		if size > maxDiscardScratch {
			size = maxDiscardScratch
		}
		scratch := make([]byte, size)
		read, err := r.src.Read(scratch)
		if read > 0 {
			r.buf.Write(scratch[:read])
		}
		if r.log != nil {
			r.log.WithFields(logrus.Fields{
				"discarded": read,
				"captured":  r.buf.Len(),
			}).Debug("Discarded from source")
		}
		return int64(read), err
	}

	if remainder := int64(len(r.frozen) - r.pos); remainder > 0 {
		if n > remainder {
			n = remainder
		}
		r.pos += int(n)
		return n, nil
	}
	return r.src.Discard(n)
}

// Buffered reports the source's estimate of bytes readable without blocking,
// plus any captured bytes still waiting to be replayed.
func (r *Reader) Buffered() int {
	if r.rewound {
		return (len(r.frozen) - r.pos) + r.src.Buffered()
	}
	return r.src.Buffered()
}

// Close closes the source. The captured bytes are unaffected.
func (r *Reader) Close() error {
	return r.src.Close()
}

// Seek always fails with ErrNotSeekable. Rewind is the only supported way of
// moving backwards through the stream.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	return 0, ErrNotSeekable
}
