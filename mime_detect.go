package rewind

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMimeType sniffs the content type of src from its leading bytes and
// returns a Reader already rewound to the start, so the caller can consume
// the full stream without src needing to support seeking. Errors from src
// are returned as-is.
func DetectMimeType(src io.Reader) (*mimetype.MIME, *Reader, error) {
	r := NewReader(src)
	mime, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, nil, err
	}
	if err = r.Rewind(); err != nil {
		return nil, nil, err
	}
	return mime, r, nil
}
