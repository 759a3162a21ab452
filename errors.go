package rewind

import (
	"github.com/pkg/errors"
)

var ErrAlreadyRewound = errors.New("stream has already been rewound")
var ErrNotSeekable = errors.New("stream is not seekable")
