package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/muesli/cancelreader"
)

// DefaultMaxLineBytes bounds a single operator line, terminator included.
const DefaultMaxLineBytes = 1 << 20

// ErrLineTooLong is returned for a line over the reader's limit. The line is
// consumed, so the next ReadLine starts on the following line.
var ErrLineTooLong = errors.New("line too long")

// LineReader reads operator lines and can be interrupted while blocked.
type LineReader struct {
	r       cancelreader.CancelReader
	br      *bufio.Reader
	maxLine int
}

// NewLineReader wraps r with DefaultMaxLineBytes.
func NewLineReader(r io.Reader) (*LineReader, error) {
	return NewLineReaderSize(r, DefaultMaxLineBytes)
}

// NewLineReaderSize wraps r, rejecting lines longer than maxLine bytes.
// Reads from terminals and pipes are interruptible. Regular files, /dev/null
// and plain readers cannot be polled; they are only checked for cancellation
// between reads.
func NewLineReaderSize(r io.Reader, maxLine int) (*LineReader, error) {
	if maxLine <= 0 {
		return nil, fmt.Errorf("max line length must be positive, got %d", maxLine)
	}
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		// Hiding the file type selects cancelreader's polling-free reader.
		cr, err = cancelreader.NewReader(struct{ io.Reader }{r})
		if err != nil {
			return nil, err
		}
	}
	return &LineReader{r: cr, br: bufio.NewReader(cr), maxLine: maxLine}, nil
}

// ReadLine blocks until a full line is available, ctx is cancelled, or the
// input ends. It returns ctx.Err() on cancellation, io.EOF at end of input
// and ErrLineTooLong for an oversize line. A final line without a newline is
// returned as a normal line.
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stop := context.AfterFunc(ctx, func() { l.r.Cancel() })
	defer stop()

	var line []byte
	tooLong := false
	for {
		chunk, err := l.br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > l.maxLine {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == nil, errors.Is(err, io.EOF) && (tooLong || len(line) > 0):
			if tooLong {
				return "", fmt.Errorf("%w: over %d bytes", ErrLineTooLong, l.maxLine)
			}
			return trimEOL(line), nil
		case errors.Is(err, io.EOF):
			return "", io.EOF
		case ctx.Err() != nil:
			return "", ctx.Err()
		case errors.Is(err, cancelreader.ErrCanceled):
			return "", context.Canceled
		default:
			return "", err
		}
	}
}

func trimEOL(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return string(b)
}

// Close releases the underlying cancel reader.
func (l *LineReader) Close() error {
	return l.r.Close()
}
