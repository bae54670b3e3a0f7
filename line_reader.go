package wikf

import (
	"bufio"
	"bytes"
	"io"
)

// lineReader is a line source with unlimited pushback.
// Pushed-back lines are returned LIFO before more input is read.
type lineReader struct {
	r       *bufio.Reader
	pending []string
	eof     bool
	readErr error
	raw     []byte
	clean   []byte
}

func (lr *lineReader) reset(r *bufio.Reader) {
	lr.r = r
	lr.pending = lr.pending[:0]
	lr.eof = r == nil
	lr.readErr = nil
	lr.raw = lr.raw[:0]
	lr.clean = lr.clean[:0]
}

// hasMore reports whether read would return a line.
func (lr *lineReader) hasMore() bool {
	if len(lr.pending) > 0 {
		return true
	}
	if lr.eof {
		return false
	}
	line, ok := lr.next()
	if !ok {
		return false
	}
	lr.pending = append(lr.pending, line)
	return true
}

// read consumes the next line. Callers check hasMore first.
func (lr *lineReader) read() string {
	if !lr.hasMore() {
		panic("wikf: read past end of input")
	}
	n := len(lr.pending) - 1
	line := lr.pending[n]
	lr.pending = lr.pending[:n]
	return line
}

// peek returns the next line without consuming it.
func (lr *lineReader) peek() string {
	line := lr.read()
	lr.unread(line)
	return line
}

// unread pushes line back so the next read returns it.
func (lr *lineReader) unread(line string) {
	lr.pending = append(lr.pending, line)
}

func (lr *lineReader) err() error {
	return lr.readErr
}

func (lr *lineReader) next() (string, bool) {
	lr.raw = lr.raw[:0]
	for {
		chunk, err := lr.r.ReadSlice('\n')
		lr.raw = append(lr.raw, chunk...)
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			lr.eof = true
			if err != io.EOF {
				lr.readErr = err
			}
			if len(lr.raw) == 0 {
				return "", false
			}
		}
		break
	}
	line := bytes.TrimSuffix(lr.raw, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if cap(lr.clean) < len(line) {
		lr.clean = make([]byte, len(line))
	}
	clean, rest := sanitizeBytes(lr.clean[:len(line)], line)
	out := string(clean)
	if len(rest) > 0 {
		// a truncated multi-byte sequence at the end of the line is dropped
		tracer().Debugf("line reader: dropped %d trailing bytes", len(rest))
	}
	return out, true
}
