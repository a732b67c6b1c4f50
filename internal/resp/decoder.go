package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

const (
	// DefaultMaxArrayLen limits the number of elements in one command
	DefaultMaxArrayLen = 1024 * 1024
	// DefaultMaxBulkLen limits the size of a single argument (512MB)
	DefaultMaxBulkLen = 512 * 1024 * 1024

	// maxHeaderLen bounds "*<n>\r\n" and "$<n>\r\n" lines
	maxHeaderLen = 64
)

var (
	ErrProtocol      = errors.New("protocol error")
	ErrLimitExceeded = fmt.Errorf("%w: limit exceeded", ErrProtocol)
)

type decodeState int

const (
	awaitingFrameHeader decodeState = iota
	awaitingElementHeader
	awaitingElementBody
	frameComplete
)

// Decoder turns a stream of byte chunks into command frames.
// A frame may span any number of chunks and a chunk may hold any number of frames,
// bytes that belong to the next frame stay buffered until it completes.
// A Decoder is not safe for concurrent use
type Decoder struct {
	buf []byte
	pos int // first unconsumed byte of buf

	state     decodeState
	frame     Frame
	remaining int // elements of the current frame still to read
	bodyLen   int // length of the element body being awaited

	maxArrayLen int
	maxBulkLen  int
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithMaxArrayLen sets the maximum number of elements per frame
func WithMaxArrayLen(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxArrayLen = n
		}
	}
}

// WithMaxBulkLen sets the maximum size of one element
func WithMaxBulkLen(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxBulkLen = n
		}
	}
}

// NewDecoder creates a Decoder waiting for a frame header
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		maxArrayLen: DefaultMaxArrayLen,
		maxBulkLen:  DefaultMaxBulkLen,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends chunk to the internal buffer and returns every frame it completes, in order.
// It never blocks: an incomplete frame yields no frames and waits for the next call.
// On a malformed stream Feed returns the frames decoded before the bad bytes together with
// an error wrapping ErrProtocol, and discards everything still buffered
func (d *Decoder) Feed(chunk []byte) ([]Frame, error) {
	d.buf = append(d.buf, chunk...)

	var frames []Frame
	for {
		progressed, err := d.step()
		if err != nil {
			d.Reset()
			return frames, err
		}

		if d.state == frameComplete {
			frames = append(frames, d.frame)
			d.frame = nil
			d.state = awaitingFrameHeader
		}

		if !progressed {
			break
		}
	}

	d.compact()
	return frames, nil
}

// Buffered returns the number of received bytes not yet consumed by a complete element
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.pos
}

// InFrame reports whether the decoder holds part of a frame
func (d *Decoder) InFrame() bool {
	return d.state != awaitingFrameHeader || d.Buffered() > 0
}

// Reset drops all buffered input and partial state
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.pos = 0
	d.state = awaitingFrameHeader
	d.frame = nil
	d.remaining = 0
	d.bodyLen = 0
}

// step advances the state machine by at most one header or body.
// It reports false when more input is needed
func (d *Decoder) step() (bool, error) {
	switch d.state {
	case awaitingFrameHeader:
		line, ok, err := d.readLine()
		if !ok || err != nil {
			return false, err
		}

		if line[0] != TypeArray {
			return false, fmt.Errorf("%w: expected '*', got '%c'", ErrProtocol, line[0])
		}

		n, err := parseLength(line[1:])
		if err != nil || n < -1 {
			return false, fmt.Errorf("%w: invalid multibulk length", ErrProtocol)
		}
		if n > d.maxArrayLen {
			return false, fmt.Errorf("%w: multibulk length %d exceeds %d", ErrLimitExceeded, n, d.maxArrayLen)
		}

		// empty and null arrays carry no command
		if n <= 0 {
			return true, nil
		}

		d.frame = make(Frame, 0, min(n, 64))
		d.remaining = n
		d.state = awaitingElementHeader
		return true, nil

	case awaitingElementHeader:
		line, ok, err := d.readLine()
		if !ok || err != nil {
			return false, err
		}

		if line[0] != TypeBulkString {
			return false, fmt.Errorf("%w: expected '$', got '%c'", ErrProtocol, line[0])
		}

		n, err := parseLength(line[1:])
		if err != nil || n < 0 {
			return false, fmt.Errorf("%w: invalid bulk length", ErrProtocol)
		}
		if n > d.maxBulkLen {
			return false, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, n, d.maxBulkLen)
		}

		d.bodyLen = n
		d.state = awaitingElementBody
		return true, nil

	case awaitingElementBody:
		end := d.pos + d.bodyLen
		if len(d.buf) < end+2 {
			return false, nil
		}
		if d.buf[end] != '\r' || d.buf[end+1] != '\n' {
			return false, fmt.Errorf("%w: bulk string not terminated by CRLF", ErrProtocol)
		}

		arg := make([]byte, d.bodyLen)
		copy(arg, d.buf[d.pos:end])
		d.frame = append(d.frame, arg)
		d.pos = end + 2

		d.remaining--
		if d.remaining == 0 {
			d.state = frameComplete
		} else {
			d.state = awaitingElementHeader
		}
		return true, nil
	}

	return false, nil
}

// readLine returns the next CRLF terminated header line without its terminator.
// ok is false when the line is not complete yet
func (d *Decoder) readLine() (line []byte, ok bool, err error) {
	pending := d.buf[d.pos:]

	idx := bytes.IndexByte(pending, '\n')
	if idx < 0 {
		if len(pending) > maxHeaderLen {
			return nil, false, fmt.Errorf("%w: header line too long", ErrProtocol)
		}
		return nil, false, nil
	}

	if idx+1 > maxHeaderLen {
		return nil, false, fmt.Errorf("%w: header line too long", ErrProtocol)
	}
	if idx < 2 || pending[idx-1] != '\r' {
		return nil, false, fmt.Errorf("%w: header not terminated by CRLF", ErrProtocol)
	}

	d.pos += idx + 1
	return pending[:idx-1], true, nil
}

// compact moves unconsumed bytes to the front of the buffer
func (d *Decoder) compact() {
	if d.pos == 0 {
		return
	}

	n := copy(d.buf, d.buf[d.pos:])
	d.buf = d.buf[:n]
	d.pos = 0

	// do not pin a huge buffer after a large argument
	if n == 0 && cap(d.buf) > 1024*1024 {
		d.buf = nil
	}
}

// parseLength parses a decimal length field, rejecting signs other than a leading '-'
func parseLength(b []byte) (int, error) {
	if len(b) == 0 || b[0] == '+' {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, err
	}
	if n > int64(^uint(0)>>1) {
		return 0, strconv.ErrRange
	}
	return int(n), nil
}
