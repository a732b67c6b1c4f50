package resp

import (
	"bufio"
	"io"
	"strconv"
)

var crlf = []byte{'\r', '\n'}

// Encoder handles the serialization of RESP Value objects into an output stream.
// Write only buffers, Flush pushes the buffered replies to the underlying writer
type Encoder struct {
	writer  *bufio.Writer
	scratch []byte
}

// NewEncoder initializes an Encoder with a buffered writer
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		writer: bufio.NewWriter(w),
	}
}

// NewEncoderSize initializes an Encoder whose buffer holds at least size bytes
func NewEncoderSize(w io.Writer, size int) *Encoder {
	return &Encoder{
		writer: bufio.NewWriterSize(w, size),
	}
}

// Write serializes a RESP Value into the output buffer
func (e *Encoder) Write(v Value) error {
	e.scratch = AppendValue(e.scratch[:0], v)
	_, err := e.writer.Write(e.scratch)
	return err
}

// Flush sends all buffered replies to the underlying writer
func (e *Encoder) Flush() error {
	return e.writer.Flush()
}

// Buffered returns the number of bytes waiting to be flushed
func (e *Encoder) Buffered() int {
	return e.writer.Buffered()
}

// Encode returns the wire form of v
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the wire form of v to dst and returns the extended slice.
// Values with an unknown type byte encode to nothing
func AppendValue(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeInteger:
		dst = appendHeader(dst, TypeInteger, v.Integer)

	case TypeSimpleString, TypeError:
		dst = append(dst, v.Type)
		dst = append(dst, v.String...)
		dst = append(dst, crlf...)

	case TypeBulkString:
		if v.IsNull {
			return append(dst, "$-1\r\n"...)
		}
		dst = appendHeader(dst, TypeBulkString, int64(len(v.String)))
		dst = append(dst, v.String...)
		dst = append(dst, crlf...)

	case TypeArray:
		if v.IsNull {
			return append(dst, "*-1\r\n"...)
		}
		dst = appendHeader(dst, TypeArray, int64(len(v.Array)))
		for _, el := range v.Array {
			dst = AppendValue(dst, el)
		}
	}

	return dst
}

// appendHeader writes the type prefix, numeric value, and CRLF
func appendHeader(dst []byte, prefix byte, n int64) []byte {
	dst = append(dst, prefix)
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, crlf...)
}
