package resp

import "strings"

// RESP type prefixes, stored in Value.Type
const (
	TypeSimpleString byte = '+'
	TypeError        byte = '-'
	TypeInteger      byte = ':'
	TypeBulkString   byte = '$'
	TypeArray        byte = '*'
)

// Value is a single RESP reply
type Value struct {
	String  []byte // SimpleString, Error, BulkString
	Array   []Value
	Integer int64
	Type    byte
	IsNull  bool // For nil BulkString and nil Array
}

// Frame is one decoded command: the command name followed by its arguments
type Frame [][]byte

// Name returns the upper-cased command name, or "" for an empty frame
func (f Frame) Name() string {
	if len(f) == 0 {
		return ""
	}
	return strings.ToUpper(string(f[0]))
}

// Args returns every element after the command name
func (f Frame) Args() [][]byte {
	if len(f) < 2 {
		return nil
	}
	return f[1:]
}
