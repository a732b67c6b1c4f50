package resp

import "fmt"

// MakeSimpleString construct SimpleString Value from string
func MakeSimpleString(s string) Value {
	return Value{
		Type:   TypeSimpleString,
		String: []byte(s),
	}
}

// MakeOK is the "+OK" status reply
func MakeOK() Value {
	return MakeSimpleString("OK")
}

// MakeError construct Error Value from string. The message is sent as is,
// callers are expected to include the "ERR" prefix
func MakeError(s string) Value {
	return Value{
		Type:   TypeError,
		String: []byte(s),
	}
}

// MakeErrorWrongNumberOfArguments construct Error Value that command had wrong number of arguments for command
func MakeErrorWrongNumberOfArguments(cmd string) Value {
	return MakeError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmd))
}

// MakeBulkString construct BulkString Value from string
func MakeBulkString(s string) Value {
	return Value{
		Type:   TypeBulkString,
		String: []byte(s),
	}
}

// MakeBulkBytes construct BulkString Value from a byte slice without copying it
func MakeBulkBytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{
		Type:   TypeBulkString,
		String: b,
	}
}

// MakeNilBulkString construct nil BulkSting Value
func MakeNilBulkString() Value {
	return Value{
		Type:   TypeBulkString,
		IsNull: true,
	}
}

// MakeInteger construct Integer Value from int64
func MakeInteger(n int64) Value {
	return Value{
		Type:    TypeInteger,
		Integer: n,
	}
}

// MakeBool construct Integer Value 1 or 0
func MakeBool(b bool) Value {
	if b {
		return MakeInteger(1)
	}
	return MakeInteger(0)
}

// MakeArray creates a standard RESP array containing the provided elements
func MakeArray(values []Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Value{
		Type:  TypeArray,
		Array: values,
	}
}

// MakeBulkArray creates an array of bulk strings
func MakeBulkArray(items [][]byte) Value {
	vals := make([]Value, len(items))
	for i, it := range items {
		vals[i] = MakeBulkBytes(it)
	}
	return MakeArray(vals)
}
