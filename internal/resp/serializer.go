package resp

// SerializeCommand encodes a command the way clients send it: an array of bulk strings
func SerializeCommand(name string, args ...string) []byte {
	elements := make([]Value, 1+len(args))

	elements[0] = MakeBulkString(name)
	for i, a := range args {
		elements[i+1] = MakeBulkString(a)
	}

	return Encode(MakeArray(elements))
}
