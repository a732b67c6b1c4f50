package server

import (
	"strconv"

	"github.com/eternalApril/moonkv/internal/resp"
)

// set stores a string value, replacing any value and TTL the key had
func set(ctx *cmdContext) resp.Value {
	ctx.db.Set(ctx.args[0], ctx.args[1])
	return resp.MakeOK()
}

func get(ctx *cmdContext) resp.Value {
	val, ok, err := ctx.db.Get(ctx.args[0])
	if err != nil {
		return storageError(err)
	}
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkBytes(val)
}

// incr adds a signed delta to the integer stored at key, an absent key counts as 0
func incr(ctx *cmdContext) resp.Value {
	delta, ok := parseInt(ctx.args[1])
	if !ok {
		return errNotInteger
	}

	n, err := ctx.db.Incr(ctx.args[0], delta)
	if err != nil {
		return storageError(err)
	}
	return resp.MakeInteger(n)
}

// parseInt parses a base-10 int64 argument
func parseInt(b []byte) (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	return n, err == nil
}
