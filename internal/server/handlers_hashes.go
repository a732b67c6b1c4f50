package server

import "github.com/eternalApril/moonkv/internal/resp"

// hset always replies 1, whether the field was created or overwritten
func hset(ctx *cmdContext) resp.Value {
	if err := ctx.db.HashSet(ctx.args[0], ctx.args[1], ctx.args[2]); err != nil {
		return storageError(err)
	}
	return resp.MakeInteger(1)
}

func hget(ctx *cmdContext) resp.Value {
	val, ok := ctx.db.HashGet(ctx.args[0], ctx.args[1])
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkBytes(val)
}

// hgetall returns a flat [field, value, ...] array in field insertion order
func hgetall(ctx *cmdContext) resp.Value {
	pairs := ctx.db.HashGetAll(ctx.args[0])

	vals := make([]resp.Value, 0, len(pairs)*2)
	for _, p := range pairs {
		vals = append(vals, resp.MakeBulkBytes(p.Field), resp.MakeBulkBytes(p.Value))
	}
	return resp.MakeArray(vals)
}
