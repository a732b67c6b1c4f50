package server

import "github.com/eternalApril/moonkv/internal/resp"

func sadd(ctx *cmdContext) resp.Value {
	added, err := ctx.db.SetAdd(ctx.args[0], ctx.args[1])
	if err != nil {
		return storageError(err)
	}
	return resp.MakeBool(added)
}

// smembers returns the members in byte order
func smembers(ctx *cmdContext) resp.Value {
	return resp.MakeBulkArray(ctx.db.SetMembers(ctx.args[0]))
}

func sismember(ctx *cmdContext) resp.Value {
	return resp.MakeBool(ctx.db.SetIsMember(ctx.args[0], ctx.args[1]))
}
