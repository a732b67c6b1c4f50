package server

import (
	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

func lpush(ctx *cmdContext) resp.Value {
	return push(ctx, storage.Front)
}

func rpush(ctx *cmdContext) resp.Value {
	return push(ctx, storage.Back)
}

// push replies with the new length of the list
func push(ctx *cmdContext, side storage.Side) resp.Value {
	n, err := ctx.db.ListPush(ctx.args[0], ctx.args[1], side)
	if err != nil {
		return storageError(err)
	}
	return resp.MakeInteger(int64(n))
}

func lpop(ctx *cmdContext) resp.Value {
	return pop(ctx, storage.Front)
}

func rpop(ctx *cmdContext) resp.Value {
	return pop(ctx, storage.Back)
}

func pop(ctx *cmdContext, side storage.Side) resp.Value {
	val, ok := ctx.db.ListPop(ctx.args[0], side)
	if !ok {
		return resp.MakeNilBulkString()
	}
	return resp.MakeBulkBytes(val)
}

// lrange returns the elements between start and end inclusive, negative indices count from the tail
func lrange(ctx *cmdContext) resp.Value {
	start, ok := parseInt(ctx.args[1])
	if !ok {
		return errNotInteger
	}
	end, ok := parseInt(ctx.args[2])
	if !ok {
		return errNotInteger
	}

	return resp.MakeBulkArray(ctx.db.ListRange(ctx.args[0], start, end))
}
