package server

import (
	"math"
	"time"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

// maxExpireSeconds is the largest TTL that still fits in a time.Duration
const maxExpireSeconds = math.MaxInt64 / int64(time.Second)

func del(ctx *cmdContext) resp.Value {
	return resp.MakeBool(ctx.db.Delete(ctx.args[0]))
}

func exists(ctx *cmdContext) resp.Value {
	return resp.MakeBool(ctx.db.Exists(ctx.args[0]))
}

func typeOf(ctx *cmdContext) resp.Value {
	return resp.MakeSimpleString(ctx.db.Type(ctx.args[0]).String())
}

// expire sets a TTL in seconds, a TTL that is not positive deletes the key
func expire(ctx *cmdContext) resp.Value {
	seconds, ok := parseInt(ctx.args[1])
	if !ok {
		return errNotInteger
	}
	if seconds > maxExpireSeconds || seconds < -maxExpireSeconds {
		return errInvalidExpire
	}

	return resp.MakeBool(ctx.db.SetTTL(ctx.args[0], time.Duration(seconds)*time.Second))
}

// ttl returns the remaining time to live in whole seconds, rounded down,
// -2 for a missing key and -1 for a key without expiry
func ttl(ctx *cmdContext) resp.Value {
	remaining, status := ctx.db.TTL(ctx.args[0])
	if status != storage.ExpActive {
		return resp.MakeInteger(int64(status))
	}
	return resp.MakeInteger(remaining.Milliseconds() / 1000)
}

// pttl is ttl in milliseconds
func pttl(ctx *cmdContext) resp.Value {
	remaining, status := ctx.db.TTL(ctx.args[0])
	if status != storage.ExpActive {
		return resp.MakeInteger(int64(status))
	}
	return resp.MakeInteger(remaining.Milliseconds())
}

func persist(ctx *cmdContext) resp.Value {
	return resp.MakeBool(ctx.db.Persist(ctx.args[0]))
}
