package server

import (
	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

// cmdContext carries everything a handler may touch while the engine lock is held
type cmdContext struct {
	args [][]byte // arguments after the command name
	db   *storage.Store
}

type command interface {
	execute(ctx *cmdContext) resp.Value
}

type commandFunc func(ctx *cmdContext) resp.Value

func (c commandFunc) execute(ctx *cmdContext) resp.Value {
	return c(ctx)
}
