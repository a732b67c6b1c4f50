package server

import (
	"strings"

	"github.com/eternalApril/moonkv/internal/resp"
)

// ping replies PONG, or echoes its single argument
func ping(ctx *cmdContext) resp.Value {
	switch len(ctx.args) {
	case 0:
		return resp.MakeSimpleString("PONG")
	case 1:
		return resp.MakeBulkBytes(ctx.args[0])
	default:
		return resp.MakeErrorWrongNumberOfArguments("ping")
	}
}

// cmd implements COMMAND, COMMAND COUNT and COMMAND DOCS [name ...]
func cmd(ctx *cmdContext) resp.Value {
	if len(ctx.args) == 0 {
		return getAllCommands()
	}

	switch strings.ToUpper(string(ctx.args[0])) {
	case "COUNT":
		if len(ctx.args) != 1 {
			return resp.MakeErrorWrongNumberOfArguments("command|count")
		}
		return resp.MakeInteger(int64(len(commandRegistry)))
	case "DOCS":
		return getCommandsDocs(ctx.args[1:])
	default:
		return errSyntax
	}
}
