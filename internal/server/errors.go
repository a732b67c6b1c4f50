package server

import (
	"bytes"
	"errors"
	"strings"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

// error kinds used as the metrics label
const (
	kindUnknownCommand = "unknown_command"
	kindArity          = "arity"
	kindWrongType      = "wrongtype"
	kindNotInteger     = "not_integer"
	kindInvalidExpire  = "invalid_expire"
	kindSyntax         = "syntax"
	kindProtocol       = "protocol"
	kindOther          = "other"
)

var (
	errUnknownCommand = resp.MakeError("ERR unknown command")
	errWrongType      = resp.MakeError("ERR WRONGTYPE Operation against a key holding the wrong kind of value")
	errNotInteger     = resp.MakeError("ERR value is not an integer or out of range")
	errInvalidExpire  = resp.MakeError("ERR invalid expire time in 'expire' command")
	errSyntax         = resp.MakeError("ERR syntax error")
)

// storageError converts a store failure into its reply
func storageError(err error) resp.Value {
	switch {
	case errors.Is(err, storage.ErrWrongType):
		return errWrongType
	case errors.Is(err, storage.ErrNotInteger):
		return errNotInteger
	default:
		return resp.MakeError("ERR " + err.Error())
	}
}

// protocolError is the reply sent before a connection is dropped for malformed input
func protocolError(err error) resp.Value {
	detail := strings.TrimPrefix(err.Error(), resp.ErrProtocol.Error()+": ")
	return resp.MakeError("ERR Protocol error: " + detail)
}

// errorKind classifies an error reply produced by a handler
func errorKind(v resp.Value) string {
	switch string(v.String) {
	case string(errWrongType.String):
		return kindWrongType
	case string(errNotInteger.String):
		return kindNotInteger
	case string(errInvalidExpire.String):
		return kindInvalidExpire
	case string(errSyntax.String):
		return kindSyntax
	}
	if bytes.HasPrefix(v.String, []byte("ERR wrong number of arguments")) {
		return kindArity
	}
	return kindOther
}
