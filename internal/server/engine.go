package server

import (
	"strings"
	"sync"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
	"go.uber.org/zap"
)

// Engine routes decoded commands to their handlers.
// Every command runs under one lock, so lazy eviction of its key and the handler itself
// are observed by other connections as a single step
type Engine struct {
	commands map[string]command // Registry of available commands (the key is the command name in uppercase)
	mu       sync.Mutex
	db       *storage.Store
	logger   *zap.Logger
	metrics  *Metrics // may be nil
}

// NewEngine creates an engine over db and registers the built-in commands.
// metrics may be nil
func NewEngine(db *storage.Store, logger *zap.Logger, metrics *Metrics) *Engine {
	engine := &Engine{
		commands: make(map[string]command),
		db:       db,
		logger:   logger,
		metrics:  metrics,
	}
	engine.registerBasicCommand()
	return engine
}

// register adds a new command to the engine. The command name is uppercase
func (e *Engine) register(name string, cmd command) {
	e.commands[strings.ToUpper(name)] = cmd
}

// registerBasicCommand fills the registry with standard commands
func (e *Engine) registerBasicCommand() {
	e.register("PING", commandFunc(ping))
	e.register("COMMAND", commandFunc(cmd))

	e.register("SET", commandFunc(set))
	e.register("GET", commandFunc(get))
	e.register("INCR", commandFunc(incr))

	e.register("DEL", commandFunc(del))
	e.register("EXISTS", commandFunc(exists))
	e.register("TYPE", commandFunc(typeOf))
	e.register("EXPIRE", commandFunc(expire))
	e.register("TTL", commandFunc(ttl))
	e.register("PTTL", commandFunc(pttl))
	e.register("PERSIST", commandFunc(persist))

	e.register("LPUSH", commandFunc(lpush))
	e.register("RPUSH", commandFunc(rpush))
	e.register("LPOP", commandFunc(lpop))
	e.register("RPOP", commandFunc(rpop))
	e.register("LRANGE", commandFunc(lrange))

	e.register("SADD", commandFunc(sadd))
	e.register("SMEMBERS", commandFunc(smembers))
	e.register("SISMEMBER", commandFunc(sismember))

	e.register("HSET", commandFunc(hset))
	e.register("HGET", commandFunc(hget))
	e.register("HGETALL", commandFunc(hgetall))
}

// Dispatch executes one decoded frame
func (e *Engine) Dispatch(frame resp.Frame) resp.Value {
	if len(frame) == 0 {
		e.metrics.errorReply(kindUnknownCommand)
		return errUnknownCommand
	}
	return e.Execute(frame.Name(), frame.Args())
}

// Execute finds the command by name and executes it with the passed arguments.
// The key named by the first argument is evicted first if its deadline has passed.
// Failures are returned as RESP errors, never as Go errors
func (e *Engine) Execute(name string, args [][]byte) resp.Value {
	name = strings.ToUpper(name)

	if e.logger.Core().Enabled(zap.DebugLevel) {
		// Log the command name and number of args
		e.logger.Debug("executing command",
			zap.String("cmd", name),
			zap.Int("args_count", len(args)),
		)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(args) > 0 && hasKey(name) && e.db.CheckAndEvict(args[0]) {
		e.metrics.evicted()
		if e.logger.Core().Enabled(zap.DebugLevel) {
			e.logger.Debug("evicted expired key", zap.ByteString("key", args[0]))
		}
	}

	cmd, ok := e.commands[name]
	if !ok {
		e.metrics.errorReply(kindUnknownCommand)
		return errUnknownCommand
	}

	if !checkArity(name, len(args)+1) {
		e.metrics.errorReply(kindArity)
		return resp.MakeErrorWrongNumberOfArguments(strings.ToLower(name))
	}

	res := cmd.execute(&cmdContext{args: args, db: e.db})

	e.metrics.commandExecuted(name)
	if res.Type == resp.TypeError {
		e.metrics.errorReply(errorKind(res))
	}

	return res
}

// Keys returns the number of resident keys
func (e *Engine) Keys() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.Len()
}
