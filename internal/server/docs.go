package server

import (
	"maps"
	"slices"
	"strings"

	"github.com/eternalApril/moonkv/internal/resp"
)

type commandMetadata struct {
	arity    int      // Arity includes the command name itself
	flags    []string // readonly, write, fast, denyoom, etc
	firstKey int      // 1-based index of the first key
	lastKey  int      // 1-based index of the last key
	step     int      // Step count for finding keys
}

// commandRegistry describes every command the engine accepts
var commandRegistry = map[string]commandMetadata{
	"PING":    {-1, []string{"fast", "stale"}, 0, 0, 0},
	"COMMAND": {-1, []string{"random", "loading", "stale"}, 0, 0, 0},

	"SET":  {3, []string{"write", "denyoom"}, 1, 1, 1},
	"GET":  {2, []string{"readonly", "fast"}, 1, 1, 1},
	"INCR": {3, []string{"write", "denyoom", "fast"}, 1, 1, 1},

	"DEL":     {2, []string{"write"}, 1, 1, 1},
	"EXISTS":  {2, []string{"readonly", "fast"}, 1, 1, 1},
	"TYPE":    {2, []string{"readonly", "fast"}, 1, 1, 1},
	"EXPIRE":  {3, []string{"write", "fast"}, 1, 1, 1},
	"TTL":     {2, []string{"readonly", "fast"}, 1, 1, 1},
	"PTTL":    {2, []string{"readonly", "fast"}, 1, 1, 1},
	"PERSIST": {2, []string{"write", "fast"}, 1, 1, 1},

	"LPUSH":  {3, []string{"write", "denyoom", "fast"}, 1, 1, 1},
	"RPUSH":  {3, []string{"write", "denyoom", "fast"}, 1, 1, 1},
	"LPOP":   {2, []string{"write", "fast"}, 1, 1, 1},
	"RPOP":   {2, []string{"write", "fast"}, 1, 1, 1},
	"LRANGE": {4, []string{"readonly"}, 1, 1, 1},

	"SADD":      {3, []string{"write", "denyoom", "fast"}, 1, 1, 1},
	"SMEMBERS":  {2, []string{"readonly"}, 1, 1, 1},
	"SISMEMBER": {3, []string{"readonly", "fast"}, 1, 1, 1},

	"HSET":    {4, []string{"write", "denyoom", "fast"}, 1, 1, 1},
	"HGET":    {3, []string{"readonly", "fast"}, 1, 1, 1},
	"HGETALL": {2, []string{"readonly"}, 1, 1, 1},
}

// commandDoc stores a description for the command
type commandDoc struct {
	summary    string
	complexity string
	group      string
	since      string
}

// commandDocsRegistry documentation registry
var commandDocsRegistry = map[string]commandDoc{
	"PING":      {"Ping the server.", "O(1)", "connection", "1.0.0"},
	"COMMAND":   {"Get array of command details.", "O(N) where N is the number of commands to look up.", "server", "1.0.0"},
	"SET":       {"Set the string value of a key.", "O(1)", "string", "1.0.0"},
	"GET":       {"Get the value of a key.", "O(1)", "string", "1.0.0"},
	"INCR":      {"Increment the integer value of a key by the given amount.", "O(1)", "string", "1.0.0"},
	"DEL":       {"Delete a key.", "O(1)", "generic", "1.0.0"},
	"EXISTS":    {"Determine if a key exists.", "O(1)", "generic", "1.0.0"},
	"TYPE":      {"Determine the type stored at key.", "O(1)", "generic", "1.0.0"},
	"EXPIRE":    {"Set a key's time to live in seconds.", "O(1)", "generic", "1.0.0"},
	"TTL":       {"Get the time to live for a key in seconds.", "O(1)", "generic", "1.0.0"},
	"PTTL":      {"Get the time to live for a key in milliseconds.", "O(1)", "generic", "1.0.0"},
	"PERSIST":   {"Remove the expiration from a key.", "O(1)", "generic", "1.0.0"},
	"LPUSH":     {"Prepend a value to a list.", "O(N) where N is the length of the list.", "list", "1.0.0"},
	"RPUSH":     {"Append a value to a list.", "O(1)", "list", "1.0.0"},
	"LPOP":      {"Remove and get the first element in a list.", "O(N) where N is the length of the list.", "list", "1.0.0"},
	"RPOP":      {"Remove and get the last element in a list.", "O(1)", "list", "1.0.0"},
	"LRANGE":    {"Get a range of elements from a list.", "O(N) where N is the number of elements returned.", "list", "1.0.0"},
	"SADD":      {"Add a member to a set.", "O(1)", "set", "1.0.0"},
	"SMEMBERS":  {"Get all the members in a set.", "O(N log N) where N is the set cardinality.", "set", "1.0.0"},
	"SISMEMBER": {"Determine if a given value is a member of a set.", "O(1)", "set", "1.0.0"},
	"HSET":      {"Set the string value of a hash field.", "O(1)", "hash", "1.0.0"},
	"HGET":      {"Get the value of a hash field.", "O(1)", "hash", "1.0.0"},
	"HGETALL":   {"Get all the fields and values in a hash.", "O(N) where N is the size of the hash.", "hash", "1.0.0"},
}

// checkArity reports whether argc, the number of elements including the command name,
// satisfies the registered arity. Positive arity is exact, negative is a minimum
func checkArity(name string, argc int) bool {
	meta, ok := commandRegistry[name]
	if !ok {
		return false
	}
	if meta.arity >= 0 {
		return argc == meta.arity
	}
	return argc >= -meta.arity
}

// hasKey reports whether the second element of the command is a key
func hasKey(name string) bool {
	meta, ok := commandRegistry[name]
	return !ok || meta.firstKey == 1
}

func makeFlagsArray(flags []string) resp.Value {
	vals := make([]resp.Value, len(flags))
	for i, f := range flags {
		vals[i] = resp.MakeSimpleString(f)
	}
	return resp.MakeArray(vals)
}

func makeInfoCmdArray(name string) []resp.Value {
	meta := commandRegistry[name]
	return []resp.Value{
		resp.MakeBulkString(strings.ToLower(name)),
		resp.MakeInteger(int64(meta.arity)),
		makeFlagsArray(meta.flags),
		resp.MakeInteger(int64(meta.firstKey)),
		resp.MakeInteger(int64(meta.lastKey)),
		resp.MakeInteger(int64(meta.step)),
	}
}

func getAllCommands() resp.Value {
	names := slices.Sorted(maps.Keys(commandRegistry))

	cmdArray := make([]resp.Value, 0, len(names))
	for _, name := range names {
		cmdArray = append(cmdArray, resp.MakeArray(makeInfoCmdArray(name)))
	}
	return resp.MakeArray(cmdArray)
}

// getCommandsDocs returns documentation for specified commands or all commands
// Format: [Name, [summary, val, since, val...], Name, [...]]
func getCommandsDocs(args [][]byte) resp.Value {
	var targets []string

	if len(args) == 0 {
		targets = slices.Sorted(maps.Keys(commandDocsRegistry))
	} else {
		targets = make([]string, 0, len(args))
		for _, arg := range args {
			targets = append(targets, strings.ToUpper(string(arg)))
		}
	}

	result := make([]resp.Value, 0, len(targets)*2)

	for _, name := range targets {
		doc, ok := commandDocsRegistry[name]
		if !ok {
			// unknown names are skipped
			continue
		}

		result = append(result, resp.MakeBulkString(strings.ToLower(name)))

		props := []resp.Value{
			resp.MakeBulkString("summary"),
			resp.MakeBulkString(doc.summary),
			resp.MakeBulkString("since"),
			resp.MakeBulkString(doc.since),
			resp.MakeBulkString("group"),
			resp.MakeBulkString(doc.group),
			resp.MakeBulkString("complexity"),
			resp.MakeBulkString(doc.complexity),
		}

		result = append(result, resp.MakeArray(props))
	}

	return resp.MakeArray(result)
}
