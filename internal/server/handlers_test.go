package server

import (
	"strings"
	"testing"
	"time"

	"github.com/eternalApril/moonkv/internal/logger"
	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/eternalApril/moonkv/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// setupEngine creates a fresh engine with a clean store for each test
func setupEngine() *Engine {
	e, _ := setupClockedEngine()
	return e
}

// setupClockedEngine creates an engine whose store reads time from the returned clock
func setupClockedEngine() (*Engine, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	db := storage.NewStore(storage.WithClock(clock.Now))
	return NewEngine(db, logger.New("debug", "console"), nil), clock
}

// helper to construct command arguments
func makeCommand(_ string, args ...string) [][]byte {
	vals := make([][]byte, len(args))
	for i, arg := range args {
		vals[i] = []byte(arg)
	}
	return vals
}

func TestPing(t *testing.T) {
	e := setupEngine()

	tests := []struct {
		name     string
		args     []string
		wantType byte
		wantStr  string
	}{
		{"Simple PING", []string{}, resp.TypeSimpleString, "PONG"},
		{"PING with message", []string{"Hello"}, resp.TypeBulkString, "Hello"},
		{"PING too many args", []string{"a", "b"}, resp.TypeError, "ERR wrong number of arguments for 'ping' command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute("PING", makeCommand("PING", tt.args...))
			if res.Type != tt.wantType {
				t.Errorf("got type %v, want %v", res.Type, tt.wantType)
			}

			got := string(res.String)
			if got != tt.wantStr {
				t.Errorf("got %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestBasicSetGetDel(t *testing.T) {
	e := setupEngine()

	// GET missing key
	res := e.Execute("GET", makeCommand("GET", "mykey"))
	if res.IsNull != true {
		t.Errorf("expected null for missing key, got %v", res.Type)
	}

	// SET key
	res = e.Execute("SET", makeCommand("SET", "mykey", "myvalue"))
	if string(res.String) != "OK" {
		t.Errorf("expected OK, got %v", res.String)
	}

	// GET key
	res = e.Execute("GET", makeCommand("GET", "mykey"))
	if string(res.String) != "myvalue" {
		t.Errorf("expected myvalue, got %s", res.String)
	}

	// EXISTS key
	res = e.Execute("EXISTS", makeCommand("EXISTS", "mykey"))
	if res.Integer != 1 {
		t.Errorf("expected key to exist, got %d", res.Integer)
	}

	// DEL key
	res = e.Execute("DEL", makeCommand("DEL", "mykey"))
	if res.Integer != 1 {
		t.Errorf("expected 1 deleted, got %d", res.Integer)
	}

	// DEL key again
	res = e.Execute("DEL", makeCommand("DEL", "mykey"))
	if res.Integer != 0 {
		t.Errorf("expected 0 deleted, got %d", res.Integer)
	}

	// GET key again
	res = e.Execute("GET", makeCommand("GET", "mykey"))
	if res.IsNull != true {
		t.Errorf("expected null after delete, got %v", res.Type)
	}
}

func TestIncr(t *testing.T) {
	e := setupEngine()

	res := e.Execute("INCR", makeCommand("INCR", "counter", "5"))
	if res.Type != resp.TypeInteger || res.Integer != 5 {
		t.Errorf("expected 5 on absent key, got %v %d", res.Type, res.Integer)
	}

	res = e.Execute("INCR", makeCommand("INCR", "counter", "-7"))
	if res.Integer != -2 {
		t.Errorf("expected -2, got %d", res.Integer)
	}

	res = e.Execute("GET", makeCommand("GET", "counter"))
	if string(res.String) != "-2" {
		t.Errorf("expected stored \"-2\", got %q", res.String)
	}

	res = e.Execute("INCR", makeCommand("INCR", "counter", "one"))
	if string(res.String) != "ERR value is not an integer or out of range" {
		t.Errorf("expected not integer error for bad delta, got %q", res.String)
	}
}

// incr on a non-numeric string fails and leaves the value unchanged
func TestIncrNotInteger(t *testing.T) {
	e := setupEngine()

	e.Execute("SET", makeCommand("SET", "k", "abc"))

	res := e.Execute("INCR", makeCommand("INCR", "k", "1"))
	if res.Type != resp.TypeError || string(res.String) != "ERR value is not an integer or out of range" {
		t.Errorf("expected not integer error, got %q", res.String)
	}

	res = e.Execute("GET", makeCommand("GET", "k"))
	if string(res.String) != "abc" {
		t.Errorf("value changed after failed INCR: %q", res.String)
	}
}

func TestType(t *testing.T) {
	e := setupEngine()

	e.Execute("SET", makeCommand("SET", "s", "v"))
	e.Execute("LPUSH", makeCommand("LPUSH", "l", "v"))
	e.Execute("SADD", makeCommand("SADD", "z", "v"))
	e.Execute("HSET", makeCommand("HSET", "h", "f", "v"))

	tests := map[string]string{
		"s":       "string",
		"l":       "list",
		"z":       "set",
		"h":       "hash",
		"missing": "none",
	}

	for key, want := range tests {
		res := e.Execute("TYPE", makeCommand("TYPE", key))
		if res.Type != resp.TypeSimpleString || string(res.String) != want {
			t.Errorf("TYPE %s: got %q, want %q", key, res.String, want)
		}
	}
}

func TestWrongType(t *testing.T) {
	e := setupEngine()
	e.Execute("LPUSH", makeCommand("LPUSH", "list", "a"))
	e.Execute("SET", makeCommand("SET", "str", "a"))

	tests := []struct {
		cmd  string
		args []string
	}{
		{"GET", []string{"list"}},
		{"INCR", []string{"list", "1"}},
		{"LPUSH", []string{"str", "x"}},
		{"RPUSH", []string{"str", "x"}},
		{"SADD", []string{"str", "x"}},
		{"HSET", []string{"str", "f", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			res := e.Execute(tt.cmd, makeCommand(tt.cmd, tt.args...))
			if !strings.HasPrefix(string(res.String), "ERR WRONGTYPE") {
				t.Errorf("expected WRONGTYPE, got %q", res.String)
			}
		})
	}

	// the failed writes did not touch the keys
	res := e.Execute("GET", makeCommand("GET", "str"))
	if string(res.String) != "a" {
		t.Errorf("string key changed: %q", res.String)
	}
}

func TestLists(t *testing.T) {
	e := setupEngine()

	for _, v := range []string{"b", "c"} {
		e.Execute("RPUSH", makeCommand("RPUSH", "l", v))
	}
	res := e.Execute("LPUSH", makeCommand("LPUSH", "l", "a"))
	if res.Integer != 3 {
		t.Errorf("expected length 3, got %d", res.Integer)
	}

	res = e.Execute("LRANGE", makeCommand("LRANGE", "l", "0", "1"))
	if len(res.Array) != 2 || string(res.Array[0].String) != "a" || string(res.Array[1].String) != "b" {
		t.Errorf("unexpected LRANGE 0 1: %v", res.Array)
	}

	res = e.Execute("LRANGE", makeCommand("LRANGE", "l", "0", "-1"))
	if len(res.Array) != 3 {
		t.Errorf("expected full list, got %d elements", len(res.Array))
	}

	res = e.Execute("LRANGE", makeCommand("LRANGE", "l", "zero", "1"))
	if res.Type != resp.TypeError {
		t.Errorf("expected error for bad index, got %v", res.Type)
	}

	res = e.Execute("LPOP", makeCommand("LPOP", "l"))
	if string(res.String) != "a" {
		t.Errorf("expected a, got %q", res.String)
	}
	res = e.Execute("RPOP", makeCommand("RPOP", "l"))
	if string(res.String) != "c" {
		t.Errorf("expected c, got %q", res.String)
	}
	e.Execute("RPOP", makeCommand("RPOP", "l"))

	res = e.Execute("LPOP", makeCommand("LPOP", "l"))
	if !res.IsNull {
		t.Errorf("expected null from empty list, got %v", res)
	}

	res = e.Execute("LRANGE", makeCommand("LRANGE", "missing", "0", "10"))
	if res.Type != resp.TypeArray || len(res.Array) != 0 {
		t.Errorf("expected empty array, got %v", res)
	}
}

func TestSets(t *testing.T) {
	e := setupEngine()

	res := e.Execute("SADD", makeCommand("SADD", "s", "x"))
	if res.Integer != 1 {
		t.Errorf("expected 1 for new member, got %d", res.Integer)
	}
	res = e.Execute("SADD", makeCommand("SADD", "s", "x"))
	if res.Integer != 0 {
		t.Errorf("expected 0 for existing member, got %d", res.Integer)
	}
	e.Execute("SADD", makeCommand("SADD", "s", "a"))

	res = e.Execute("SMEMBERS", makeCommand("SMEMBERS", "s"))
	if len(res.Array) != 2 || string(res.Array[0].String) != "a" || string(res.Array[1].String) != "x" {
		t.Errorf("unexpected SMEMBERS: %v", res.Array)
	}

	res = e.Execute("SISMEMBER", makeCommand("SISMEMBER", "s", "x"))
	if res.Integer != 1 {
		t.Errorf("expected member, got %d", res.Integer)
	}
	res = e.Execute("SISMEMBER", makeCommand("SISMEMBER", "s", "y"))
	if res.Integer != 0 {
		t.Errorf("expected non member, got %d", res.Integer)
	}
}

func TestHashes(t *testing.T) {
	e := setupEngine()

	res := e.Execute("HSET", makeCommand("HSET", "h", "name", "moon"))
	if res.Integer != 1 {
		t.Errorf("expected 1, got %d", res.Integer)
	}
	res = e.Execute("HSET", makeCommand("HSET", "h", "name", "light"))
	if res.Integer != 1 {
		t.Errorf("expected 1 on overwrite, got %d", res.Integer)
	}
	e.Execute("HSET", makeCommand("HSET", "h", "age", "4"))

	res = e.Execute("HGET", makeCommand("HGET", "h", "name"))
	if string(res.String) != "light" {
		t.Errorf("expected light, got %q", res.String)
	}
	res = e.Execute("HGET", makeCommand("HGET", "h", "missing"))
	if !res.IsNull {
		t.Errorf("expected null for missing field")
	}

	res = e.Execute("HGETALL", makeCommand("HGETALL", "h"))
	want := []string{"name", "light", "age", "4"}
	if len(res.Array) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(res.Array))
	}
	for i, w := range want {
		if string(res.Array[i].String) != w {
			t.Errorf("HGETALL[%d]: got %q, want %q", i, res.Array[i].String, w)
		}
	}
}

func TestTTL_PTTL_Codes(t *testing.T) {
	e := setupEngine()

	// Missing Key -> -2
	res := e.Execute("TTL", makeCommand("TTL", "missing"))
	if res.Integer != -2 {
		t.Errorf("expected -2 for missing key, got %d", res.Integer)
	}

	// Persistent Key -> -1
	e.Execute("SET", makeCommand("SET", "persistent", "val"))
	res = e.Execute("TTL", makeCommand("TTL", "persistent"))
	if res.Integer != -1 {
		t.Errorf("expected -1 for persistent key, got %d", res.Integer)
	}
	res = e.Execute("PTTL", makeCommand("PTTL", "persistent"))
	if res.Integer != -1 {
		t.Errorf("expected -1 for persistent key (PTTL), got %d", res.Integer)
	}
}

func TestExpireAndTTL(t *testing.T) {
	e, clock := setupClockedEngine()

	res := e.Execute("EXPIRE", makeCommand("EXPIRE", "missing", "10"))
	if res.Integer != 0 {
		t.Errorf("expected 0 for missing key, got %d", res.Integer)
	}

	e.Execute("SET", makeCommand("SET", "k", "v"))
	res = e.Execute("EXPIRE", makeCommand("EXPIRE", "k", "10"))
	if res.Integer != 1 {
		t.Errorf("expected 1, got %d", res.Integer)
	}

	res = e.Execute("TTL", makeCommand("TTL", "k"))
	if res.Integer != 10 {
		t.Errorf("expected TTL 10, got %d", res.Integer)
	}

	clock.Advance(2400 * time.Millisecond)

	res = e.Execute("TTL", makeCommand("TTL", "k"))
	if res.Integer != 7 {
		t.Errorf("expected TTL rounded down to 7, got %d", res.Integer)
	}

	clock.Advance(7599 * time.Millisecond)

	res = e.Execute("TTL", makeCommand("TTL", "k"))
	if res.Integer != 0 {
		t.Errorf("expected TTL 0 with 1ms left, got %d", res.Integer)
	}
	res = e.Execute("PTTL", makeCommand("PTTL", "k"))
	if res.Integer != 1 {
		t.Errorf("expected PTTL 1, got %d", res.Integer)
	}

	res = e.Execute("PERSIST", makeCommand("PERSIST", "k"))
	if res.Integer != 1 {
		t.Errorf("expected PERSIST 1, got %d", res.Integer)
	}
	res = e.Execute("TTL", makeCommand("TTL", "k"))
	if res.Integer != -1 {
		t.Errorf("expected -1 after PERSIST, got %d", res.Integer)
	}
}

func TestExpireArguments(t *testing.T) {
	e := setupEngine()
	e.Execute("SET", makeCommand("SET", "k", "v"))

	tests := []struct {
		name    string
		seconds string
		want    string
	}{
		{"Not a number", "soon", "ERR value is not an integer or out of range"},
		{"Overflows int64", "99999999999999999999", "ERR value is not an integer or out of range"},
		{"Overflows duration", "9223372036854775807", "ERR invalid expire time in 'expire' command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute("EXPIRE", makeCommand("EXPIRE", "k", tt.seconds))
			if string(res.String) != tt.want {
				t.Errorf("got %q, want %q", res.String, tt.want)
			}
		})
	}

	// a non-positive TTL removes the key
	res := e.Execute("EXPIRE", makeCommand("EXPIRE", "k", "0"))
	if res.Integer != 1 {
		t.Errorf("expected 1, got %d", res.Integer)
	}
	res = e.Execute("EXISTS", makeCommand("EXISTS", "k"))
	if res.Integer != 0 {
		t.Errorf("key should be gone after EXPIRE 0")
	}
}

func TestCommandDocs(t *testing.T) {
	e := setupEngine()

	res := e.Execute("COMMAND", makeCommand("COMMAND", "COUNT"))
	if res.Integer != int64(len(commandRegistry)) {
		t.Errorf("expected %d commands, got %d", len(commandRegistry), res.Integer)
	}

	res = e.Execute("COMMAND", nil)
	if len(res.Array) != len(commandRegistry) {
		t.Errorf("expected %d entries, got %d", len(commandRegistry), len(res.Array))
	}

	res = e.Execute("COMMAND", makeCommand("COMMAND", "DOCS", "get", "nosuch"))
	if len(res.Array) != 2 || string(res.Array[0].String) != "get" {
		t.Errorf("unexpected COMMAND DOCS reply: %v", res.Array)
	}

	res = e.Execute("COMMAND", makeCommand("COMMAND", "INFO"))
	if res.Type != resp.TypeError {
		t.Errorf("expected error for unknown subcommand")
	}
}

func TestEveryCommandIsDocumented(t *testing.T) {
	e := setupEngine()

	for name := range e.commands {
		if _, ok := commandRegistry[name]; !ok {
			t.Errorf("%s has no metadata", name)
		}
		if _, ok := commandDocsRegistry[name]; !ok {
			t.Errorf("%s has no docs", name)
		}
	}
	if len(e.commands) != len(commandRegistry) {
		t.Errorf("registry has %d entries, engine %d", len(commandRegistry), len(e.commands))
	}
}
