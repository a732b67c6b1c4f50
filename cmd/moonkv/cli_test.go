package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatReply(t *testing.T) {
	tests := []struct {
		name  string
		reply any
		want  string
	}{
		{"Nil", nil, "(nil)\n"},
		{"Integer", int64(-2), "(integer) -2\n"},
		{"String", "OK", "\"OK\"\n"},
		{"Binary string", "a\r\nb", "\"a\\r\\nb\"\n"},
		{"Empty array", []any{}, "(empty array)\n"},
		{"Flat array", []any{"a", "b"}, "1) \"a\"\n2) \"b\"\n"},
		{
			"Nested array",
			[]any{"get", []any{"readonly", "fast"}},
			"1) \"get\"\n2) 1) \"readonly\"\n   2) \"fast\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatReply(&buf, tt.reply, "")
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
