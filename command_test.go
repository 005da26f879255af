package dirtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Command
	}{
		{"create", "CREATE fruits/apples", Command{Verb: VerbCreate, Operands: []string{"fruits/apples"}}},
		{"lowercase verb", "move a b", Command{Verb: VerbMove, Operands: []string{"a", "b"}}},
		{"no operands", "LIST", Command{Verb: VerbList, Operands: []string{}}},
		{"carriage return", "list\r", Command{Verb: VerbList, Operands: []string{}}},
		{"double space keeps empty operand", "DELETE  a", Command{Verb: VerbDelete, Operands: []string{"", "a"}}},
		{"unknown verb", "frob x", Command{Verb: "FROB", Operands: []string{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := ParseCommand(tt.line)

			require.True(t, ok)
			assert.Equal(t, tt.expected, cmd)
		})
	}
}

func TestParseCommand_EmptyLine(t *testing.T) {
	for _, line := range []string{"", "\r"} {
		_, ok := ParseCommand(line)
		assert.False(t, ok, "line %q must be ignored", line)
	}
}

func TestCommand_Echo(t *testing.T) {
	cmd, _ := ParseCommand("move grains fruits")
	assert.Equal(t, "MOVE grains fruits", cmd.Echo())

	cmd, _ = ParseCommand("list")
	assert.Equal(t, "LIST ", cmd.Echo(), "verb is always followed by a space")
}

func TestVerb_Arity(t *testing.T) {
	tests := []struct {
		verb  Verb
		n     int
		known bool
	}{
		{VerbCreate, 1, true},
		{VerbDelete, 1, true},
		{VerbMove, 2, true},
		{VerbList, 0, true},
		{"FROB", 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.verb), func(t *testing.T) {
			n, known := tt.verb.Arity()
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestCommand_Operand(t *testing.T) {
	cmd, _ := ParseCommand("MOVE a")

	op, ok := cmd.Operand(0)
	assert.True(t, ok)
	assert.Equal(t, "a", op)

	_, ok = cmd.Operand(1)
	assert.False(t, ok)
}
