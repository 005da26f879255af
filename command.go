// Package dirtree contains the command types shared by the dispatcher and
// its entrypoints.
package dirtree

import (
	"strings"
)

// Verb selects the tree operation of a command. Verbs are matched after
// uppercasing, so input is case-insensitive.
type Verb string

const (
	VerbCreate Verb = "CREATE"
	VerbDelete Verb = "DELETE"
	VerbMove   Verb = "MOVE"
	VerbList   Verb = "LIST"
)

// Arity returns how many operands the verb needs and whether the verb is
// recognized at all.
func (v Verb) Arity() (n int, known bool) {
	switch v {
	case VerbCreate, VerbDelete:
		return 1, true
	case VerbMove:
		return 2, true
	case VerbList:
		return 0, true
	default:
		return 0, false
	}
}

// Command is one parsed input line.
type Command struct {
	Verb     Verb
	Operands []string
}

// ParseCommand splits line on single spaces. The first token, uppercased,
// is the verb and the rest are operands. A trailing carriage return is
// dropped. Returns false for an empty line.
func ParseCommand(line string) (Command, bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return Command{}, false
	}
	tokens := strings.Split(line, " ")
	return Command{
		Verb:     Verb(strings.ToUpper(tokens[0])),
		Operands: tokens[1:],
	}, true
}

// Echo renders the command the way it is reported before it runs:
// the verb, a space, then the operands joined by spaces.
func (c Command) Echo() string {
	return string(c.Verb) + " " + strings.Join(c.Operands, " ")
}

// Operand returns the i-th operand, or false when the line was too short.
func (c Command) Operand(i int) (string, bool) {
	if i < 0 || i >= len(c.Operands) {
		return "", false
	}
	return c.Operands[i], true
}
