package tree

import (
	"fmt"
	"io"
	"strings"
)

// Entry is one line of a listing: a node name and its depth below the listed node.
type Entry struct {
	Depth int
	Name  string
}

// String indents the name by one space per depth level.
func (e Entry) String() string {
	return strings.Repeat(" ", e.Depth) + e.Name
}

// Render writes one line per entry to w.
func Render(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return fmt.Errorf("failed to write listing: %w", err)
		}
	}
	return nil
}

// List renders everything below n to w.
func (n *Node) List(w io.Writer) error {
	return Render(w, n.Entries())
}
