package tree

import (
	"slices"
	"strings"

	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// Kind tells the synthetic root apart from ordinary directories. It is
// informational only; every operation treats both kinds the same way.
type Kind int

const (
	KindDirectory Kind = iota
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// RootName is the name given to the node returned by [NewRoot]. It never
// appears in listings or paths.
const RootName = "root"

type Node struct {
	name     string                    // Name of the node (last part of the path)
	kind     Kind                      // Informational node kind
	children *xsync.Map[string, *Node] // child nodes by name; unordered
}

// NewRoot creates the container node a tree hangs from.
func NewRoot() *Node {
	return newNode(KindContainer, RootName)
}

// NewNode creates a detached directory node with no children.
func NewNode(name string) *Node {
	return newNode(KindDirectory, name)
}

func newNode(kind Kind, name string) *Node {
	return &Node{
		name:     name,
		kind:     kind,
		children: xsync.NewMap[string, *Node](),
	}
}

// Name returns the node's name (last part of the path).
func (n *Node) Name() string {
	return n.name
}

func (n *Node) Kind() Kind {
	return n.kind
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return n.children.Size()
}

// AddChild links child under its own name. It returns false and leaves the
// node untouched when a sibling with that name already exists.
func (n *Node) AddChild(child *Node) bool {
	_, loaded := n.children.LoadOrStore(child.name, child)
	return !loaded
}

// GetChild returns the direct child with the given name.
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	return n.children.Load(name)
}

// RemoveChild detaches the direct child with the given name and returns it.
// The detached node keeps its own subtree.
func (n *Node) RemoveChild(name string) (child *Node, ok bool) {
	return n.children.LoadAndDelete(name)
}

// Find walks path from n and returns the node it names. An empty path
// resolves to n itself.
func (n *Node) Find(path Path) (*Node, bool) {
	cur := n
	for _, name := range path {
		child, ok := cur.children.Load(name)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// Contains reports whether every segment of path exists below n.
// All children are searched at each level.
func (n *Node) Contains(path Path) bool {
	_, ok := n.Find(path)
	return ok
}

// Create adds every missing segment of path below n and returns the leaf.
// It is equivalent to `mkdir -p`: existing directories are reused and an
// already complete path is a no-op. An empty path returns nil.
func (n *Node) Create(path Path) *Node {
	logger := util.GetLogger("Node.Create")

	if len(path) == 0 {
		return nil
	}
	cur := n
	newCnt := 0
	for _, name := range path {
		if child, ok := cur.children.Load(name); ok {
			cur = child
			continue
		}
		child := NewNode(name)
		cur.children.Store(name, child)
		newCnt++
		cur = child
	}
	if newCnt > 0 {
		logger.Debug().Str("path", path.String()).Int("created", newCnt).Msg("Created directories")
	} else {
		logger.Trace().Str("path", path.String()).Msg("Path already exists")
	}
	return cur
}

// CreateAt grafts an already built subtree into the tree below n.
//
// If path names an existing node, sub becomes its child under sub's own name.
// Otherwise the parents of path are created as with [Node.Create] and sub is
// attached under the final segment's name, keeping its children. An empty path
// attaches sub directly to n.
//
// Returns [ErrExists] without touching the tree when the target slot is taken.
func (n *Node) CreateAt(path Path, sub *Node) (*Node, error) {
	logger := util.GetLogger("Node.CreateAt")

	if dst, ok := n.Find(path); ok {
		if !dst.AddChild(sub) {
			return nil, &PathError{Op: "create", Path: path.Child(sub.name), Err: ErrExists}
		}
		logger.Debug().Str("path", path.Child(sub.name).String()).Msg("Grafted subtree into existing directory")
		return sub, nil
	}

	parent := n
	if len(path) > 1 {
		parent = n.Create(path.Parent())
	}
	// path did not resolve, so the final segment is free under parent
	sub.name = path.Base()
	parent.children.Store(sub.name, sub)
	logger.Debug().Str("path", path.String()).Msg("Grafted subtree")
	return sub, nil
}

// Delete detaches the node at path and returns it with its subtree intact.
// An empty path is a no-op. A missing path returns a [*PathError] wrapping
// [ErrNotFound] and leaves the tree unchanged.
func (n *Node) Delete(path Path) (*Node, error) {
	logger := util.GetLogger("Node.Delete")

	if len(path) == 0 {
		return nil, nil
	}
	if parent, ok := n.Find(path.Parent()); ok {
		if child, ok := parent.RemoveChild(path.Base()); ok {
			logger.Debug().Str("path", path.String()).Int("children", child.Len()).Msg("Detached subtree")
			return child, nil
		}
	}
	logger.Debug().Str("path", path.String()).Msg("Nothing to delete")
	return nil, &PathError{Op: "delete", Path: path, Err: ErrNotFound}
}

// Move relocates the subtree at from to to, following `mv` rules: an
// existing destination directory receives the subtree under its current name,
// otherwise the subtree is renamed to the final segment of to.
//
// The tree is unchanged when from is missing ([ErrNotFound]), when to lies
// inside from ([ErrInvalidMove]) or when the destination name is taken
// ([ErrExists]). An empty from is a no-op.
func (n *Node) Move(from, to Path) error {
	logger := util.GetLogger("Node.Move")

	if len(from) == 0 {
		return nil
	}
	src, ok := n.Find(from)
	if !ok {
		return &PathError{Op: "delete", Path: from, Err: ErrNotFound}
	}
	if to.HasPrefix(from) {
		return &PathError{Op: "move", Path: to, Err: ErrInvalidMove}
	}
	if dst, ok := n.Find(to); ok {
		if _, taken := dst.GetChild(src.name); taken {
			return &PathError{Op: "move", Path: to.Child(src.name), Err: ErrExists}
		}
	}

	sub, err := n.Delete(from)
	if err != nil {
		return err
	}
	if _, err := n.CreateAt(to, sub); err != nil {
		// put it back where it came from
		if parent, ok := n.Find(from.Parent()); ok {
			parent.AddChild(sub)
		}
		return err
	}
	logger.Debug().Str("from", from.String()).Str("to", to.String()).Msg("Moved subtree")
	return nil
}

// Children returns the direct children sorted by name.
func (n *Node) Children() []*Node {
	children := make([]*Node, 0, n.children.Size())
	n.children.Range(func(_ string, ch *Node) bool {
		children = append(children, ch)
		return true
	})
	slices.SortFunc(children, func(a, b *Node) int {
		return strings.Compare(a.name, b.name)
	})
	return children
}

// Walk visits every descendant of n depth first, in pre-order, with siblings
// sorted by name. Direct children are reported at depth 0.
func (n *Node) Walk(fn func(depth int, node *Node)) {
	n.walk(0, fn)
}

func (n *Node) walk(depth int, fn func(depth int, node *Node)) {
	for _, child := range n.Children() {
		fn(depth, child)
		child.walk(depth+1, fn)
	}
}

// Entries returns the sorted listing of everything below n.
func (n *Node) Entries() []Entry {
	entries := make([]Entry, 0)
	n.Walk(func(depth int, node *Node) {
		entries = append(entries, Entry{Depth: depth, Name: node.name})
	})
	return entries
}
