package tree

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("does not exist")
	ErrExists      = errors.New("already exists")
	ErrInvalidMove = errors.New("destination is inside source")
)

// PathError records the tree operation and path that failed.
type PathError struct {
	Op   string
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
