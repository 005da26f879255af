package server

import (
	"context"
	"fmt"
	"syscall"

	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/brettbedarf/dirtree/tree"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// directory with r-xr-xr-x permissions
const dirMode = syscall.S_IFDIR | 0o555

// snapshotRoot serves a copy of a tree's shape as read-only directories.
// The tree must not be mutated while mounted.
type snapshotRoot struct {
	fs.Inode
	tree *tree.Node
}

var (
	_ fs.InodeEmbedder = (*snapshotRoot)(nil)
	_                  = fs.NodeOnAdder(&snapshotRoot{})
	_                  = fs.NodeGetattrer(&snapshotRoot{})
	_                  = fs.NodeGetattrer(&dirNode{})
)

// OnAdd builds the whole inode tree up front once the root is mounted.
func (r *snapshotRoot) OnAdd(ctx context.Context) {
	logger := util.GetLogger("Mount.OnAdd")
	cnt := graft(ctx, &r.Inode, r.tree)
	logger.Debug().Int("directories", cnt).Msg("Snapshot inodes created")
}

func (r *snapshotRoot) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = dirMode
	return fs.OK
}

type dirNode struct {
	fs.Inode
}

func (d *dirNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = dirMode
	return fs.OK
}

// graft adds an inode for every mountable descendant of n below parent and
// returns how many were added.
func graft(ctx context.Context, parent *fs.Inode, n *tree.Node) int {
	cnt := 0
	for _, child := range mountableChildren(n) {
		ch := parent.NewPersistentInode(ctx, &dirNode{}, fs.StableAttr{Mode: fuse.S_IFDIR})
		parent.AddChild(child.Name(), ch, false)
		cnt += 1 + graft(ctx, ch, child)
	}
	return cnt
}

// mountableChildren returns the sorted children of n whose names are valid
// directory entries. Empty names (kept empty path segments) and the dot
// entries cannot be represented and are skipped with their subtrees.
func mountableChildren(n *tree.Node) []*tree.Node {
	logger := util.GetLogger("Mount")

	children := n.Children()
	out := children[:0]
	for _, child := range children {
		switch child.Name() {
		case "", ".", "..":
			logger.Warn().Str("name", child.Name()).Int("children", child.Len()).Msg("Skipping unmountable directory name")
		default:
			out = append(out, child)
		}
	}
	return out
}

// Server wraps the underlying fuse.Server.
type Server struct {
	server     *fuse.Server
	mountPoint string
}

// Mount exposes root read-only at mountPoint and starts serving.
// Call Unmount to release the mount point.
func Mount(root *tree.Node, mountPoint string, opts *config.MountOptions) (*Server, error) {
	logger := util.GetLogger("Mount")

	if opts == nil {
		opts = &config.MountOptions{
			FsName: config.DefaultFsName,
			Name:   config.DefaultName,
		}
	}
	srv, err := fs.Mount(mountPoint, &snapshotRoot{tree: root}, &fs.Options{
		MountOptions: fuse.MountOptions{
			FsName:  opts.FsName,
			Name:    opts.Name,
			Debug:   opts.Debug,
			Options: []string{"ro"},
			Logger:  util.NewLogLogger("FuseServer", util.DebugLevel),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mount %s: %w", mountPoint, err)
	}
	logger.Info().Str("mountpoint", mountPoint).Msg("Tree mounted")
	return &Server{server: srv, mountPoint: mountPoint}, nil
}

// Wait blocks until the filesystem is unmounted.
func (s *Server) Wait() {
	s.server.Wait()
}

// Unmount cleanly unmounts the filesystem.
func (s *Server) Unmount() error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Unmount()
}
