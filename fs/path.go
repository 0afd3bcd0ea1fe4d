package fs

import (
	"path"
	"strings"

	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/inode"
	"github.com/mit-pdos/go-memfs/util"
)

// Resolution gives up after following this many symlinks, as Linux does.
const maxSymlinks = 40

// normalize returns the rooted form of an absolute path: no empty or "."
// segments, and each ".." cancels the segment before it. ".." at the
// root stays at the root.
func normalize(p string) string {
	return path.Clean("/" + p)
}

func (fs *FS) toAbsolute(p string) string {
	if strings.HasPrefix(p, "/") {
		return normalize(p)
	}
	return normalize(fs.cwd + "/" + p)
}

func segments(abs string) []string {
	if abs == common.ROOTPATH {
		return nil
	}
	return strings.Split(abs[1:], "/")
}

func (fs *FS) lookup(abs string) (common.Inum, *inode.Descriptor, bool) {
	inum, ok := fs.names[abs]
	if !ok {
		return 0, nil, false
	}
	d := fs.itab.Get(inum)
	if d == nil {
		panic("namespace entry for free descriptor " + abs)
	}
	return inum, d, true
}

func (fs *FS) readTarget(d *inode.Descriptor) string {
	return inode.DecodeTarget(fs.store.Read(d.Blocks[0]), d.Size)
}

// resolve returns the canonical form of p: an absolute path naming an
// existing entry, with no symlink anywhere along it.
func (fs *FS) resolve(p string) (string, error) {
	if p == "" {
		return "", ErrInvalidArgument
	}
	abs := fs.toAbsolute(p)
	for nlinks := 0; nlinks <= maxSymlinks; nlinks++ {
		canon, next, err := fs.walk(abs)
		if err != nil {
			return "", err
		}
		if next == "" {
			return canon, nil
		}
		abs = next
	}
	return "", ErrTooManyLinks
}

// walk looks up each prefix of abs in turn. If it reaches a symlink it
// stops and returns, as next, the path with that prefix replaced by the
// link's target. A relative target is taken relative to the working
// directory, not to the directory holding the symlink.
func (fs *FS) walk(abs string) (string, string, error) {
	segs := segments(abs)
	cur := ""
	for i, seg := range segs {
		cur = cur + "/" + seg
		_, d, ok := fs.lookup(cur)
		if !ok {
			return "", "", ErrNotFound
		}
		switch d.Kind {
		case common.NF_LNK:
			target := fs.toAbsolute(fs.readTarget(d))
			util.DPrintf(4, "walk: %s -> %s\n", cur, target)
			return "", normalize(target + "/" + strings.Join(segs[i+1:], "/")), nil
		case common.NF_REG:
			if i != len(segs)-1 {
				return "", "", ErrNotADirectory
			}
		}
	}
	if cur == "" {
		cur = common.ROOTPATH
	}
	return cur, "", nil
}

// resolveParent resolves every segment of p except the last, which it
// leaves literal even if it names a symlink. It returns the canonical
// parent directory, the final name, and their join. For the root, name
// is empty and both paths are "/".
func (fs *FS) resolveParent(p string) (string, string, string, error) {
	if p == "" {
		return "", "", "", ErrInvalidArgument
	}
	abs := fs.toAbsolute(p)
	if abs == common.ROOTPATH {
		return common.ROOTPATH, "", common.ROOTPATH, nil
	}
	dir, name := path.Split(abs)
	parent, err := fs.resolve(dir)
	if err != nil {
		return "", "", "", err
	}
	_, d, _ := fs.lookup(parent)
	if !d.IsDir() {
		return "", "", "", ErrNotADirectory
	}
	return parent, name, path.Join(parent, name), nil
}

// checkNewName fails if full is taken or name is longer than allowed.
func (fs *FS) checkNewName(name string, full string) error {
	if _, ok := fs.names[full]; ok {
		return ErrAlreadyExists
	}
	if uint64(len(name)) > fs.p.MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
