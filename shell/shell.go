// Package shell drives a filesystem one command at a time and reports
// each outcome as a log line: "INFO: ..." on success, "ERROR: ..." on
// failure. Commands other than mkfs fail until mkfs has run once.
package shell

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/config"
	"github.com/mit-pdos/go-memfs/fs"
)

const notInitialized = "FS is not initialized"

type Shell struct {
	cfg *config.Config
	fs  *fs.FS
	out *log.Logger
}

func MkShell(cfg *config.Config, w io.Writer) *Shell {
	return &Shell{
		cfg: cfg,
		out: log.New(w, "", 0),
	}
}

func (sh *Shell) info(format string, a ...interface{}) {
	sh.out.Printf("INFO: "+format, a...)
}

func (sh *Shell) error(format string, a ...interface{}) {
	sh.out.Printf("ERROR: "+format, a...)
}

// invoke runs f against the filesystem and reports its error, if any.
func (sh *Shell) invoke(f func(fsys *fs.FS) error) {
	if sh.fs == nil {
		sh.error(notInitialized)
		return
	}
	if err := f(sh.fs); err != nil {
		sh.error("%v", err)
	}
}

// Mkfs builds a fresh filesystem from the static configuration with the
// given number of descriptors, discarding any previous one.
func (sh *Shell) Mkfs(descriptors uint64) {
	cfg := *sh.cfg
	cfg.Descriptors = descriptors
	if err := cfg.Validate(); err != nil {
		sh.error("%v", err)
		return
	}
	if sh.fs == nil {
		fsys, err := fs.MkFS(cfg.Params())
		if err != nil {
			sh.error("%v", err)
			return
		}
		sh.fs = fsys
	} else if err := sh.fs.Init(cfg.Params()); err != nil {
		sh.error("%v", err)
		return
	}
	sh.info("File system is initialized (%v)", sh.fs.UUID())
}

func (sh *Shell) Mkdir(p string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Mkdir(p) })
}

func (sh *Shell) Rmdir(p string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Rmdir(p) })
}

func (sh *Shell) Cd(p string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Cd(p) })
}

func (sh *Shell) Pwd() {
	sh.invoke(func(fsys *fs.FS) error {
		sh.info("%s", fsys.Pwd())
		return nil
	})
}

func (sh *Shell) Symlink(target string, p string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Symlink(target, p) })
}

func (sh *Shell) Stat(p string) {
	sh.invoke(func(fsys *fs.FS) error {
		inum, d, err := fsys.Stat(p)
		if err != nil {
			return err
		}
		sh.info("id=%d, type=%v, nlink=%d, size=%d, nblock=%d",
			inum, d.Kind, d.Nlink, d.Size, d.NBlocks())
		return nil
	})
}

// Ls lists p, or the working directory if p is empty, one entry per
// line in name order.
func (sh *Shell) Ls(p string) {
	sh.invoke(func(fsys *fs.FS) error {
		ents, err := fsys.Ls(p)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(ents))
		for name := range ents {
			names = append(names, name)
		}
		sort.Strings(names)
		lines := make([]string, len(names))
		for i, name := range names {
			lines[i] = fmt.Sprintf("%s => %v, %d", name, ents[name].Kind, ents[name].Inum)
		}
		sh.info("%s", strings.Join(lines, "\n"))
		return nil
	})
}

func (sh *Shell) Create(p string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Create(p) })
}

func (sh *Shell) Open(p string) {
	sh.invoke(func(fsys *fs.FS) error {
		fd, err := fsys.Open(p)
		if err != nil {
			return err
		}
		sh.info("fd = %d", fd)
		return nil
	})
}

func (sh *Shell) Close(fd common.Fd) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Close(fd) })
}

func (sh *Shell) Seek(fd common.Fd, off int64) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Seek(fd, off) })
}

func (sh *Shell) Read(fd common.Fd, n uint64) {
	sh.invoke(func(fsys *fs.FS) error {
		s, err := fsys.Read(fd, n)
		if err != nil {
			return err
		}
		sh.info("%s", s)
		return nil
	})
}

func (sh *Shell) Write(fd common.Fd, n uint64, data string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Write(fd, n, []byte(data)) })
}

func (sh *Shell) Link(existing string, newp string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Link(existing, newp) })
}

func (sh *Shell) Unlink(p string) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Unlink(p) })
}

func (sh *Shell) Truncate(p string, size uint64) {
	sh.invoke(func(fsys *fs.FS) error { return fsys.Truncate(p, size) })
}

// Df reports block and descriptor usage.
func (sh *Shell) Df() {
	sh.invoke(func(fsys *fs.FS) error {
		st := fsys.Statfs()
		sh.info("%v: blocks %d/%d free (%d bytes each), descriptors %d/%d free, %d open",
			st.ID, st.FreeBlocks, st.Blocks, st.BlockSize,
			st.FreeDescriptors, st.Descriptors, st.OpenFiles)
		return nil
	})
}
