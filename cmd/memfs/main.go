package main

import (
	"flag"
	"log"
	"os"

	"github.com/mit-pdos/go-memfs/config"
	"github.com/mit-pdos/go-memfs/shell"
	"github.com/mit-pdos/go-memfs/util"
)

func demo(sh *shell.Shell) {
	sh.Mkfs(15)
	sh.Mkdir("dir1")
	sh.Stat("dir1")
	sh.Mkdir("dir1/dir2")
	sh.Stat("dir1")
	sh.Ls("")
	sh.Stat("/")
	sh.Cd("dir1/dir2")
	sh.Create("file.txt")
	sh.Mkdir("/a")
	sh.Mkdir("/a/b")
	sh.Symlink("/dir1", "/a/b/l1")
	sh.Ls("/a/b")
	sh.Open("/a/b/l1/dir2/file.txt")
	sh.Cd("..")
	sh.Pwd()
	sh.Symlink("dir2/./../../dir1/././dir2/file.txt", "/dir1/l2")
	sh.Cd("/a/b")
	sh.Open("l1/l2")
	sh.Cd("/")
	sh.Unlink("/dir1/l2")
	sh.Unlink("/a/b/l1")
	sh.Unlink("dir1/dir2/file.txt")
	sh.Unlink("dir1/dir2")
	sh.Symlink("some", "dir1/dir2/data.txt")
	sh.Ls("dir1/dir2")
	sh.Link("dir1/dir2/data.txt", "/a/b/document")
	sh.Ls("/a/b")
	sh.Stat("/a/b/document")
	sh.Stat("/dir1/dir2/data.txt")
	sh.Open("dir1/dir2/data.txt")
	sh.Create("some")
	sh.Open("/dir1/dir2/data.txt")
	sh.Mkdir("/1")
	sh.Mkdir("/1/2")
	sh.Cd("/1/2")
	sh.Rmdir("../2")
	sh.Ls("")
	sh.Df()
}

func main() {
	cfg := config.Default()
	fl := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg.BindFlags(fl)
	script := fl.Bool("script", false, "read commands from stdin instead of running the demo")
	fl.Uint64Var(&util.Debug, "debug", 0, "debug trace level")
	fl.Parse(os.Args[1:])

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	sh := shell.MkShell(cfg, os.Stdout)
	if !*script {
		demo(sh)
		return
	}
	if err := sh.Run(os.Stdin); err != nil {
		log.Fatal(err)
	}
}
