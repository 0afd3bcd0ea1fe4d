package shell

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/mit-pdos/go-memfs/common"
)

type command struct {
	nargs int // -1 for an optional single argument
	run   func(sh *Shell, args []string) error
}

var commands = map[string]command{
	"mkfs": {1, func(sh *Shell, a []string) error {
		n, err := parseUint(a[0])
		if err != nil {
			return err
		}
		sh.Mkfs(n)
		return nil
	}},
	"mkdir":   {1, func(sh *Shell, a []string) error { sh.Mkdir(a[0]); return nil }},
	"rmdir":   {1, func(sh *Shell, a []string) error { sh.Rmdir(a[0]); return nil }},
	"cd":      {1, func(sh *Shell, a []string) error { sh.Cd(a[0]); return nil }},
	"pwd":     {0, func(sh *Shell, a []string) error { sh.Pwd(); return nil }},
	"symlink": {2, func(sh *Shell, a []string) error { sh.Symlink(a[0], a[1]); return nil }},
	"stat":    {1, func(sh *Shell, a []string) error { sh.Stat(a[0]); return nil }},
	"ls": {-1, func(sh *Shell, a []string) error {
		p := ""
		if len(a) == 1 {
			p = a[0]
		}
		sh.Ls(p)
		return nil
	}},
	"create": {1, func(sh *Shell, a []string) error { sh.Create(a[0]); return nil }},
	"open":   {1, func(sh *Shell, a []string) error { sh.Open(a[0]); return nil }},
	"close": {1, func(sh *Shell, a []string) error {
		fd, err := parseUint(a[0])
		if err != nil {
			return err
		}
		sh.Close(common.Fd(fd))
		return nil
	}},
	"seek": {2, func(sh *Shell, a []string) error {
		fd, err := parseUint(a[0])
		if err != nil {
			return err
		}
		off, err := strconv.ParseInt(a[1], 10, 64)
		if err != nil {
			return err
		}
		sh.Seek(common.Fd(fd), off)
		return nil
	}},
	"read": {2, func(sh *Shell, a []string) error {
		fd, err := parseUint(a[0])
		if err != nil {
			return err
		}
		n, err := parseUint(a[1])
		if err != nil {
			return err
		}
		sh.Read(common.Fd(fd), n)
		return nil
	}},
	"write": {3, func(sh *Shell, a []string) error {
		fd, err := parseUint(a[0])
		if err != nil {
			return err
		}
		n, err := parseUint(a[1])
		if err != nil {
			return err
		}
		sh.Write(common.Fd(fd), n, a[2])
		return nil
	}},
	"link":   {2, func(sh *Shell, a []string) error { sh.Link(a[0], a[1]); return nil }},
	"unlink": {1, func(sh *Shell, a []string) error { sh.Unlink(a[0]); return nil }},
	"truncate": {2, func(sh *Shell, a []string) error {
		n, err := parseUint(a[1])
		if err != nil {
			return err
		}
		sh.Truncate(a[0], n)
		return nil
	}},
	"df": {0, func(sh *Shell, a []string) error { sh.Df(); return nil }},
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// Exec runs one command line: a command name followed by
// whitespace-separated arguments. The data argument of write extends to
// the end of the line. Blank lines and lines starting with '#' are
// ignored.
func (sh *Shell) Exec(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return
	}
	name, args := fields[0], fields[1:]
	cmd, ok := commands[name]
	if !ok {
		sh.error("unknown command %q", name)
		return
	}
	if name == "write" && len(args) > 3 {
		args = append(args[:2], skipFields(line, 3))
	}
	if err := checkArgs(cmd.nargs, len(args)); err != nil {
		sh.error("%s: %v", name, err)
		return
	}
	if err := cmd.run(sh, args); err != nil {
		sh.error("%s: %v", name, err)
	}
}

// skipFields returns line with its first n whitespace-separated fields
// and the whitespace after them removed.
func skipFields(line string, n int) string {
	s := strings.TrimLeftFunc(line, unicode.IsSpace)
	for i := 0; i < n; i++ {
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		s = strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	return s
}

func checkArgs(want int, got int) error {
	if want < 0 {
		if got > 1 {
			return fmt.Errorf("want at most 1 argument, got %d", got)
		}
		return nil
	}
	if got != want {
		return fmt.Errorf("want %d arguments, got %d", want, got)
	}
	return nil
}

// Run executes every line of r in order.
func (sh *Shell) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		sh.Exec(sc.Text())
	}
	return sc.Err()
}
