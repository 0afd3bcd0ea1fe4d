package common

type Inum uint64
type Bnum = uint64

// Fd is a handle into the open file table.
type Fd uint64

const (
	ROOTINUM Inum = 0
	ROOTPATH      = "/"

	// Links on a fresh directory: its own entry and its ".".
	DIRLINKS uint64 = 2
	// The root additionally counts its ".." as a link to itself.
	ROOTLINKS uint64 = 3
)

// Kind is the type of object a descriptor holds. The zero value marks a
// free descriptor slot.
type Kind uint8

const (
	NF_FREE Kind = iota
	NF_REG
	NF_DIR
	NF_LNK
)

func (k Kind) String() string {
	switch k {
	case NF_REG:
		return "file"
	case NF_DIR:
		return "directory"
	case NF_LNK:
		return "symlink"
	}
	return "free"
}
