// Package config holds the static geometry a filesystem is built with.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/mit-pdos/go-memfs/fs"
	"github.com/mit-pdos/go-memfs/util"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	BlockSize     uint64
	BlockCount    uint64
	Descriptors   uint64
	MaxNameLength uint64
}

func Default() *Config {
	return &Config{
		BlockSize:     64,
		BlockCount:    256,
		Descriptors:   32,
		MaxNameLength: 16,
	}
}

// Validate checks that every field is positive.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name string
		v    uint64
	}{
		{"blocksize", c.BlockSize},
		{"blocks", c.BlockCount},
		{"descriptors", c.Descriptors},
		{"namemax", c.MaxNameLength},
	} {
		if f.v == 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, f.name)
		}
	}
	if util.MulOverflows(c.BlockSize, c.BlockCount) {
		return fmt.Errorf("%w: blocksize*blocks overflows", ErrInvalidConfig)
	}
	return nil
}

// BindFlags registers one flag per field, defaulting to the current
// values.
func (c *Config) BindFlags(fl *flag.FlagSet) {
	fl.Uint64Var(&c.BlockSize, "blocksize", c.BlockSize, "block size in bytes")
	fl.Uint64Var(&c.BlockCount, "blocks", c.BlockCount, "number of blocks")
	fl.Uint64Var(&c.Descriptors, "descriptors", c.Descriptors, "number of descriptors")
	fl.Uint64Var(&c.MaxNameLength, "namemax", c.MaxNameLength, "longest allowed file name")
}

func (c *Config) Params() fs.Params {
	return fs.Params{
		BlockSize:     c.BlockSize,
		BlockCount:    c.BlockCount,
		Descriptors:   c.Descriptors,
		MaxNameLength: c.MaxNameLength,
	}
}
