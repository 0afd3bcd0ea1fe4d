package config

import (
	"errors"
	"flag"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-memfs/fs"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
	assert.Equal(t, fs.Params{BlockSize: 64, BlockCount: 256, Descriptors: 32, MaxNameLength: 16}, c.Params())
}

func TestValidate(t *testing.T) {
	c := Default()
	c.BlockCount = 0
	err := c.Validate()
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "blocks")

	c = Default()
	c.BlockSize = 1 << 40
	c.BlockCount = 1 << 30
	assert.True(t, errors.Is(c.Validate(), ErrInvalidConfig))
}

func TestBindFlags(t *testing.T) {
	assert := assert.New(t)
	c := Default()
	fl := flag.NewFlagSet("memfs", flag.ContinueOnError)
	c.BindFlags(fl)
	require.NoError(t, fl.Parse([]string{"-blocksize", "4", "-namemax=8"}))
	assert.Equal(uint64(4), c.BlockSize)
	assert.Equal(uint64(8), c.MaxNameLength)
	assert.Equal(uint64(256), c.BlockCount, "unset flags keep the default")

	fl = flag.NewFlagSet("memfs", flag.ContinueOnError)
	fl.SetOutput(ioutil.Discard)
	c.BindFlags(fl)
	assert.Error(fl.Parse([]string{"-blocks", "-1"}))
}
