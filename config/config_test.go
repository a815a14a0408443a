package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Decode(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(Default(), cfg)
	assert.Equal(DEFAULT_HEAP, cfg.Machine.Heap)
	assert.Equal(DEFAULT_PROMPT, cfg.Repl.Prompt)
	assert.True(cfg.Repl.Banner)
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	text := `
[machine]
heap = 256
max-steps = 1000
entry = "start"

[repl]
banner = false

[log]
verbose = true
`

	cfg, err := Decode(strings.NewReader(text))
	if !assert.NoError(err) {
		return
	}

	assert.Equal(256, cfg.Machine.Heap)
	assert.Equal(1000, cfg.Machine.MaxSteps)
	assert.Equal("start", cfg.Machine.Entry)
	assert.Equal(DEFAULT_PROMPT, cfg.Repl.Prompt)
	assert.False(cfg.Repl.Banner)
	assert.True(cfg.Log.Verbose)
}

func TestDecodeErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Decode(strings.NewReader("[machine]\nheep = 1\n"))
	assert.ErrorIs(err, ErrUnknownKey{})
	assert.Equal(ErrUnknownKey{"machine.heep"}, err)

	_, err = Decode(strings.NewReader("[machine]\nheap = -1\n"))
	assert.ErrorIs(err, ErrHeapSize)

	_, err = Decode(strings.NewReader("[machine\n"))
	assert.Error(err)

	_, err = Decode(strings.NewReader("[machine]\nheap = \"big\"\n"))
	assert.Error(err)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "rvm.toml")
	assert.NoError(os.WriteFile(path, []byte("[machine]\nheap = 64\n"), 0o644))

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal(64, cfg.Machine.Heap)

	bad := filepath.Join(dir, "bad.toml")
	assert.NoError(os.WriteFile(bad, []byte("[log]\nloud = true\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(err, ErrUnknownKey{})

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)
}
